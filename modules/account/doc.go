// Package account serves the JSON authentication API.
//
// Mounted under /auth it provides:
//
//	POST /register  {username,password,email}          -> {user_id,username,email}
//	POST /login     {username,password,ttl_seconds?}   -> {success,user,token,expires_at}
//	POST /logout                                       -> {success:true}
//	GET  /me                                           -> user or null
//	GET  /check                                        -> {authenticated}
//	GET  /users     (signed in)                        -> {users,count}
//
// Login sets the session_id cookie (HttpOnly, SameSite=Lax, Path=/) with the
// same artifact it returns as token, so both cookie and bearer clients work.
// Conflicts answer 409, bad credentials 401, bad input 400. Password hashes
// in the user listing are masked.
package account

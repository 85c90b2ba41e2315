// Package jwt issues and verifies the stateless access tokens used by the
// token credential strategy.
//
// Tokens are HS256-signed with golang-jwt/jwt/v5 and carry the registered
// claims sub, exp, iat and jti. The jti is what the revocation registry keys
// on. A token is valid while the current time is strictly before exp.
//
//	svc, err := jwt.NewFromString(secret, jwt.WithIssuer("authcore"))
//	if err != nil {
//		return err
//	}
//	token, claims, err := svc.Issue(userID, 7*24*time.Hour)
//	...
//	claims, err = svc.Parse(token)
//	if errors.Is(err, jwt.ErrExpiredToken) {
//		// claims.ID is still populated
//	}
package jwt

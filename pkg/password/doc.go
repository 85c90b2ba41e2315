// Package password hashes and verifies user passwords.
//
// A Verifier holds an explicit, ordered chain of schemes. New hashes always
// use the first entry (bcrypt by default). Verification walks the chain and
// tries every scheme whose self-description matches the stored value, so
// records written by the legacy SHA-256 scheme keep working without a forced
// rehash:
//
//	v := password.New(password.WithBcryptCost(12), password.WithPool(async.NewPool(4)))
//	hash, err := v.HashContext(ctx, "s3cret")
//	ok, err := v.VerifyContext(ctx, "s3cret", hash)
//
// A stored value that no scheme recognizes never verifies.
package password

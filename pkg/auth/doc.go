// Package auth ties the credential store, password verification and
// credential issuance into one Service.
//
// # Components
//
//   - Authenticator checks a username and password. Every failure, including
//     a failed store read, is reported as the same ErrUnauthorized.
//   - Issuer creates, validates and revokes credentials. TokenIssuer signs
//     stateless tokens; SessionIssuer stores opaque ids with a sliding expiry.
//     Both consult a shared revocation.Registry.
//   - Resolver maps a presented artifact back to an Identity. It never fails;
//     anything that does not resolve is Anonymous.
//
// # Usage
//
//	verifier := cfg.NewVerifier()
//	issuer, err := cfg.NewIssuer(session.New(sessionStore), registry)
//	if err != nil {
//		return err
//	}
//	svc := auth.NewService(users, verifier, issuer,
//		auth.WithLogger(log),
//		auth.WithDefaultTTL(cfg.DefaultTTL()),
//		auth.WithExtractor(cfg.Extractor()),
//	)
//
//	id, err := svc.Authenticate(ctx, "alice", "secret")
//	cred, err := svc.IssueCredential(ctx, id, auth.WithTTL(time.Hour))
//	who := svc.ResolveIdentity(ctx, cred.Artifact)
//	err = svc.Revoke(ctx, cred.Artifact)
//
// # HTTP
//
// Resolver.Middleware resolves the bearer header, then the session cookie,
// and stores the result for IdentityFromContext. RequireUser answers 401 for
// anonymous requests.
//
// # Errors
//
// Service methods return ErrConflict, ErrUnauthorized, ErrInvalid,
// ErrInvalidInput, ErrCorrupt or ErrStorageFailure, joined with the
// lower-level cause so errors.Is matches either.
//
// Lockout and rate limiting are not provided.
package auth

// Package session implements server-side sliding sessions and the transports
// that carry credential artifacts over HTTP.
//
// A Manager issues random 256-bit ids, stores them in a Store and extends the
// expiry by the session's own TTL on every successful Resolve. Expired
// sessions are deleted when they are next seen and by Prune.
//
// Stores:
//
//   - MemoryStore keeps sessions in process memory.
//   - FileStore keeps a JSON object of id to {subject, expires_at} records,
//     drops expired and undecodable entries on load, and rewrites the file
//     atomically on every change.
//   - RedisStore keeps one key per session with a matching Redis TTL.
//
// Extractors find the artifact on a request: Bearer reads the Authorization
// header, Cookie reads (and, on login and logout, writes) an HttpOnly
// cookie, and FirstOf stops at the first one that finds something.
//
//	store, closeStore, err := session.OpenStore(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer closeStore()
//
//	mgr := session.New(store, session.WithLogger(log))
//	sess, err := mgr.Issue(ctx, userID, 24*time.Hour)
package session

// Package userstore persists registered users and enforces case-insensitive
// username uniqueness.
//
// Four backends implement Store:
//
//   - FileStore keeps a CSV file with the header
//     user_id,username,password_hash,email,created_at and an in-memory index.
//     Rows that cannot be decoded are skipped with a warning.
//   - SQLStore runs on SQLite (modernc.org/sqlite) or Postgres (pgx) with
//     goose migrations embedded in the migrations subpackage.
//   - MemoryStore is for tests and throwaway servers.
//   - CachedStore fronts any of them with an expiring LRU.
//
// Usernames are compared by Key, which trims and case-folds. The original
// spelling is preserved in Record.Username.
//
// Open picks a backend from Config, usually loaded from the environment:
//
//	var cfg userstore.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	store, closeStore, err := userstore.Open(ctx, cfg, userstore.WithLogger(log))
package userstore

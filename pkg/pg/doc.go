// Package pg connects to PostgreSQL through pgx/v5 and applies goose
// migrations from an fs.FS.
//
// Connect retries until the server answers a ping. Migrate bridges the pool to
// database/sql for goose. Healthcheck returns a probe suitable for readiness
// endpoints, and IsDuplicateKeyError classifies unique violations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, migrations.Postgres, log); err != nil {
//		return err
//	}
package pg

// Package pg provides the PostgreSQL plumbing for the subscription
// registry: connection pooling with startup retry, goose schema
// migrations, a health-check closure, and common error helpers, all on the
// pgx/v5 driver.
//
// # Usage
//
//	var cfg pg.Config
//	// populate from the environment, e.g. with caarlos0/env
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
//	store := push.NewPgStore(pool)
//
// Config fields carry `env` tags; the defaults suit a single-service
// deployment and the migrations/ directory shipped with this module.
package pg

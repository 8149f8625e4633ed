// Package load implements the loader capability (C11) and its
// concrete columnar-store realization (C12): grouping records by
// data-type into staging tables, column-ordered chunked bulk insert,
// append-to-target, and post-load row-count validation. Adapted from
// the teacher's bulkLoadPool/pipelineWorker (ohlcv_pipeline.go),
// including its AfterConnect pool-tuning hook.
package load

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PoolConn adapts *pgxpool.Pool to model.StoreConnection. The engine
// owns only this narrow Close contract; the loader reaches through to
// the underlying pool for everything else.
type PoolConn struct {
	Pool *pgxpool.Pool
}

// Close satisfies model.StoreConnection; Clean calls this once the
// loader has shut down.
func (c *PoolConn) Close(ctx context.Context) error {
	c.Pool.Close()
	return nil
}

// Connect opens a tuned pgxpool against url, grounded on the
// teacher's newBulkLoadPool AfterConnect hook. The hook sets only
// statement_timeout (60s) on each new connection.
func Connect(ctx context.Context, url string) (*PoolConn, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET statement_timeout = '60s'")
		return err
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PoolConn{Pool: pool}, nil
}

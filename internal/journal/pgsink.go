package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Samarth827/cgroup-governor/internal/model"
)

// pgSink mirrors event records into Postgres for sites that already run it
// for operator dashboards (config-gated via events.postgres_dsn). A
// connection failure at open time disables the mirror for this run; the
// same fallback rule spec.md §7 applies to policy errors applies here.
type pgSink struct {
	pool *pgxpool.Pool
}

func openPGSink(dsn string) (*pgSink, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS events (
	event_id  TEXT PRIMARY KEY,
	time      DOUBLE PRECISION NOT NULL,
	type      TEXT NOT NULL,
	message   TEXT NOT NULL,
	data      JSONB
);`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}
	return &pgSink{pool: pool}, nil
}

func (s *pgSink) insertEvent(rec model.EventRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO events (event_id, time, type, message, data) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (event_id) DO NOTHING`,
		rec.EventID, rec.Time, rec.Type, rec.Message, data,
	)
	return err
}

func (s *pgSink) close() {
	s.pool.Close()
}

package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go driver, registers "sqlite"

	"github.com/Samarth827/cgroup-governor/internal/model"
)

// sqliteSink mirrors sample records into a local SQLite database so the
// out-of-scope offline training pipeline (spec.md §1) can query them with
// SQL instead of re-parsing the JSONL file. It is optional and
// config-gated (metrics.sqlite_path).
type sqliteSink struct {
	db *sql.DB
}

func openSQLiteSink(path string) (*sqliteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS samples (
	time      REAL    NOT NULL,
	source    TEXT    NOT NULL,
	container TEXT,
	payload   TEXT    NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create samples table: %w", err)
	}
	return &sqliteSink{db: db}, nil
}

func (s *sqliteSink) insertSample(rec model.SampleRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO samples (time, source, container, payload) VALUES (?, ?, ?, ?)`,
		rec.Time, rec.Source, rec.Container, string(payload),
	)
	return err
}

func (s *sqliteSink) close() error {
	return s.db.Close()
}

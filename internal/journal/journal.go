// Package journal implements the append-only event and sample sinks
// described in spec.md §3/§5/§6, grounded on
// ftahirops-xtop/engine/eventlog.go's EventLogWriter (append-open JSONL,
// one json.Encoder.Encode per record).
//
// A Journal always writes the mandatory JSONL sinks. It optionally mirrors
// the same records into sqlite and/or Postgres (see sqlitesink.go,
// pgsink.go) — the domain-stack additions in SPEC_FULL.md that give the
// out-of-scope offline training/evaluation tooling queryable storage.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/Samarth827/cgroup-governor/internal/model"
)

// Journal is shared by the observer and controller. Each process opens its
// own file handles; per spec.md §5 each writer is single-threaded, so no
// in-process locking is required, but appendJSONLine still takes an
// advisory flock for the duration of each write.
type Journal struct {
	mu sync.Mutex

	eventsPath  string
	samplesPath string
	dryRun      bool

	sqlite *sqliteSink
	pg     *pgSink
}

// Config carries the subset of the YAML config the journal needs.
type Config struct {
	EventsSink  string
	SamplesSink string
	SQLitePath  string
	PostgresDSN string
	DryRun      bool
}

// Open constructs a Journal from Config. Optional mirror sinks that fail to
// initialize log a fallback notice and are left nil rather than failing the
// whole process (spec.md §7's policy-error taxonomy applied to the journal's
// own optional backends).
func Open(cfg Config) (*Journal, error) {
	j := &Journal{
		eventsPath:  cfg.EventsSink,
		samplesPath: cfg.SamplesSink,
		dryRun:      cfg.DryRun,
	}
	if cfg.DryRun {
		return j, nil
	}
	if cfg.EventsSink != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.EventsSink), 0o700); err != nil {
			return nil, fmt.Errorf("create events sink dir: %w", err)
		}
	}
	if cfg.SamplesSink != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SamplesSink), 0o700); err != nil {
			return nil, fmt.Errorf("create samples sink dir: %w", err)
		}
	}
	if cfg.SQLitePath != "" {
		sink, err := openSQLiteSink(cfg.SQLitePath)
		if err != nil {
			log.Printf("journal: sqlite mirror disabled: %v", err)
		} else {
			j.sqlite = sink
		}
	}
	if cfg.PostgresDSN != "" {
		sink, err := openPGSink(cfg.PostgresDSN)
		if err != nil {
			log.Printf("journal: postgres mirror disabled: %v", err)
		} else {
			j.pg = sink
		}
	}
	return j, nil
}

// WriteEvent appends an event record to the JSONL sink (or prints it to
// stdout in dry-run mode, per spec.md §7) and mirrors it to any configured
// optional sinks.
func (j *Journal) WriteEvent(rec model.EventRecord) error {
	if rec.EventID == "" {
		rec.EventID = NewEventID()
	}
	if j.dryRun {
		return printJSON(rec)
	}
	if j.eventsPath == "" {
		return nil
	}
	if err := appendJSONLine(j.eventsPath, rec); err != nil {
		return err
	}
	if j.pg != nil {
		if err := j.pg.insertEvent(rec); err != nil {
			log.Printf("journal: postgres event mirror write failed: %v", err)
		}
	}
	return nil
}

// WriteSample appends a sample record to the JSONL sink (or prints it to
// stdout in dry-run mode) and mirrors it to any configured sqlite sink.
func (j *Journal) WriteSample(rec model.SampleRecord) error {
	if j.dryRun {
		return printJSON(rec)
	}
	if j.samplesPath == "" {
		return nil
	}
	if err := appendJSONLine(j.samplesPath, rec); err != nil {
		return err
	}
	if j.sqlite != nil {
		if err := j.sqlite.insertSample(rec); err != nil {
			log.Printf("journal: sqlite sample mirror write failed: %v", err)
		}
	}
	return nil
}

// Close releases any optional sink resources.
func (j *Journal) Close() error {
	var firstErr error
	if j.sqlite != nil {
		if err := j.sqlite.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if j.pg != nil {
		j.pg.close()
	}
	return firstErr
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// appendJSONLine appends one JSON-encoded line to path, holding a
// best-effort non-blocking advisory flock for the duration of the write.
// Failure to acquire the lock does not block or fail the write.
func appendJSONLine(path string, v any) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_ = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return w.Flush()
}

/*
Package store keeps the results of batch test runs in an SQLite database.

Every run is registered with the fingerprint of the grammar model under
test. For every sentence of a run, the gold tree and the derived tree (if
any) are recorded. Recorded runs can be exported into the line-oriented
gold/result file pair used by evaluation tools.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package store

import (
	"bufio"
	"database/sql"
	"io"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pkg/errors"
)

// tracer traces with key 'pcfg.store'.
func tracer() tracing.Trace {
	return tracing.Select("pcfg.store")
}

// Store is an SQLite-backed result store. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model TEXT NOT NULL,
    started_at INTEGER NOT NULL
);

-- derived is NULL for sentences without a parse
CREATE TABLE IF NOT EXISTS results (
    run_id INTEGER NOT NULL,
    source TEXT NOT NULL,
    sentence INTEGER NOT NULL,
    worker INTEGER NOT NULL,
    gold TEXT NOT NULL,
    derived TEXT,
    prob REAL,
    root TEXT,
    start_reached INTEGER DEFAULT 0,
    error TEXT,
    PRIMARY KEY (run_id, source, sentence)
);

CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
`

// Open opens or creates a result database. Use ":memory:" for a transient
// store.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(1) // in-memory databases live per connection
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tracer().Debugf("opened result store %s", dsn)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Run describes a registered test run.
type Run struct {
	ID        int64
	Model     string // fingerprint of the grammar model
	StartedAt time.Time
	Parsed    int
	Failed    int
}

// BeginRun registers a new run for a model and returns its ID.
func (s *Store) BeginRun(fingerprint string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`INSERT INTO runs (model, started_at) VALUES (?, ?)`,
		fingerprint, time.Now().Unix())
	if err != nil {
		return 0, errors.Wrap(err, "cannot register run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "cannot register run")
	}
	tracer().Infof("registered run %d for model %s", id, fingerprint)
	return id, nil
}

// Runs lists all registered runs, oldest first.
func (s *Store) Runs() ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`
		SELECT r.id, r.model, r.started_at,
			COUNT(x.derived), COUNT(x.sentence) - COUNT(x.derived)
		FROM runs r LEFT JOIN results x ON x.run_id = r.id
		GROUP BY r.id ORDER BY r.id`)
	if err != nil {
		return nil, errors.Wrap(err, "cannot list runs")
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var run Run
		var started int64
		if err := rows.Scan(&run.ID, &run.Model, &started, &run.Parsed, &run.Failed); err != nil {
			return nil, errors.Wrap(err, "cannot list runs")
		}
		run.StartedAt = time.Unix(started, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Record is the outcome for a single test sentence.
type Record struct {
	Source       string // corpus file
	Sentence     int    // index within Source
	Worker       int
	Gold         string // bracketed gold tree
	Derived      string // bracketed parse tree, empty if unparsed
	Prob         float64
	Root         string
	StartReached bool
	Error        string
}

// Parsed is a predicate: did the sentence get a parse tree?
func (r Record) Parsed() bool {
	return r.Derived != ""
}

// Record stores the outcome of a sentence. Recording a sentence twice
// replaces the earlier outcome.
func (s *Store) Record(runID int64, r Record) error {
	var derived, root sql.NullString
	var prob sql.NullFloat64
	if r.Parsed() {
		derived = sql.NullString{String: r.Derived, Valid: true}
		root = sql.NullString{String: r.Root, Valid: true}
		prob = sql.NullFloat64{Float64: r.Prob, Valid: true}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO results (run_id, source, sentence, worker, gold,
			derived, prob, root, start_reached, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, r.Source, r.Sentence, r.Worker, r.Gold,
		derived, prob, root, boolToInt(r.StartReached), r.Error)
	return errors.Wrapf(err, "cannot record sentence %d of %s", r.Sentence, r.Source)
}

// Results returns the records of a run, ordered by source and sentence.
func (s *Store) Results(runID int64) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`
		SELECT source, sentence, worker, gold, derived, prob, root, start_reached, error
		FROM results WHERE run_id = ? ORDER BY source, sentence
	`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read results of run %d", runID)
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var r Record
		var derived, root, errmsg sql.NullString
		var prob sql.NullFloat64
		var reached int
		if err := rows.Scan(&r.Source, &r.Sentence, &r.Worker, &r.Gold,
			&derived, &prob, &root, &reached, &errmsg); err != nil {
			return nil, errors.Wrapf(err, "cannot read results of run %d", runID)
		}
		r.Derived, r.Root, r.Error = derived.String, root.String, errmsg.String
		r.Prob = prob.Float64
		r.StartReached = reached != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// Export writes the parsed sentences of a run, one bracketed tree per line,
// to gold and result. Lines of both writers correspond to each other.
// It returns the number of sentences written.
func (s *Store) Export(runID int64, gold, result io.Writer) (int, error) {
	records, err := s.Results(runID)
	if err != nil {
		return 0, err
	}
	gw, rw := bufio.NewWriter(gold), bufio.NewWriter(result)
	n := 0
	for _, r := range records {
		if !r.Parsed() {
			continue
		}
		if _, err := gw.WriteString(r.Gold + "\n"); err != nil {
			return n, errors.Wrap(err, "cannot export gold trees")
		}
		if _, err := rw.WriteString(r.Derived + "\n"); err != nil {
			return n, errors.Wrap(err, "cannot export derived trees")
		}
		n++
	}
	if err := gw.Flush(); err != nil {
		return n, errors.Wrap(err, "cannot export gold trees")
	}
	if err := rw.Flush(); err != nil {
		return n, errors.Wrap(err, "cannot export derived trees")
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

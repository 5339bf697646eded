package batch

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/npillmayer/pcfg/internal/store"
)

// --- Files -----------------------------------------------------------------

// FileSink writes the gold and derived trees of parsed sentences to a pair
// of files per worker, gold-<run>-<worker>.txt and result-<run>-<worker>.txt.
type FileSink struct {
	folder string
	mu     sync.Mutex
	files  map[[2]int]*filePair
}

type filePair struct {
	gold, result   *os.File
	goldW, resultW *bufio.Writer
}

// NewFileSink creates a file sink writing into folder, which is created
// if necessary.
func NewFileSink(folder string) (*FileSink, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, errors.Wrapf(err, "cannot create output folder %s", folder)
	}
	return &FileSink{folder: folder, files: make(map[[2]int]*filePair)}, nil
}

// GoldFile is the name of the gold file of a worker of a run.
func GoldFile(run, worker int) string {
	return fmt.Sprintf("gold-%d-%d.txt", run, worker)
}

// ResultFile is the name of the result file of a worker of a run.
func ResultFile(run, worker int) string {
	return fmt.Sprintf("result-%d-%d.txt", run, worker)
}

// Put writes the trees of a parsed sentence. Other outcomes are ignored.
func (s *FileSink) Put(o Outcome) error {
	if !o.Parsed() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, err := s.pair(o.Run, o.Worker)
	if err != nil {
		return err
	}
	if _, err := pair.goldW.WriteString(o.Gold() + "\n"); err != nil {
		return errors.Wrap(err, "cannot write gold tree")
	}
	if _, err := pair.resultW.WriteString(o.Derived() + "\n"); err != nil {
		return errors.Wrap(err, "cannot write result tree")
	}
	return nil
}

func (s *FileSink) pair(run, worker int) (*filePair, error) {
	key := [2]int{run, worker}
	if pair, ok := s.files[key]; ok {
		return pair, nil
	}
	gold, err := os.Create(filepath.Join(s.folder, GoldFile(run, worker)))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create gold file")
	}
	result, err := os.Create(filepath.Join(s.folder, ResultFile(run, worker)))
	if err != nil {
		gold.Close()
		return nil, errors.Wrap(err, "cannot create result file")
	}
	pair := &filePair{
		gold:    gold,
		result:  result,
		goldW:   bufio.NewWriter(gold),
		resultW: bufio.NewWriter(result),
	}
	s.files[key] = pair
	return pair, nil
}

// Close flushes and closes all files. It returns the first error encountered.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	for key, pair := range s.files {
		keep(pair.goldW.Flush())
		keep(pair.resultW.Flush())
		keep(pair.gold.Close())
		keep(pair.result.Close())
		delete(s.files, key)
	}
	return first
}

// --- Result database -------------------------------------------------------

// StoreSink records every outcome in a result database.
type StoreSink struct {
	store *store.Store
	runID int64
}

// NewStoreSink registers a new run for a model with the given fingerprint
// and returns a sink recording into it.
func NewStoreSink(st *store.Store, fingerprint string) (*StoreSink, error) {
	id, err := st.BeginRun(fingerprint)
	if err != nil {
		return nil, err
	}
	return &StoreSink{store: st, runID: id}, nil
}

// RunID is the ID of the run in the database.
func (s *StoreSink) RunID() int64 {
	return s.runID
}

// Put records an outcome.
func (s *StoreSink) Put(o Outcome) error {
	rec := store.Record{
		Source:   o.Example.SourceID,
		Sentence: o.Example.Index,
		Worker:   o.Worker,
		Gold:     o.Gold(),
		Derived:  o.Derived(),
	}
	if o.Parsed() {
		rec.Prob = o.Result.Prob
		rec.Root = o.Result.Root
		rec.StartReached = o.Result.StartReached
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return s.store.Record(s.runID, rec)
}

// Close does nothing. The store is closed by its owner.
func (s *StoreSink) Close() error {
	return nil
}

// --- Fan-out ---------------------------------------------------------------

// MultiSink hands every outcome to all of its sinks.
type MultiSink []Sink

// Put calls Put for every sink and stops at the first error.
func (m MultiSink) Put(o Outcome) error {
	for _, s := range m {
		if err := s.Put(o); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error encountered.
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/npillmayer/pcfg"
	"github.com/npillmayer/pcfg/cyk"
)

// Outcome is the result of parsing a single example.
type Outcome struct {
	Run     int
	Worker  int
	Example pcfg.Example
	Result  *cyk.Result // nil if Err is set
	Err     error
}

// Parsed is a predicate: did parsing produce a tree?
func (o Outcome) Parsed() bool {
	return o.Err == nil && o.Result != nil && o.Result.Tree != nil
}

// Gold returns the one-line bracketed form of the example's tree.
func (o Outcome) Gold() string {
	if o.Example.Tree == nil {
		return ""
	}
	if s, ok := o.Example.Tree.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", o.Example.Tree)
}

// Derived returns the one-line bracketed form of the parse tree, or "".
func (o Outcome) Derived() string {
	if !o.Parsed() {
		return ""
	}
	return o.Result.Tree.String()
}

// Sink consumes outcomes. Put will be called concurrently from all workers.
type Sink interface {
	Put(o Outcome) error
	Close() error
}

// Summary counts the outcomes of a run.
type Summary struct {
	Sentences int // examples read from the corpus
	Parsed    int // sentences with a parse tree
	Fallbacks int // parsed sentences with a root other than the start symbol
	Failed    int // sentences without a parse
	Errors    int // sentences which caused an error other than a failed parse
}

func (s Summary) String() string {
	return fmt.Sprintf("%d sentences: %d parsed (%d without start symbol), %d failed, %d errors",
		s.Sentences, s.Parsed, s.Fallbacks, s.Failed, s.Errors)
}

func (s *Summary) add(o Outcome) {
	s.Sentences++
	switch {
	case o.Parsed():
		s.Parsed++
		if !o.Result.StartReached {
			s.Fallbacks++
		}
	case errors.Is(o.Err, cyk.ErrNoParse):
		s.Failed++
	default:
		s.Errors++
	}
}

// SentenceParser parses a tokenized sentence. *cyk.Parser implements it.
type SentenceParser interface {
	ParseContext(ctx context.Context, tokens []string) (*cyk.Result, error)
}

// Runner parses all examples of a corpus with a shared parser.
type Runner struct {
	Parser  SentenceParser
	Workers int  // number of concurrent sentences, at least 1
	RunID   int  // identifies the run in output file names
	Sink    Sink // may be nil
}

// Run parses every example of a corpus. Errors of individual sentences,
// including panics, are recorded in the outcome and do not stop the run.
// Run stops early if ctx is cancelled, if the corpus fails or if the sink
// returns an error. The sink is not closed.
func (r *Runner) Run(ctx context.Context, corpus pcfg.Corpus) (Summary, error) {
	var summary Summary
	if r.Parser == nil {
		return summary, errors.New("runner has no parser")
	}
	workers := max(r.Workers, 1)
	tracer().Infof("run %d: starting %d workers", r.RunID, workers)
	examples := make(chan pcfg.Example)
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for ex := range examples {
				if err := ctx.Err(); err != nil {
					return err
				}
				o := r.parse(ctx, w, ex)
				if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
					return o.Err
				}
				mu.Lock()
				summary.add(o)
				mu.Unlock()
				if r.Sink != nil {
					if err := r.Sink.Put(o); err != nil {
						return errors.Wrapf(err, "worker %d", w)
					}
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(examples)
		for corpus.Next() {
			select {
			case examples <- corpus.Example():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return corpus.Err()
	})
	err := g.Wait()
	tracer().Infof("run %d: %v", r.RunID, summary)
	return summary, err
}

func (r *Runner) parse(ctx context.Context, worker int, ex pcfg.Example) (o Outcome) {
	o = Outcome{Run: r.RunID, Worker: worker, Example: ex}
	defer func() {
		if p := recover(); p != nil {
			o.Result = nil
			o.Err = errors.Errorf("panic: %v", p)
			tracer().Errorf("run %d, worker %d: sentence %d of %s: %v",
				r.RunID, worker, ex.Index, ex.SourceID, o.Err)
		}
	}()
	tracer().Debugf("run %d, worker %d: parsing sentence %d of %s",
		r.RunID, worker, ex.Index, ex.SourceID)
	o.Result, o.Err = r.Parser.ParseContext(ctx, ex.Tokens)
	switch {
	case o.Err == nil:
	case errors.Is(o.Err, cyk.ErrNoParse):
		tracer().Infof("run %d, worker %d: no parse for sentence %d of %s",
			r.RunID, worker, ex.Index, ex.SourceID)
	default:
		tracer().Errorf("run %d, worker %d: sentence %d of %s: %v",
			r.RunID, worker, ex.Index, ex.SourceID, o.Err)
	}
	return o
}

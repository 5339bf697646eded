package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gonuts/commander"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"

	"github.com/npillmayer/pcfg/batch"
	"github.com/npillmayer/pcfg/cyk"
	"github.com/npillmayer/pcfg/grammar"
	"github.com/npillmayer/pcfg/internal/store"
	"github.com/npillmayer/pcfg/treebank"
)

var (
	corpusDir  string
	filePat    string
	trainIDs   string
	testIDs    string
	modelFile  string
	outDir     string
	dbFile     string
	ratio      float64
	seed       int64
	runs       int
	runID      int
	workers    int
	exportRun  int64
	startSym   string
	unaryClose bool
)

// --- split -----------------------------------------------------------------

func splitCmd() *commander.Command {
	cmd := newCommand("split", runSplit,
		"-corpus <dir> -train <ids> -test <ids> [-ratio 0.9] [-seed 1]",
		"splits the files of a treebank into a training and a test set",
		"writes comma-separated lists of file IDs for a training and a test set")
	cmd.Flag.StringVar(&corpusDir, "corpus", "", "Treebank folder")
	cmd.Flag.StringVar(&filePat, "files", "*", "Pattern for treebank files")
	cmd.Flag.StringVar(&trainIDs, "train", "", "Output file for training file IDs")
	cmd.Flag.StringVar(&testIDs, "test", "", "Output file for test file IDs")
	cmd.Flag.Float64Var(&ratio, "ratio", 0.9, "Share of files used for training")
	cmd.Flag.Int64Var(&seed, "seed", 1, "Random seed for shuffling")
	return cmd
}

func runSplit(cmd *commander.Command, args []string) error {
	if err := setup(cmd); err != nil {
		return err
	}
	if err := verifyFlags(cmd, "corpus", "train", "test"); err != nil {
		return err
	}
	ids, err := treebank.ListFiles(corpusDir, filePat)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.Errorf("no files matching %q in %s", filePat, corpusDir)
	}
	if err := treebank.WriteSplit(ids, ratio, seed, trainIDs, testIDs); err != nil {
		return err
	}
	pterm.Info.Printf("split %d files into %s and %s\n", len(ids), trainIDs, testIDs)
	return nil
}

// --- train -----------------------------------------------------------------

func trainCmd() *commander.Command {
	cmd := newCommand("train", runTrain,
		"-corpus <dir> -train <ids> -model <grammar.txt>",
		"induces a PCFG from a treebank",
		"counts the productions of all training trees in Chomsky Normal Form and\nsaves the normalized grammar")
	cmd.Flag.StringVar(&corpusDir, "corpus", "", "Treebank folder")
	cmd.Flag.StringVar(&trainIDs, "train", "", "File with training file IDs")
	cmd.Flag.StringVar(&modelFile, "model", "", "Output grammar file")
	return cmd
}

func runTrain(cmd *commander.Command, args []string) error {
	if err := setup(cmd); err != nil {
		return err
	}
	if err := verifyFlags(cmd, "corpus", "train", "model"); err != nil {
		return err
	}
	ids, err := treebank.ReadFileIDs(trainIDs)
	if err != nil {
		return err
	}
	model := grammar.NewModel()
	if err := model.Train(treebank.NewFileCorpus(corpusDir, ids)); err != nil {
		return err
	}
	model.Normalize()
	model.InitializePriors()
	if err := model.Save(modelFile); err != nil {
		return err
	}
	pterm.Info.Printf("%v\n", model.Stats())
	pterm.Info.Printf("saved grammar %s to %s\n", model.Fingerprint(), modelFile)
	return nil
}

// --- test ------------------------------------------------------------------

func testCmd() *commander.Command {
	cmd := newCommand("test", runTest,
		"-corpus <dir> -test <ids> -model <grammar.txt> -out <dir> [-runs n -run i] [-db <results.db>]",
		"parses a test set and writes gold and derived trees",
		"parses the sentences of a test set. Test files may be sharded over several\n"+
			"runs; run i of n parses the i-th part. Use 'stitch' to merge the output of all runs.\n"+
			"A test set without shards is stitched automatically.")
	cmd.Flag.StringVar(&corpusDir, "corpus", "", "Treebank folder")
	cmd.Flag.StringVar(&testIDs, "test", "", "File with test file IDs")
	cmd.Flag.StringVar(&modelFile, "model", "", "Grammar file")
	cmd.Flag.StringVar(&outDir, "out", "", "Output folder")
	cmd.Flag.StringVar(&dbFile, "db", "", "Optional result database")
	cmd.Flag.IntVar(&runs, "runs", 1, "Number of runs")
	cmd.Flag.IntVar(&runID, "run", 1, "Run to execute, counting from 1")
	cmd.Flag.IntVar(&workers, "workers", 1, "Number of sentences parsed concurrently")
	cmd.Flag.StringVar(&startSym, "start", cyk.DefaultStartSymbol, "Start symbol")
	cmd.Flag.BoolVar(&unaryClose, "unary", false, "Apply unary rules to spans longer than 1")
	return cmd
}

func runTest(cmd *commander.Command, args []string) error {
	if err := setup(cmd); err != nil {
		return err
	}
	if err := verifyFlags(cmd, "corpus", "test", "model", "out"); err != nil {
		return err
	}
	ids, err := treebank.ReadFileIDs(testIDs)
	if err != nil {
		return err
	}
	if ids, err = treebank.Shard(ids, runID, runs); err != nil {
		return err
	}
	model, err := grammar.Load(modelFile)
	if err != nil {
		return err
	}
	fileSink, err := batch.NewFileSink(outDir)
	if err != nil {
		return err
	}
	sinks := batch.MultiSink{fileSink}
	var storeSink *batch.StoreSink
	if dbFile != "" {
		st, err := store.Open(dbFile)
		if err != nil {
			return err
		}
		defer st.Close()
		if storeSink, err = batch.NewStoreSink(st, model.Fingerprint()); err != nil {
			return err
		}
		sinks = append(sinks, storeSink)
	}
	runner := &batch.Runner{
		Parser:  cyk.NewParser(model, cyk.StartSymbol(startSym), cyk.UnaryClosure(unaryClose)),
		Workers: workers,
		RunID:   runID,
		Sink:    sinks,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	tracer().Infof("run %d of %d: %d files", runID, runs, len(ids))
	summary, err := runner.Run(ctx, treebank.NewFileCorpus(corpusDir, ids))
	if cerr := sinks.Close(); err == nil {
		err = cerr
	}
	pterm.Info.Printf("run %d: %v\n", runID, summary)
	if storeSink != nil {
		pterm.Info.Printf("results recorded as run %d in %s\n", storeSink.RunID(), dbFile)
	}
	if err != nil {
		return err
	}
	if n, stitched, err := stitchSingleRun(outDir, runs); err != nil {
		return err
	} else if stitched {
		pterm.Info.Printf("wrote %d trees to %s\n", n, filepath.Join(outDir, batch.GoldFileName))
	}
	return nil
}

// stitchSingleRun merges the output files if the test set has not been
// sharded. Sharded runs have to be stitched explicitly once all of them
// are done.
func stitchSingleRun(folder string, runs int) (int, bool, error) {
	if runs != 1 {
		return 0, false, nil
	}
	n, err := batch.Stitch(folder)
	return n, err == nil, err
}

// --- stitch ----------------------------------------------------------------

func stitchCmd() *commander.Command {
	cmd := newCommand("stitch", runStitch,
		"-out <dir>",
		"merges the output files of test runs",
		"merges the per-worker gold and result files of all test runs into\ngold.txt and result.txt")
	cmd.Flag.StringVar(&outDir, "out", "", "Output folder of test runs")
	return cmd
}

func runStitch(cmd *commander.Command, args []string) error {
	if err := setup(cmd); err != nil {
		return err
	}
	if err := verifyFlags(cmd, "out"); err != nil {
		return err
	}
	n, err := batch.Stitch(outDir)
	if err != nil {
		return err
	}
	pterm.Info.Printf("wrote %d trees to %s and %s\n", n,
		filepath.Join(outDir, batch.GoldFileName), filepath.Join(outDir, batch.ResultFileName))
	return nil
}

// --- export ----------------------------------------------------------------

func exportCmd() *commander.Command {
	cmd := newCommand("export", runExport,
		"-db <results.db> [-runid n] -out <dir>",
		"exports a recorded test run",
		"writes gold.txt and result.txt for a test run recorded in a result database.\n"+
			"Without -runid, all recorded runs are listed.")
	cmd.Flag.StringVar(&dbFile, "db", "", "Result database")
	cmd.Flag.Int64Var(&exportRun, "runid", 0, "ID of the recorded run")
	cmd.Flag.StringVar(&outDir, "out", "", "Output folder")
	return cmd
}

func runExport(cmd *commander.Command, args []string) error {
	if err := setup(cmd); err != nil {
		return err
	}
	if err := verifyFlags(cmd, "db"); err != nil {
		return err
	}
	st, err := store.Open(dbFile)
	if err != nil {
		return err
	}
	defer st.Close()
	if exportRun == 0 {
		recorded, err := st.Runs()
		if err != nil {
			return err
		}
		table := pterm.TableData{{"Run", "Model", "Started", "Parsed", "Failed"}}
		for _, r := range recorded {
			table = append(table, []string{
				pterm.Sprint(r.ID), r.Model, r.StartedAt.Format("2006-01-02 15:04"),
				pterm.Sprint(r.Parsed), pterm.Sprint(r.Failed),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		return nil
	}
	if err := verifyFlags(cmd, "out"); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "cannot create output folder")
	}
	gold, err := os.Create(filepath.Join(outDir, batch.GoldFileName))
	if err != nil {
		return errors.Wrap(err, "cannot export")
	}
	defer gold.Close()
	result, err := os.Create(filepath.Join(outDir, batch.ResultFileName))
	if err != nil {
		return errors.Wrap(err, "cannot export")
	}
	defer result.Close()
	n, err := st.Export(exportRun, gold, result)
	if err != nil {
		return err
	}
	pterm.Info.Printf("exported %d trees of run %d\n", n, exportRun)
	return nil
}

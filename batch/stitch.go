package batch

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Names of the files written by Stitch.
const (
	GoldFileName   = "gold.txt"
	ResultFileName = "result.txt"
)

// Stitch merges all per-worker gold and result files in folder into
// gold.txt and result.txt. Files are merged in lexical order of their
// names. Stitch fails if gold and result files do not pair up or if
// the line counts of a pair differ. It returns the number of lines written
// to each of the merged files.
func Stitch(folder string) (int, error) {
	golds, err := filepath.Glob(filepath.Join(folder, "gold-*.txt"))
	if err != nil {
		return 0, errors.Wrap(err, "cannot list gold files")
	}
	results, err := filepath.Glob(filepath.Join(folder, "result-*.txt"))
	if err != nil {
		return 0, errors.Wrap(err, "cannot list result files")
	}
	if len(golds) != len(results) {
		return 0, errors.Errorf("found %d gold files, but %d result files", len(golds), len(results))
	}
	slices.Sort(golds)
	var goldLines, resultLines []string
	for _, g := range golds {
		base := filepath.Base(g)
		r := filepath.Join(folder, "result-"+strings.TrimPrefix(base, "gold-"))
		gl, err := readLines(g)
		if err != nil {
			return 0, err
		}
		rl, err := readLines(r)
		if err != nil {
			return 0, err
		}
		if len(gl) != len(rl) {
			return 0, errors.Errorf("%s has %d trees, but %s has %d",
				base, len(gl), filepath.Base(r), len(rl))
		}
		tracer().Debugf("stitching %s: %d trees", base, len(gl))
		goldLines = append(goldLines, gl...)
		resultLines = append(resultLines, rl...)
	}
	if err := writeLines(filepath.Join(folder, GoldFileName), goldLines); err != nil {
		return 0, err
	}
	if err := writeLines(filepath.Join(folder, ResultFileName), resultLines); err != nil {
		return 0, err
	}
	tracer().Infof("stitched %d files with %d trees", len(golds), len(goldLines))
	return len(goldLines), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot stitch")
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, errors.Wrapf(scanner.Err(), "cannot read %s", path)
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot stitch")
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "cannot write %s", path)
	}
	return f.Close()
}

package treebank

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ReadFileIDs reads a comma-separated list of file IDs.
func ReadFileIDs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read file IDs")
	}
	var ids []string
	for _, id := range strings.Split(string(data), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// WriteFileIDs writes a comma-separated list of file IDs.
func WriteFileIDs(path string, ids []string) error {
	err := os.WriteFile(path, []byte(strings.Join(ids, ",")), 0o644)
	return errors.Wrapf(err, "cannot write file IDs to %s", path)
}

// ListFiles returns the names of the files in dir matching a glob pattern,
// e.g. "*.mrg", sorted.
func ListFiles(dir, pattern string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.Wrapf(err, "bad file pattern %q", pattern)
	}
	ids := make([]string, len(paths))
	for i, p := range paths {
		ids[i] = filepath.Base(p)
	}
	sort.Strings(ids)
	return ids, nil
}

// Split shuffles ids and cuts them into a training part, holding the given
// ratio of all IDs, and a test part. Equal seeds result in equal splits.
func Split(ids []string, ratio float64, seed int64) (train, test []string) {
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	shuffled := append([]string(nil), ids...)
	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	cut := int(ratio * float64(len(shuffled)))
	return shuffled[:cut], shuffled[cut:]
}

// WriteSplit splits ids (see Split) and writes both parts as lists of file IDs.
func WriteSplit(ids []string, ratio float64, seed int64, trainPath, testPath string) error {
	train, test := Split(ids, ratio, seed)
	if err := WriteFileIDs(trainPath, train); err != nil {
		return err
	}
	if err := WriteFileIDs(testPath, test); err != nil {
		return err
	}
	tracer().Infof("split %d files into %d for training and %d for testing",
		len(ids), len(train), len(test))
	return nil
}

// Shard returns the part of ids to be processed by run number runID
// (counting from 1) out of runs. Parts are contiguous and differ in size by
// at most one.
func Shard(ids []string, runID, runs int) ([]string, error) {
	if runs < 1 || runID < 1 || runID > runs {
		return nil, errors.Errorf("invalid run %d of %d", runID, runs)
	}
	lo := (runID - 1) * len(ids) / runs
	hi := runID * len(ids) / runs
	return ids[lo:hi], nil
}

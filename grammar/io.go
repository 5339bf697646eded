package grammar

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ErrMalformedLine is returned when reading a model line which does not
// conform to the format 'HEAD -> BODY,SCORE'.
var ErrMalformedLine = errors.New("malformed model line")

const arrow = " -> "

// WriteTo writes every rule of the model, one body per line. It implements
// io.WriterTo.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, r := range m.Rules() {
		for _, line := range r.Lines() {
			k, err := bw.WriteString(line + "\n")
			n += int64(k)
			if err != nil {
				return n, err
			}
		}
	}
	return n, bw.Flush()
}

// Save writes the model to a file.
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot save model")
	}
	if _, err = m.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "cannot write model to %s", path)
	}
	tracer().Infof("saved model with %d heads to %s", m.Size(), path)
	return f.Close()
}

// ReadModel reads a model from r. Rules are normalized and priors are
// initialized, thus the model is ready for parsing.
func ReadModel(r io.Reader) (*Model, error) {
	m := NewModel()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		head, body, score, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineno)
		}
		m.ruleFor(head).SetExpansion(body, score)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read model")
	}
	m.Normalize()
	m.InitializePriors()
	return m, nil
}

// Load reads a model from a file. See ReadModel.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load model")
	}
	defer f.Close()
	m, err := ReadModel(f)
	if err != nil {
		return nil, errors.Wrapf(err, "model file %s", path)
	}
	tracer().Infof("loaded model with %d heads from %s", m.Size(), path)
	return m, nil
}

// parseLine splits a line 'HEAD -> BODY,SCORE'. The score is the last
// comma-separated field; everything between the arrow and the last comma
// is the body.
func parseLine(line string) (head, body string, score float64, err error) {
	inx := strings.Index(line, arrow)
	if inx <= 0 {
		return "", "", 0, errors.Wrapf(ErrMalformedLine, "missing '%s' in %q", strings.TrimSpace(arrow), line)
	}
	head = line[:inx]
	fields := strings.Split(line[inx+len(arrow):], ",")
	if len(fields) < 2 {
		return "", "", 0, errors.Wrapf(ErrMalformedLine, "missing score in %q", line)
	}
	body = strings.Join(fields[:len(fields)-1], ",")
	if body == "" {
		return "", "", 0, errors.Wrapf(ErrMalformedLine, "empty body in %q", line)
	}
	if symbols := SplitBody(body); len(symbols) > 2 || slices.Contains(symbols, "") {
		return "", "", 0, errors.Wrapf(ErrInvalidBody, "body %q of %q", body, line)
	}
	last := strings.TrimSpace(fields[len(fields)-1])
	if score, err = strconv.ParseFloat(last, 64); err != nil {
		return "", "", 0, errors.Wrapf(ErrMalformedLine, "score %q is not a number", last)
	}
	return head, body, score, nil
}

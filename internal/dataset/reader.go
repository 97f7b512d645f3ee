package dataset

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/happyhackingspace/seqlearn/model"
)

// Unannotated is the label column value of a token whose label is unknown.
const Unannotated = "?"

// Corpus is a parsed dataset file.
type Corpus struct {
	Examples []model.Example
	// Lines holds the feature columns of every token, per sequence, as read.
	Lines [][][]string
}

// Sequences returns the input sequences of the corpus.
func (c *Corpus) Sequences() []*model.Sequence {
	seqs := make([]*model.Sequence, len(c.Examples))
	for i := range c.Examples {
		seqs[i] = c.Examples[i].Input
	}
	return seqs
}

// Reader parses the column format: one token per line, whitespace-separated
// columns, the last column being the label. Feature columns are written
// "name" or "name:weight". Blank lines end a sequence and lines starting
// with '#' are comments.
type Reader struct {
	Labels   *Alphabet
	Features *Alphabet
	// Frozen stops the alphabets from growing: unknown features are dropped
	// and sequences with unknown labels are skipped with a warning.
	Frozen bool
	// Unlabeled reads every column as a feature.
	Unlabeled bool
	// IgnoreLabels skips the label column without reading it.
	IgnoreLabels bool
}

// NewReader returns a Reader that grows fresh alphabets.
func NewReader() *Reader {
	return &Reader{Labels: NewAlphabet(), Features: NewAlphabet()}
}

// ReadFile reads a dataset from path.
func (r *Reader) ReadFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

type pending struct {
	start   int
	tokens  []model.Token
	labels  []string
	columns [][]string
}

// Read parses a dataset. Sequence IDs are assigned densely in reading order.
func (r *Reader) Read(in io.Reader) (*Corpus, error) {
	corpus := &Corpus{}
	var cur pending
	flush := func() {
		if len(cur.tokens) == 0 {
			return
		}
		if r.add(corpus, &cur) {
			corpus.Lines = append(corpus.Lines, cur.columns)
		}
		cur = pending{}
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Fields(line)
		featCols := cols
		label := ""
		if !r.Unlabeled {
			if len(cols) < 2 {
				return nil, fmt.Errorf("line %d: want features and a label, got %d column(s)", lineNo, len(cols))
			}
			featCols = cols[:len(cols)-1]
			label = cols[len(cols)-1]
		}
		tok := r.Token(featCols)
		if len(cur.tokens) == 0 {
			cur.start = lineNo
		}
		cur.tokens = append(cur.tokens, tok)
		cur.labels = append(cur.labels, label)
		cur.columns = append(cur.columns, featCols)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return corpus, nil
}

// Token converts feature columns into a token with sorted codes. A column
// "name:weight" whose suffix parses as a float carries that weight; any
// other column has weight 1.
func (r *Reader) Token(cols []string) model.Token {
	tok := make(model.Token, 0, len(cols))
	for _, col := range cols {
		name, value := col, 1.0
		if i := strings.LastIndexByte(col, ':'); i > 0 && i < len(col)-1 {
			v, err := strconv.ParseFloat(col[i+1:], 64)
			if err == nil {
				name, value = col[:i], v
			}
		}
		var code int
		if r.Frozen {
			code = r.Features.Get(name)
			if code < 0 {
				continue
			}
		} else {
			code = r.Features.Add(name)
		}
		tok = append(tok, model.Feature{Code: code, Value: value})
	}
	tok.Sort()
	return tok
}

// add converts a pending sequence into an example. It reports false when the
// sequence was skipped.
func (r *Reader) add(c *Corpus, p *pending) bool {
	n := len(p.tokens)
	gold := make([]int, n)
	var annotated []bool
	for t, label := range p.labels {
		switch {
		case r.Unlabeled, r.IgnoreLabels:
			gold[t] = 0
		case label == Unannotated:
			if annotated == nil {
				annotated = make([]bool, n)
				for i := range t {
					annotated[i] = true
				}
			}
			annotated[t] = false
			gold[t] = 0
		default:
			var id int
			if r.Frozen {
				id = r.Labels.Get(label)
				if id < 0 {
					slog.Warn("Skipping sequence with unknown label", "line", p.start, "label", label)
					return false
				}
			} else {
				id = r.Labels.Add(label)
			}
			gold[t] = id
			if annotated != nil {
				annotated[t] = true
			}
		}
	}
	seq := &model.Sequence{ID: len(c.Examples), Tokens: p.tokens}
	c.Examples = append(c.Examples, model.Example{Input: seq, Gold: gold, Annotated: annotated})
	return true
}

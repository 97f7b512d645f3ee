// Package eval scores predicted label sequences against gold ones.
package eval

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Result accumulates token and sequence counts and a confusion matrix.
type Result struct {
	TokenCorrect    int
	TokenTotal      int
	SequenceCorrect int
	SequenceTotal   int
	// Confusion[gold][pred] counts annotated tokens.
	Confusion [][]int
}

// LabelScore holds the per-label metrics.
type LabelScore struct {
	Label     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// NewResult returns an empty result over numLabels labels.
func NewResult(numLabels int) *Result {
	conf := make([][]int, numLabels)
	for i := range conf {
		conf[i] = make([]int, numLabels)
	}
	return &Result{Confusion: conf}
}

// NumLabels returns the number of labels in the confusion matrix.
func (r *Result) NumLabels() int {
	return len(r.Confusion)
}

// Add scores one sequence. Only annotated positions count; a nil mask
// annotates every position. A sequence is correct when every annotated
// position is.
func (r *Result) Add(gold, pred []int, annotated []bool) error {
	if len(gold) != len(pred) {
		return fmt.Errorf("eval: gold has %d labels, prediction %d", len(gold), len(pred))
	}
	if annotated != nil && len(annotated) != len(gold) {
		return fmt.Errorf("eval: gold has %d labels, mask %d", len(gold), len(annotated))
	}
	n := r.NumLabels()
	allCorrect := true
	for t := range gold {
		if annotated != nil && !annotated[t] {
			continue
		}
		g, p := gold[t], pred[t]
		if g < 0 || g >= n || p < 0 || p >= n {
			return fmt.Errorf("eval: label out of range at %d: gold %d, predicted %d", t, g, p)
		}
		r.Confusion[g][p]++
		r.TokenTotal++
		if g == p {
			r.TokenCorrect++
		} else {
			allCorrect = false
		}
	}
	r.SequenceTotal++
	if allCorrect {
		r.SequenceCorrect++
	}
	return nil
}

// Merge adds the counts of o, which must have the same labels.
func (r *Result) Merge(o *Result) {
	r.TokenCorrect += o.TokenCorrect
	r.TokenTotal += o.TokenTotal
	r.SequenceCorrect += o.SequenceCorrect
	r.SequenceTotal += o.SequenceTotal
	for g := range r.Confusion {
		for p := range r.Confusion[g] {
			r.Confusion[g][p] += o.Confusion[g][p]
		}
	}
}

// TokenAccuracy returns the fraction of annotated tokens labelled correctly.
func (r *Result) TokenAccuracy() float64 {
	return ratio(r.TokenCorrect, r.TokenTotal)
}

// SequenceAccuracy returns the fraction of fully correct sequences.
func (r *Result) SequenceAccuracy() float64 {
	return ratio(r.SequenceCorrect, r.SequenceTotal)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Score returns precision, recall and F1 of one label.
func (r *Result) Score(label int) LabelScore {
	tp := r.Confusion[label][label]
	predicted, support := 0, 0
	for i := range r.Confusion {
		predicted += r.Confusion[i][label]
		support += r.Confusion[label][i]
	}
	s := LabelScore{
		Label:     label,
		Precision: ratio(tp, predicted),
		Recall:    ratio(tp, support),
		Support:   support,
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

// Scores returns the scores of every label that occurs in gold or
// predictions, most frequent gold label first.
func (r *Result) Scores() []LabelScore {
	var out []LabelScore
	for l := range r.Confusion {
		s := r.Score(l)
		if s.Support == 0 && r.predicted(l) == 0 {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Support > out[j].Support })
	return out
}

func (r *Result) predicted(label int) int {
	n := 0
	for i := range r.Confusion {
		n += r.Confusion[i][label]
	}
	return n
}

// MacroF1 returns the unweighted mean F1 over the labels Scores reports.
func (r *Result) MacroF1() float64 {
	f1 := r.f1s(false)
	if len(f1) == 0 {
		return 0
	}
	return floats.Sum(f1) / float64(len(f1))
}

// WeightedF1 returns the mean F1 weighted by gold support.
func (r *Result) WeightedF1() float64 {
	f1 := r.f1s(true)
	if r.TokenTotal == 0 {
		return 0
	}
	return floats.Sum(f1) / float64(r.TokenTotal)
}

func (r *Result) f1s(weighted bool) []float64 {
	scores := r.Scores()
	f1 := make([]float64, len(scores))
	w := make([]float64, len(scores))
	for i, s := range scores {
		f1[i] = s.F1
		w[i] = 1
		if weighted {
			w[i] = float64(s.Support)
		}
	}
	floats.Mul(f1, w)
	return f1
}

package eval

import (
	"math"
	"reflect"
	"testing"
)

func TestResultAdd(t *testing.T) {
	r := NewResult(3)
	if err := r.Add([]int{0, 1, 2}, []int{0, 1, 2}, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Add([]int{0, 0, 1}, []int{0, 1, 1}, nil); err != nil {
		t.Fatal(err)
	}
	// Position 1 is wrong but not annotated.
	if err := r.Add([]int{2, 2}, []int{2, 0}, []bool{true, false}); err != nil {
		t.Fatal(err)
	}

	if r.TokenCorrect != 6 || r.TokenTotal != 7 {
		t.Errorf("tokens %d/%d, want 6/7", r.TokenCorrect, r.TokenTotal)
	}
	if r.SequenceCorrect != 2 || r.SequenceTotal != 3 {
		t.Errorf("sequences %d/%d, want 2/3", r.SequenceCorrect, r.SequenceTotal)
	}
	if math.Abs(r.TokenAccuracy()-6.0/7) > 1e-10 {
		t.Errorf("token accuracy = %v", r.TokenAccuracy())
	}
	if r.Confusion[0][1] != 1 || r.Confusion[2][2] != 2 {
		t.Errorf("confusion = %v", r.Confusion)
	}
}

func TestResultAddErrors(t *testing.T) {
	r := NewResult(2)
	if err := r.Add([]int{0}, []int{0, 1}, nil); err == nil {
		t.Error("length mismatch accepted")
	}
	if err := r.Add([]int{0}, []int{0}, []bool{true, true}); err == nil {
		t.Error("mask mismatch accepted")
	}
	if err := r.Add([]int{0}, []int{5}, nil); err == nil {
		t.Error("out-of-range label accepted")
	}
}

func TestScores(t *testing.T) {
	r := NewResult(3)
	// gold 0 0 0 1, pred 0 0 1 1; label 2 never occurs.
	if err := r.Add([]int{0, 0, 0, 1}, []int{0, 0, 1, 1}, nil); err != nil {
		t.Fatal(err)
	}
	s0, s1 := r.Score(0), r.Score(1)
	if s0.Precision != 1 || math.Abs(s0.Recall-2.0/3) > 1e-10 || s0.Support != 3 {
		t.Errorf("label 0 = %+v", s0)
	}
	if s1.Precision != 0.5 || s1.Recall != 1 || s1.Support != 1 {
		t.Errorf("label 1 = %+v", s1)
	}
	wantF0 := 2 * (2.0 / 3) / (1 + 2.0/3)
	wantF1 := 2 * 0.5 / 1.5
	if math.Abs(s0.F1-wantF0) > 1e-10 || math.Abs(s1.F1-wantF1) > 1e-10 {
		t.Errorf("f1 = %v %v", s0.F1, s1.F1)
	}

	scores := r.Scores()
	if len(scores) != 2 || scores[0].Label != 0 {
		t.Fatalf("scores = %+v", scores)
	}
	if got, want := r.MacroF1(), (wantF0+wantF1)/2; math.Abs(got-want) > 1e-10 {
		t.Errorf("macro F1 = %v, want %v", got, want)
	}
	if got, want := r.WeightedF1(), (3*wantF0+wantF1)/4; math.Abs(got-want) > 1e-10 {
		t.Errorf("weighted F1 = %v, want %v", got, want)
	}
}

func TestEmptyResult(t *testing.T) {
	r := NewResult(2)
	if r.TokenAccuracy() != 0 || r.SequenceAccuracy() != 0 || r.MacroF1() != 0 || r.WeightedF1() != 0 {
		t.Error("empty result should score 0")
	}
}

func TestMerge(t *testing.T) {
	a, b := NewResult(2), NewResult(2)
	a.Add([]int{0, 1}, []int{0, 1}, nil)
	b.Add([]int{1}, []int{0}, nil)
	a.Merge(b)
	if a.TokenTotal != 3 || a.TokenCorrect != 2 || a.SequenceTotal != 2 || a.Confusion[1][0] != 1 {
		t.Errorf("merged = %+v", a)
	}
}

func TestGroupKFold(t *testing.T) {
	groups := []int{5, 1, 5, 3, 1, 9}
	folds := GroupKFold(groups, 2)
	want := [][]int{{0, 1, 2, 4}, {3, 5}}
	if !reflect.DeepEqual(folds, want) {
		t.Errorf("folds = %v, want %v", folds, want)
	}
	if got := GroupKFold(groups, 10); len(got) != 4 {
		t.Errorf("got %d folds, want one per group", len(got))
	}
	if GroupKFold(nil, 3) != nil {
		t.Error("no groups should give no folds")
	}
}

func TestTestMask(t *testing.T) {
	if got := TestMask(4, []int{1, 3}); !reflect.DeepEqual(got, []bool{false, true, false, true}) {
		t.Errorf("mask = %v", got)
	}
}

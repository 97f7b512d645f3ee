package viterbi

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/happyhackingspace/seqlearn/model"
)

func randomStore(t *testing.T, rng *rand.Rand, order, n, m int) *model.DenseStore {
	t.Helper()
	s := model.NewDense(order, n, m)
	for y := range n {
		s.SetInitial(y, rng.NormFloat64())
		for to := range n {
			s.SetTransition(y, to, rng.NormFloat64())
		}
		for sym := range m {
			if err := s.SetEmission(y, sym, rng.NormFloat64()); err != nil {
				t.Fatal(err)
			}
		}
	}
	if order == 2 {
		for p2 := range n + 1 {
			for p1 := range n + 1 {
				for y := range n {
					s.SetTransition2(p2, p1, y, rng.NormFloat64())
				}
			}
		}
	}
	return s
}

func randomSequence(rng *rand.Rand, T, m int) *model.Sequence {
	seq := &model.Sequence{Tokens: make([]model.Token, T)}
	for t := range T {
		tok := model.Token{
			{Code: rng.Intn(m), Value: 1},
			{Code: rng.Intn(m), Value: rng.Float64() + 0.5},
		}
		tok.Sort()
		seq.Tokens[t] = tok
	}
	return seq
}

// bruteForce enumerates every label sequence of length T over n states
// accepted by keep and returns the best one under score.
func bruteForce(n, T int, keep func([]int) bool, score func([]int) float64) ([]int, float64) {
	path := make([]int, T)
	var best []int
	bestScore := math.Inf(-1)
	for {
		if keep == nil || keep(path) {
			if sc := score(path); sc > bestScore {
				bestScore = sc
				best = append([]int(nil), path...)
			}
		}
		i := T - 1
		for i >= 0 {
			path[i]++
			if path[i] < n {
				break
			}
			path[i] = 0
			i--
		}
		if i < 0 {
			return best, bestScore
		}
	}
}

func hamming(a, b []int, annotated []bool, wa, wn float64) float64 {
	var loss float64
	for t := range a {
		if a[t] == b[t] {
			continue
		}
		if annotated != nil && !annotated[t] {
			loss += wn
		} else {
			loss += wa
		}
	}
	return loss
}

func TestFirstOrderMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n, m = 3, 5
	for trial := range 30 {
		T := 1 + trial%5
		s := randomStore(t, rng, 1, n, m)
		seq := randomSequence(rng, T, m)

		path, score, err := NewFirstOrder(0).Decode(s, seq)
		if err != nil {
			t.Fatal(err)
		}
		want, wantScore := bruteForce(n, T, nil, func(p []int) float64 { return PathScore(s, seq, p) })
		if !reflect.DeepEqual(path, want) {
			t.Errorf("trial %d: path = %v, want %v", trial, path, want)
		}
		if math.Abs(score-wantScore) > 1e-9 {
			t.Errorf("trial %d: score = %v, want %v", trial, score, wantScore)
		}
	}
}

func TestFirstOrderLengthOne(t *testing.T) {
	s := model.NewDense(1, 3, 1)
	seq := &model.Sequence{Tokens: []model.Token{{{Code: 0, Value: 1}}}}

	// all zero: the default state wins every tie
	for def := range 3 {
		path, _, err := NewFirstOrder(def).Decode(s, seq)
		if err != nil {
			t.Fatal(err)
		}
		if len(path) != 1 || path[0] != def {
			t.Errorf("default %d: path = %v", def, path)
		}
	}

	// states 0 and 2 tie above the default: the first found maximizer wins
	s.SetInitial(0, 1)
	if err := s.SetEmission(2, 0, 1); err != nil {
		t.Fatal(err)
	}
	path, score, err := NewFirstOrder(1).Decode(s, seq)
	if err != nil {
		t.Fatal(err)
	}
	if path[0] != 0 || score != 1 {
		t.Errorf("path = %v score = %v, want [0] 1", path, score)
	}

	// argmax of emission + initial
	s.SetInitial(1, 3)
	path, score, _ = NewFirstOrder(0).Decode(s, seq)
	if path[0] != 1 || score != 3 {
		t.Errorf("path = %v score = %v, want [1] 3", path, score)
	}
}

func TestFirstOrderTiesPreferDefault(t *testing.T) {
	s := model.NewDense(1, 3, 2)
	seq := randomSequence(rand.New(rand.NewSource(2)), 4, 2)
	path, _, err := NewFirstOrder(2).Decode(s, seq)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(path, []int{2, 2, 2, 2}) {
		t.Errorf("path = %v, want all default", path)
	}
}

func TestEmptySequence(t *testing.T) {
	s := model.NewDense(2, 2, 1)
	seq := &model.Sequence{}
	for name, dec := range map[string]interface {
		Decode(model.Store, *model.Sequence) ([]int, float64, error)
	}{"first": NewFirstOrder(0), "second": NewSecondOrder(0)} {
		path, score, err := dec.Decode(s, seq)
		if err != nil {
			t.Fatal(err)
		}
		if path == nil || len(path) != 0 || score != 0 {
			t.Errorf("%s: path = %#v score = %v, want empty", name, path, score)
		}
	}
}

func TestDefaultStateOutOfRange(t *testing.T) {
	s := model.NewDense(1, 2, 1)
	seq := &model.Sequence{Tokens: []model.Token{{}}}
	if _, _, err := NewFirstOrder(2).Decode(s, seq); !errors.Is(err, ErrStateOutOfRange) {
		t.Errorf("error = %v, want ErrStateOutOfRange", err)
	}
	if _, _, err := NewSecondOrder(-1).Decode(s, seq); !errors.Is(err, ErrStateOutOfRange) {
		t.Errorf("error = %v, want ErrStateOutOfRange", err)
	}
}

func TestLossAugmentedZeroMatchesPlain(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := range 10 {
		for _, order := range []int{1, 2} {
			s := randomStore(t, rng, order, 3, 4)
			seq := randomSequence(rng, 1+trial%4, 4)
			ref := make([]int, seq.Len())
			for i := range ref {
				ref[i] = rng.Intn(3)
			}
			var dec interface {
				Decode(model.Store, *model.Sequence) ([]int, float64, error)
				DecodeLossAugmented(model.Store, *model.Sequence, []int, Loss) ([]int, float64, error)
			} = NewFirstOrder(1)
			if order == 2 {
				dec = NewSecondOrder(1)
			}
			plain, plainScore, err := dec.Decode(s, seq)
			if err != nil {
				t.Fatal(err)
			}
			aug, augScore, err := dec.DecodeLossAugmented(s, seq, ref, Uniform(0))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(plain, aug) || plainScore != augScore {
				t.Errorf("order %d: plain %v (%v) != augmented %v (%v)", order, plain, plainScore, aug, augScore)
			}
		}
	}
}

func TestFirstOrderLossAugmentedMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const n, m = 3, 4
	for trial := range 20 {
		T := 1 + trial%5
		s := randomStore(t, rng, 1, n, m)
		seq := randomSequence(rng, T, m)
		ref := make([]int, T)
		mask := make([]bool, T)
		for i := range ref {
			ref[i] = rng.Intn(n)
			mask[i] = rng.Intn(2) == 0
		}
		loss := Loss{AnnotatedWeight: 1.5, NonAnnotatedWeight: 0.25, Annotated: mask}
		if trial%3 == 0 {
			loss.Annotated = nil
		}

		path, score, err := NewFirstOrder(0).DecodeLossAugmented(s, seq, ref, loss)
		if err != nil {
			t.Fatal(err)
		}
		want, wantScore := bruteForce(n, T, nil, func(p []int) float64 {
			return PathScore(s, seq, p) + hamming(p, ref, loss.Annotated, loss.AnnotatedWeight, loss.NonAnnotatedWeight)
		})
		if !reflect.DeepEqual(path, want) || math.Abs(score-wantScore) > 1e-9 {
			t.Errorf("trial %d: got %v (%v), want %v (%v)", trial, path, score, want, wantScore)
		}
	}
}

func TestLossAugmentedLengthMismatch(t *testing.T) {
	s := model.NewDense(1, 2, 1)
	seq := &model.Sequence{Tokens: []model.Token{{}, {}}}
	if _, _, err := NewFirstOrder(0).DecodeLossAugmented(s, seq, []int{0}, Uniform(1)); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("reference mismatch error = %v", err)
	}
	loss := Loss{AnnotatedWeight: 1, Annotated: []bool{true}}
	if _, _, err := NewSecondOrder(0).DecodeLossAugmented(s, seq, []int{0, 1}, loss); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("mask mismatch error = %v", err)
	}
}

func TestFirstOrderPartialFullyClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := randomStore(t, rng, 1, 4, 6)
	seq := randomSequence(rng, 6, 6)
	gold := []int{3, 0, 0, 2, 1, 3}

	path, score, err := NewFirstOrder(0).DecodePartial(s, seq, gold)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(path, gold) {
		t.Errorf("path = %v, want %v", path, gold)
	}
	if want := PathScore(s, seq, gold); math.Abs(score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", score, want)
	}
}

func TestFirstOrderPartialMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	const n, m = 3, 4
	for trial := range 20 {
		T := 1 + trial%5
		s := randomStore(t, rng, 1, n, m)
		seq := randomSequence(rng, T, m)
		clamp := make([]int, T)
		for i := range clamp {
			clamp[i] = Free
			if rng.Intn(2) == 0 {
				clamp[i] = rng.Intn(n)
			}
		}
		keep := func(p []int) bool {
			for i, c := range clamp {
				if c >= 0 && p[i] != c {
					return false
				}
			}
			return true
		}

		path, score, err := NewFirstOrder(0).DecodePartial(s, seq, clamp)
		if err != nil {
			t.Fatal(err)
		}
		want, wantScore := bruteForce(n, T, keep, func(p []int) float64 { return PathScore(s, seq, p) })
		if !reflect.DeepEqual(path, want) || math.Abs(score-wantScore) > 1e-9 {
			t.Errorf("trial %d clamp %v: got %v (%v), want %v (%v)", trial, clamp, path, score, want, wantScore)
		}
	}
}

func TestPartialErrors(t *testing.T) {
	s := model.NewDense(1, 2, 1)
	seq := &model.Sequence{Tokens: []model.Token{{}, {}}}
	if _, _, err := NewFirstOrder(0).DecodePartial(s, seq, []int{0}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("length error = %v", err)
	}
	if _, _, err := NewSecondOrder(0).DecodePartial(s, seq, []int{0, 2}); !errors.Is(err, ErrStateOutOfRange) {
		t.Errorf("range error = %v", err)
	}
}

func TestFirstOrderPrefersGlobalOptimum(t *testing.T) {
	const A, B = 0, 1
	s := model.NewDense(1, 2, 3)
	// features 0 and 1 favour B, feature 2 favours A
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.SetEmission(B, 0, 1))
	must(s.SetEmission(B, 1, 1))
	must(s.SetEmission(A, 2, 1))
	seq := &model.Sequence{Tokens: []model.Token{
		{{Code: 0, Value: 1}},
		{{Code: 1, Value: 1}},
		{{Code: 2, Value: 1}},
	}}

	dec := NewFirstOrder(A)
	path, score, err := dec.Decode(s, seq)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(path, []int{B, B, A}) || score != 3 {
		t.Fatalf("without transitions: path = %v score = %v, want [B B A] 3", path, score)
	}

	s.SetTransition(A, A, 2)
	path, score, err = dec.Decode(s, seq)
	if err != nil {
		t.Fatal(err)
	}
	// A,A,A scores 1 + 2 + 2 = 5 against 3 for B,B,A and 4 for B,A,A
	if !reflect.DeepEqual(path, []int{A, A, A}) || score != 5 {
		t.Errorf("path = %v score = %v, want [A A A] 5", path, score)
	}
}

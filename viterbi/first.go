package viterbi

import (
	"math"

	"github.com/happyhackingspace/seqlearn/model"
)

// FirstOrder decodes over the bigram state graph.
type FirstOrder struct {
	DefaultState int
}

// NewFirstOrder creates a first-order decoder that prefers defaultState on ties.
func NewFirstOrder(defaultState int) *FirstOrder {
	return &FirstOrder{DefaultState: defaultState}
}

// Decode returns the highest-scoring label sequence for seq and its score.
func (d *FirstOrder) Decode(s model.Store, seq *model.Sequence) ([]int, float64, error) {
	if err := checkDefault(d.DefaultState, s.NumStates()); err != nil {
		return nil, 0, err
	}
	path, score := d.decode(s, emissionTable(s, seq), nil)
	return path, score, nil
}

// DecodeLossAugmented decodes with the loss margin added to every label that
// disagrees with ref. The returned score includes the margin.
func (d *FirstOrder) DecodeLossAugmented(s model.Store, seq *model.Sequence, ref []int, loss Loss) ([]int, float64, error) {
	if err := checkDefault(d.DefaultState, s.NumStates()); err != nil {
		return nil, 0, err
	}
	em := emissionTable(s, seq)
	if err := augment(em, ref, loss); err != nil {
		return nil, 0, err
	}
	path, score := d.decode(s, em, nil)
	return path, score, nil
}

// DecodePartial decodes with every position t where clamp[t] >= 0 fixed to
// that label. Positions set to Free are searched as usual.
func (d *FirstOrder) DecodePartial(s model.Store, seq *model.Sequence, clamp []int) ([]int, float64, error) {
	if err := checkDefault(d.DefaultState, s.NumStates()); err != nil {
		return nil, 0, err
	}
	if err := checkClamp(clamp, seq.Len(), s.NumStates()); err != nil {
		return nil, 0, err
	}
	path, score := d.decode(s, emissionTable(s, seq), clamp)
	return path, score, nil
}

func (d *FirstOrder) decode(s model.Store, em [][]float64, clamp []int) ([]int, float64) {
	T := len(em)
	if T == 0 {
		return make([]int, 0), 0
	}
	n := s.NumStates()
	def := d.DefaultState
	negInf := math.Inf(-1)

	// delta[t][y] = best score of a prefix ending at t with label y
	delta := make([][]float64, T)
	// psi[t][y] = best label at t-1 given label y at t
	psi := make([][]int, T)

	delta[0] = make([]float64, n)
	psi[0] = make([]int, n)
	for y := range n {
		if clamped(clamp, 0) && y != clamp[0] {
			delta[0][y] = negInf
			continue
		}
		delta[0][y] = em[0][y] + s.Initial(y)
	}

	for t := 1; t < T; t++ {
		delta[t] = make([]float64, n)
		psi[t] = make([]int, n)
		for y := range n {
			if clamped(clamp, t) && y != clamp[t] {
				delta[t][y] = negInf
				psi[t][y] = def
				continue
			}
			if clamped(clamp, t-1) {
				prev := clamp[t-1]
				delta[t][y] = delta[t-1][prev] + s.Transition(prev, y) + em[t][y]
				psi[t][y] = prev
				continue
			}
			bestPrev := def
			bestScore := delta[t-1][def] + s.Transition(def, y)
			for yp := range n {
				score := delta[t-1][yp] + s.Transition(yp, y)
				if score > bestScore {
					bestScore = score
					bestPrev = yp
				}
			}
			delta[t][y] = bestScore + em[t][y]
			psi[t][y] = bestPrev
		}
	}

	bestLabel := def
	bestScore := delta[T-1][def]
	for y := range n {
		if delta[T-1][y] > bestScore {
			bestScore = delta[T-1][y]
			bestLabel = y
		}
	}

	path := make([]int, T)
	path[T-1] = bestLabel
	for t := T - 2; t >= 0; t-- {
		path[t] = psi[t+1][path[t+1]]
	}
	return path, bestScore
}

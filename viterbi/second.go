package viterbi

import (
	"math"

	"github.com/happyhackingspace/seqlearn/model"
)

// SecondOrder decodes over state pairs with trigram transitions. The store's
// null state stands for the two positions before the sequence start.
type SecondOrder struct {
	DefaultState int
}

// NewSecondOrder creates a second-order decoder that prefers defaultState on ties.
func NewSecondOrder(defaultState int) *SecondOrder {
	return &SecondOrder{DefaultState: defaultState}
}

// Decode returns the highest-scoring label sequence for seq and its score.
func (d *SecondOrder) Decode(s model.Store, seq *model.Sequence) ([]int, float64, error) {
	if err := checkDefault(d.DefaultState, s.NumStates()); err != nil {
		return nil, 0, err
	}
	path, score := d.decode(s, emissionTable(s, seq), nil)
	return path, score, nil
}

// DecodeLossAugmented decodes with the loss margin added to every label that disagrees with ref.
func (d *SecondOrder) DecodeLossAugmented(s model.Store, seq *model.Sequence, ref []int, loss Loss) ([]int, float64, error) {
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

// DecodePartial decodes with every position t where clamp[t] >= 0 fixed to that label.
func (d *SecondOrder) DecodePartial(s model.Store, seq *model.Sequence, clamp []int) ([]int, float64, error) {
	if err := checkDefault(d.DefaultState, s.NumStates()); err != nil {
		return nil, 0, err
	}
	if err := checkClamp(clamp, seq.Len(), s.NumStates()); err != nil {
		return nil, 0, err
	}
	path, score := d.decode(s, emissionTable(s, seq), clamp)
	return path, score, nil
}

func (d *SecondOrder) decode(s model.Store, em [][]float64, clamp []int) ([]int, float64) {
	T := len(em)
	if T == 0 {
		return make([]int, 0), 0
	}
	n := s.NumStates()
	null := s.NullState()
	def := d.DefaultState
	negInf := math.Inf(-1)
	allowed := func(t, y int) bool {
		return !clamped(clamp, t) || clamp[t] == y
	}

	// delta[t][p][y] = best score of a prefix ending at t with labels (p, y) at (t-1, t)
	delta := make([][][]float64, T)
	// psi[t][p][y] = best label at t-2
	psi := make([][][]int, T)
	for t := range T {
		delta[t] = make([][]float64, n+1)
		psi[t] = make([][]int, n+1)
		for p := range n + 1 {
			delta[t][p] = make([]float64, n)
			psi[t][p] = make([]int, n)
			for y := range n {
				delta[t][p][y] = negInf
			}
		}
	}

	for y := range n {
		if allowed(0, y) {
			delta[0][null][y] = em[0][y] + s.Transition2(null, null, y)
			psi[0][null][y] = null
		}
	}

	if T == 1 {
		best := def
		bestScore := delta[0][null][def]
		for y := range n {
			if delta[0][null][y] > bestScore {
				bestScore = delta[0][null][y]
				best = y
			}
		}
		return []int{best}, bestScore
	}

	for p := range n {
		if !allowed(0, p) {
			continue
		}
		for y := range n {
			if !allowed(1, y) {
				continue
			}
			delta[1][p][y] = delta[0][null][p] + s.Transition2(null, p, y) + em[1][y]
			psi[1][p][y] = null
		}
	}

	for t := 2; t < T; t++ {
		for p := range n {
			if !allowed(t-1, p) {
				continue
			}
			for y := range n {
				if !allowed(t, y) {
					continue
				}
				if clamped(clamp, t-2) {
					pp := clamp[t-2]
					delta[t][p][y] = delta[t-1][pp][p] + s.Transition2(pp, p, y) + em[t][y]
					psi[t][p][y] = pp
					continue
				}
				bestPrev := def
				bestScore := delta[t-1][def][p] + s.Transition2(def, p, y)
				for pp := range n {
					score := delta[t-1][pp][p] + s.Transition2(pp, p, y)
					if score > bestScore {
						bestScore = score
						bestPrev = pp
					}
				}
				delta[t][p][y] = bestScore + em[t][y]
				psi[t][p][y] = bestPrev
			}
		}
	}

	last := delta[T-1]
	bestP, bestY := def, def
	bestScore := last[def][def]
	for p := range n {
		for y := range n {
			if last[p][y] > bestScore {
				bestScore = last[p][y]
				bestP, bestY = p, y
			}
		}
	}

	path := make([]int, T)
	path[T-1] = bestY
	path[T-2] = bestP
	for t := T - 1; t >= 2; t-- {
		path[t-2] = psi[t][path[t-1]][path[t]]
	}
	return path, bestScore
}

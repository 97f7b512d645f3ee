// Package viterbi decodes the best label sequence under a chain-structured
// scoring model read from a model.Store.
//
// Ties are resolved deterministically: every argmax is seeded with the
// decoder's default state and then scans states 0..n-1, replacing the running
// best only on a strict improvement.
package viterbi

import (
	"errors"
	"fmt"

	"github.com/happyhackingspace/seqlearn/model"
)

var (
	// ErrLengthMismatch is returned when a reference, mask or clamp does not match the input length.
	ErrLengthMismatch = errors.New("viterbi: length mismatch")
	// ErrStateOutOfRange is returned for labels or default states outside [0, numStates).
	ErrStateOutOfRange = errors.New("viterbi: state out of range")
)

// Free marks a position that DecodePartial leaves to the decoder.
const Free = -1

// Loss configures loss-augmented decoding. Every state that disagrees with
// the reference label gains AnnotatedWeight at annotated positions and
// NonAnnotatedWeight elsewhere.
type Loss struct {
	AnnotatedWeight    float64
	NonAnnotatedWeight float64
	// Annotated marks the trusted positions; nil treats every position as annotated.
	Annotated []bool
}

// Uniform returns a loss applying weight at every position.
func Uniform(weight float64) Loss {
	return Loss{AnnotatedWeight: weight}
}

// emissionTable computes the emission score of every state at every position.
func emissionTable(s model.Store, seq *model.Sequence) [][]float64 {
	T := seq.Len()
	n := s.NumStates()
	em := make([][]float64, T)
	for t := range T {
		em[t] = make([]float64, n)
		s.EmissionScores(seq, t, em[t])
	}
	return em
}

// augment adds the loss margin to every state that disagrees with ref.
func augment(em [][]float64, ref []int, loss Loss) error {
	if len(ref) != len(em) {
		return fmt.Errorf("%w: reference has %d labels, input has %d tokens", ErrLengthMismatch, len(ref), len(em))
	}
	if loss.Annotated != nil && len(loss.Annotated) != len(em) {
		return fmt.Errorf("%w: annotation mask has %d entries, input has %d tokens", ErrLengthMismatch, len(loss.Annotated), len(em))
	}
	for t, row := range em {
		weight := loss.AnnotatedWeight
		if loss.Annotated != nil && !loss.Annotated[t] {
			weight = loss.NonAnnotatedWeight
		}
		for s := range row {
			if s != ref[t] {
				row[s] += weight
			}
		}
	}
	return nil
}

func checkClamp(clamp []int, T, n int) error {
	if len(clamp) != T {
		return fmt.Errorf("%w: clamp has %d entries, input has %d tokens", ErrLengthMismatch, len(clamp), T)
	}
	for t, y := range clamp {
		if y >= n {
			return fmt.Errorf("%w: clamp[%d] = %d with %d states", ErrStateOutOfRange, t, y, n)
		}
	}
	return nil
}

func checkDefault(def, n int) error {
	if def < 0 || def >= n {
		return fmt.Errorf("%w: default state %d with %d states", ErrStateOutOfRange, def, n)
	}
	return nil
}

func clamped(clamp []int, t int) bool {
	return clamp != nil && clamp[t] >= 0
}

// PathScore returns the first-order score of path:
// initial(y0) + Σ emission(t, yt) + Σ transition(yt-1, yt).
func PathScore(s model.Store, seq *model.Sequence, path []int) float64 {
	if len(path) == 0 {
		return 0
	}
	em := make([]float64, s.NumStates())
	score := s.Initial(path[0])
	for t, y := range path {
		s.EmissionScores(seq, t, em)
		score += em[y]
		if t > 0 {
			score += s.Transition(path[t-1], y)
		}
	}
	return score
}

// PathScore2 returns the second-order score of path:
// Σ emission(t, yt) + Σ transition(yt-2, yt-1, yt) with the null state before the start.
func PathScore2(s model.Store, seq *model.Sequence, path []int) float64 {
	em := make([]float64, s.NumStates())
	null := s.NullState()
	var score float64
	for t, y := range path {
		s.EmissionScores(seq, t, em)
		p2, p1 := null, null
		if t >= 1 {
			p1 = path[t-1]
		}
		if t >= 2 {
			p2 = path[t-2]
		}
		score += em[y] + s.Transition2(p2, p1, y)
	}
	return score
}

// Package perceptron implements the structured perceptron: the update rules
// that move a model.Store towards gold label sequences, and the online
// training loop with lazy averaging.
package perceptron

import (
	"errors"
	"fmt"

	"github.com/happyhackingspace/seqlearn/model"
)

var (
	// ErrLengthMismatch is returned when gold, prediction and input lengths differ.
	ErrLengthMismatch = errors.New("perceptron: length mismatch")
	// ErrOrder is returned when a second-order rule is applied to an order-1 store.
	ErrOrder = errors.New("perceptron: store order too low")
)

// UpdateRule compares a gold and a predicted label sequence and updates the
// store. It returns the number of disagreeing positions.
type UpdateRule interface {
	Update(s model.Store, seq *model.Sequence, gold, pred []int, rate float64) (int, error)
}

func checkLengths(seq *model.Sequence, gold, pred []int) error {
	if len(gold) != seq.Len() || len(pred) != seq.Len() {
		return fmt.Errorf("%w: input %d, gold %d, predicted %d", ErrLengthMismatch, seq.Len(), len(gold), len(pred))
	}
	return nil
}

// FirstOrderRule updates initial, bigram transition and emission parameters.
type FirstOrderRule struct{}

// Update adds rate to the parameters of the gold structure and subtracts it
// from those of the prediction wherever the two differ. A transition is
// updated whenever either of its endpoints disagrees, so the transition into
// an agreeing position still reflects a diverging history.
func (FirstOrderRule) Update(s model.Store, seq *model.Sequence, gold, pred []int, rate float64) (int, error) {
	if err := checkLengths(seq, gold, pred); err != nil {
		return 0, err
	}
	loss := 0
	for t := range gold {
		diff := gold[t] != pred[t]
		if diff {
			loss++
			s.UpdateTokenEmission(seq, t, gold[t], rate)
			s.UpdateTokenEmission(seq, t, pred[t], -rate)
		}
		if t == 0 {
			if diff {
				s.UpdateInitial(gold[0], rate)
				s.UpdateInitial(pred[0], -rate)
			}
			continue
		}
		if diff || gold[t-1] != pred[t-1] {
			s.UpdateTransition(gold[t-1], gold[t], rate)
			s.UpdateTransition(pred[t-1], pred[t], -rate)
		}
	}
	return loss, nil
}

// SecondOrderRule updates trigram transition and emission parameters. The
// trigram ending at t is updated whenever any of positions t-2..t disagrees.
type SecondOrderRule struct{}

func (SecondOrderRule) Update(s model.Store, seq *model.Sequence, gold, pred []int, rate float64) (int, error) {
	if s.Order() < 2 {
		return 0, ErrOrder
	}
	if err := checkLengths(seq, gold, pred); err != nil {
		return 0, err
	}
	null := s.NullState()
	at := func(y []int, t int) int {
		if t < 0 {
			return null
		}
		return y[t]
	}

	loss := 0
	for t := range gold {
		diff := gold[t] != pred[t]
		if diff {
			loss++
			s.UpdateTokenEmission(seq, t, gold[t], rate)
			s.UpdateTokenEmission(seq, t, pred[t], -rate)
		}
		if diff || at(gold, t-1) != at(pred, t-1) || at(gold, t-2) != at(pred, t-2) {
			s.UpdateTransition2(at(gold, t-2), at(gold, t-1), gold[t], rate)
			s.UpdateTransition2(at(pred, t-2), at(pred, t-1), pred[t], -rate)
		}
	}
	return loss, nil
}

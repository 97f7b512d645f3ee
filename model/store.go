// Package model implements the parameter stores of a chain-structured
// scoring model: initial-state, transition and emission weights with lazy
// averaged-perceptron bookkeeping.
//
// Three layouts satisfy the same Store contract:
//
//	dense  - every (state, symbol) emission preallocated
//	sparse - per-state symbol maps created on first touch
//	dual   - per-token coefficient vectors scored through a polynomial kernel
package model

import "fmt"

// Kind selects a store layout.
type Kind string

const (
	Dense  Kind = "dense"
	Sparse Kind = "sparse"
	Dual   Kind = "dual"
)

// Store is the parameter store read by the decoders and written by the update rules.
//
// Lookups of unrepresented parameters return 0. Update calls are invisible to
// lookups until the next Settle. Settle applies to exactly the parameters
// touched since the previous Settle; FinalizeAverage applies to all of them
// and may be called once.
type Store interface {
	Kind() Kind
	Order() int
	NumStates() int
	NumSymbols() int
	NullState() int

	Initial(state int) float64
	Transition(from, to int) float64
	Transition2(prev2, prev1, state int) float64
	Emission(state, symbol int) (float64, error)
	// EmissionScores writes the emission score of every state for token t of seq into dst.
	EmissionScores(seq *Sequence, t int, dst []float64)

	SetInitial(state int, w float64)
	SetTransition(from, to int, w float64)
	SetTransition2(prev2, prev1, state int, w float64)
	SetEmission(state, symbol int, w float64) error

	UpdateInitial(state int, rate float64)
	UpdateTransition(from, to int, rate float64)
	UpdateTransition2(prev2, prev1, state int, rate float64)
	UpdateEmission(state, symbol int, rate float64) error
	// UpdateTokenEmission adds rate, scaled by each feature value, to the
	// emissions of state for every feature active at token t of seq.
	UpdateTokenEmission(seq *Sequence, t, state int, rate float64)

	Settle(iteration int)
	FinalizeAverage(totalIterations int) error
	Finalized() bool
	Touched() int
	Size() int
	Version() uint64

	// Clone returns a deep copy carrying the same version.
	Clone() Store
	// Snapshot captures the current weights. Pending updates and averaging history are dropped.
	Snapshot() *Snapshot
}

// Config selects and sizes a store.
type Config struct {
	Kind       Kind
	Order      int
	NumStates  int
	NumSymbols int
	Kernel     Kernel
}

// New creates an empty store with every weight at 0.
func New(cfg Config) (Store, error) {
	if cfg.NumStates <= 0 {
		return nil, fmt.Errorf("model: number of states must be positive, got %d", cfg.NumStates)
	}
	if cfg.Order != 1 && cfg.Order != 2 {
		return nil, fmt.Errorf("model: order must be 1 or 2, got %d", cfg.Order)
	}
	if cfg.NumSymbols < 0 {
		return nil, fmt.Errorf("model: number of symbols must not be negative, got %d", cfg.NumSymbols)
	}
	switch cfg.Kind {
	case Dense:
		return NewDense(cfg.Order, cfg.NumStates, cfg.NumSymbols), nil
	case Sparse:
		return NewSparse(cfg.Order, cfg.NumStates, cfg.NumSymbols), nil
	case Dual:
		if err := cfg.Kernel.Validate(); err != nil {
			return nil, err
		}
		return NewDual(cfg.Order, cfg.NumStates, cfg.NumSymbols, cfg.Kernel), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

package perceptron

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/happyhackingspace/seqlearn/model"
	"github.com/happyhackingspace/seqlearn/viterbi"
)

// Decoder is the inference a Trainer drives.
type Decoder interface {
	Decode(s model.Store, seq *model.Sequence) ([]int, float64, error)
	DecodeLossAugmented(s model.Store, seq *model.Sequence, ref []int, loss viterbi.Loss) ([]int, float64, error)
	DecodePartial(s model.Store, seq *model.Sequence, clamp []int) ([]int, float64, error)
}

// Config holds perceptron training hyperparameters.
type Config struct {
	Epochs       int
	LearningRate float64
	Averaged     bool
	// LossAugmented decodes the prediction with a margin on every label
	// that disagrees with the gold one.
	LossAugmented      bool
	AnnotatedWeight    float64
	NonAnnotatedWeight float64
	Shuffle            bool
	Seed               int64
}

// DefaultConfig returns the averaged perceptron with unit learning rate.
func DefaultConfig() Config {
	return Config{
		Epochs:          10,
		LearningRate:    1,
		Averaged:        true,
		AnnotatedWeight: 1,
		Seed:            1,
	}
}

// EpochStats summarizes one pass over the training examples.
type EpochStats struct {
	Epoch    int
	Loss     int // disagreeing positions
	Mistakes int // examples with at least one disagreement
	Tokens   int
	Duration time.Duration
}

// Trainer runs online structured-perceptron training. Every example is
// decoded, then the store is updated and settled, before the next example
// is decoded.
type Trainer struct {
	Decoder Decoder
	Rule    UpdateRule
	Config  Config
	// OnEpoch, if set, is called after every epoch with the store being trained.
	// The store must not be modified; Clone it to evaluate intermediate models.
	OnEpoch func(stats EpochStats, s model.Store) error
}

// NewTrainer returns a trainer with the decoder and rule of the given order.
func NewTrainer(order, defaultState int, cfg Config) (*Trainer, error) {
	switch order {
	case 1:
		return &Trainer{Decoder: viterbi.NewFirstOrder(defaultState), Rule: FirstOrderRule{}, Config: cfg}, nil
	case 2:
		return &Trainer{Decoder: viterbi.NewSecondOrder(defaultState), Rule: SecondOrderRule{}, Config: cfg}, nil
	default:
		return nil, fmt.Errorf("perceptron: order must be 1 or 2, got %d", order)
	}
}

// Train runs Config.Epochs passes over examples. Iterations are numbered
// from 0 across epochs; with Averaged set, the store's averages are
// finalized over all iterations at the end.
func (tr *Trainer) Train(ctx context.Context, s model.Store, examples []model.Example) ([]EpochStats, error) {
	cfg := tr.Config
	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 0))

	var history []EpochStats
	iteration := 0
	for epoch := range cfg.Epochs {
		if cfg.Shuffle {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		stats := EpochStats{Epoch: epoch + 1}
		start := time.Now()

		for _, i := range order {
			if err := ctx.Err(); err != nil {
				return history, err
			}
			ex := &examples[i]
			loss, err := tr.Step(s, ex)
			if err != nil {
				return history, fmt.Errorf("perceptron: example %d: %w", ex.Input.ID, err)
			}
			s.Settle(iteration)
			iteration++

			stats.Loss += loss
			stats.Tokens += ex.Input.Len()
			if loss > 0 {
				stats.Mistakes++
			}
		}

		stats.Duration = time.Since(start)
		slog.Debug("Perceptron epoch",
			"epoch", stats.Epoch,
			"loss", stats.Loss,
			"mistakes", stats.Mistakes,
			"tokens", stats.Tokens,
			"touched", s.Size(),
			"duration", stats.Duration)
		history = append(history, stats)

		if tr.OnEpoch != nil {
			if err := tr.OnEpoch(stats, s); err != nil {
				return history, err
			}
		}
	}

	if cfg.Averaged && iteration > 0 {
		if err := s.FinalizeAverage(iteration); err != nil {
			return history, fmt.Errorf("perceptron: finalize average: %w", err)
		}
	}
	return history, nil
}

// Step decodes one example and applies the update rule without settling.
// Partially annotated examples are first completed by decoding with the
// annotated labels clamped.
func (tr *Trainer) Step(s model.Store, ex *model.Example) (int, error) {
	cfg := tr.Config
	seq := ex.Input
	gold := ex.Gold
	if len(gold) != seq.Len() {
		return 0, fmt.Errorf("%w: input %d, gold %d", ErrLengthMismatch, seq.Len(), len(gold))
	}

	var err error
	if ex.Partial() {
		gold, _, err = tr.Decoder.DecodePartial(s, seq, ex.Clamp())
		if err != nil {
			return 0, err
		}
	}

	var pred []int
	if cfg.LossAugmented {
		loss := viterbi.Loss{
			AnnotatedWeight:    cfg.AnnotatedWeight,
			NonAnnotatedWeight: cfg.NonAnnotatedWeight,
			Annotated:          ex.Annotated,
		}
		pred, _, err = tr.Decoder.DecodeLossAugmented(s, seq, gold, loss)
	} else {
		pred, _, err = tr.Decoder.Decode(s, seq)
	}
	if err != nil {
		return 0, err
	}
	return tr.Rule.Update(s, seq, gold, pred, cfg.LearningRate)
}

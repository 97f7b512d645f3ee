package seqlearn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/happyhackingspace/seqlearn/internal/config"
	"github.com/happyhackingspace/seqlearn/internal/dataset"
	"github.com/happyhackingspace/seqlearn/internal/eval"
	"github.com/happyhackingspace/seqlearn/model"
	"github.com/happyhackingspace/seqlearn/perceptron"
)

// TrainOptions holds optional training inputs.
type TrainOptions struct {
	// Dev is scored after every epoch with the weights averaged so far.
	Dev []model.Example
	// OnEpoch is called after every epoch.
	OnEpoch func(perceptron.EpochStats)
}

// Train reads a dataset file and trains a tagger on it.
func Train(ctx context.Context, dataPath string, cfg config.Config, opts *TrainOptions) (*Tagger, error) {
	r := dataset.NewReader()
	corpus, err := r.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	if len(corpus.Examples) == 0 {
		return nil, fmt.Errorf("seqlearn: no sequences found in %s", dataPath)
	}
	return TrainExamples(ctx, corpus.Examples, r.Labels, r.Features, cfg, opts)
}

// TrainExamples trains a tagger on examples whose codes come from the given
// alphabets. The alphabets are kept by the tagger.
func TrainExamples(ctx context.Context, examples []model.Example, labels, features *dataset.Alphabet, cfg config.Config, opts *TrainOptions) (*Tagger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	if labels.Size() == 0 {
		return nil, fmt.Errorf("seqlearn: no labels in training data")
	}
	def, err := defaultState(cfg, labels)
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	store, err := model.New(model.Config{
		Kind:       cfg.Store,
		Order:      cfg.Order,
		NumStates:  labels.Size(),
		NumSymbols: features.Size(),
		Kernel:     cfg.Kernel,
	})
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	trainer, err := perceptron.NewTrainer(cfg.Order, def, cfg.Perceptron())
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}

	t := &Tagger{
		store:    store,
		labels:   labels,
		features: features,
		config:   cfg,
		decoder:  trainer.Decoder,
	}
	if opts != nil {
		trainer.OnEpoch = func(stats perceptron.EpochStats, s model.Store) error {
			if opts.OnEpoch != nil {
				opts.OnEpoch(stats)
			}
			if len(opts.Dev) == 0 {
				return nil
			}
			return t.scoreDev(ctx, s, stats.Epoch, stats.Epoch*len(examples), opts.Dev)
		}
	}

	slog.Debug("Training", "store", cfg.Store, "order", cfg.Order,
		"labels", labels.Size(), "features", features.Size(), "sequences", len(examples))
	start := time.Now()
	if _, err := trainer.Train(ctx, store, examples); err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	slog.Debug("Training completed", "duration", time.Since(start), "parameters", store.Size())
	return t, nil
}

// scoreDev evaluates an averaged copy of the store being trained.
func (t *Tagger) scoreDev(ctx context.Context, s model.Store, epoch, iterations int, dev []model.Example) error {
	snap := s.Clone()
	if t.config.Averaged && iterations > 0 {
		if err := snap.FinalizeAverage(iterations); err != nil {
			return err
		}
	}
	tmp := *t
	tmp.store = snap
	result, err := tmp.Evaluate(ctx, dev)
	if err != nil {
		return err
	}
	slog.Info("Dev evaluation",
		"epoch", epoch,
		"token_accuracy", result.TokenAccuracy(),
		"sequence_accuracy", result.SequenceAccuracy(),
		"macro_f1", result.MacroF1())
	return nil
}

// Evaluate tags the examples and scores the predictions against their
// annotated labels.
func (t *Tagger) Evaluate(ctx context.Context, examples []model.Example) (*eval.Result, error) {
	seqs := make([]*model.Sequence, len(examples))
	for i := range examples {
		seqs[i] = examples[i].Input
	}
	paths, err := t.TagAll(ctx, seqs)
	if err != nil {
		return nil, err
	}
	result := eval.NewResult(t.labels.Size())
	for i, ex := range examples {
		if err := result.Add(ex.Gold, paths[i], ex.Annotated); err != nil {
			return nil, fmt.Errorf("seqlearn: sequence %d: %w", ex.Input.ID, err)
		}
	}
	return result, nil
}

// CrossValidate runs k-fold cross validation on a dataset file. Every
// sequence is its own group.
func CrossValidate(ctx context.Context, dataPath string, cfg config.Config, folds int) (*eval.Result, error) {
	r := dataset.NewReader()
	corpus, err := r.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	if len(corpus.Examples) == 0 {
		return nil, fmt.Errorf("seqlearn: no sequences found in %s", dataPath)
	}
	return CrossValidateExamples(ctx, corpus.Examples, r.Labels, r.Features, cfg, folds)
}

// CrossValidateExamples runs k-fold cross validation over examples.
func CrossValidateExamples(ctx context.Context, examples []model.Example, labels, features *dataset.Alphabet, cfg config.Config, folds int) (*eval.Result, error) {
	if folds < 2 {
		return nil, fmt.Errorf("seqlearn: need at least 2 folds, got %d", folds)
	}
	groups := make([]int, len(examples))
	for i, ex := range examples {
		groups[i] = ex.Input.ID
	}

	total := eval.NewResult(labels.Size())
	for fold, testIdx := range eval.GroupKFold(groups, folds) {
		testSet := eval.TestMask(len(examples), testIdx)
		var train, test []model.Example
		for i, ex := range examples {
			if testSet[i] {
				test = append(test, ex)
			} else {
				train = append(train, ex)
			}
		}
		if len(train) == 0 {
			continue
		}

		t, err := TrainExamples(ctx, train, labels, features, cfg, nil)
		if err != nil {
			return nil, err
		}
		result, err := t.Evaluate(ctx, test)
		if err != nil {
			return nil, err
		}
		slog.Debug("Fold evaluated", "fold", fold, "train", len(train), "test", len(test),
			"token_accuracy", result.TokenAccuracy())
		total.Merge(result)
	}
	return total, nil
}

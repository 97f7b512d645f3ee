// Package seqlearn trains and applies structured-perceptron sequence taggers.
//
// A Tagger couples a trained parameter store with the label and feature
// alphabets it was trained on:
//
//	cfg := config.Default()
//	t, _ := seqlearn.Train(ctx, "train.txt", cfg, nil)
//	labels, _ := t.Tag([][]string{{"w=the"}, {"w=dog"}})
//	fmt.Println(labels) // [DET NOUN]
package seqlearn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/happyhackingspace/seqlearn/internal/config"
	"github.com/happyhackingspace/seqlearn/internal/dataset"
	"github.com/happyhackingspace/seqlearn/model"
	"github.com/happyhackingspace/seqlearn/perceptron"
	"github.com/happyhackingspace/seqlearn/viterbi"
)

// Tagger labels sequences with a trained store.
type Tagger struct {
	store    model.Store
	labels   *dataset.Alphabet
	features *dataset.Alphabet
	config   config.Config
	decoder  perceptron.Decoder
}

// modelFile is the JSON layout written by Save.
type modelFile struct {
	Config   config.Config     `json:"config"`
	Labels   *dataset.Alphabet `json:"labels"`
	Features *dataset.Alphabet `json:"features"`
	Store    *model.Snapshot   `json:"store"`
}

func newDecoder(order, defaultState int) (perceptron.Decoder, error) {
	switch order {
	case 1:
		return viterbi.NewFirstOrder(defaultState), nil
	case 2:
		return viterbi.NewSecondOrder(defaultState), nil
	}
	return nil, fmt.Errorf("order must be 1 or 2, got %d", order)
}

func defaultState(cfg config.Config, labels *dataset.Alphabet) (int, error) {
	if cfg.DefaultLabel == "" {
		return 0, nil
	}
	id := labels.Get(cfg.DefaultLabel)
	if id < 0 {
		return 0, fmt.Errorf("default label %q not in training data", cfg.DefaultLabel)
	}
	return id, nil
}

// Load reads a tagger written by Save.
func Load(path string) (*Tagger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("seqlearn: %s: %w", path, err)
	}
	if mf.Store == nil || mf.Labels == nil || mf.Features == nil {
		return nil, fmt.Errorf("seqlearn: %s: incomplete model file", path)
	}
	if mf.Store.NumStates != mf.Labels.Size() {
		return nil, fmt.Errorf("seqlearn: %s: store has %d states but %d labels", path, mf.Store.NumStates, mf.Labels.Size())
	}
	store, err := model.Restore(mf.Store)
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	def, err := defaultState(mf.Config, mf.Labels)
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	dec, err := newDecoder(store.Order(), def)
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	return &Tagger{
		store:    store,
		labels:   mf.Labels,
		features: mf.Features,
		config:   mf.Config,
		decoder:  dec,
	}, nil
}

// Save writes the tagger to a model file.
func (t *Tagger) Save(path string) error {
	if t.store == nil {
		return fmt.Errorf("seqlearn: tagger not initialized")
	}
	data, err := json.Marshal(modelFile{
		Config:   t.config,
		Labels:   t.labels,
		Features: t.features,
		Store:    t.store.Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("seqlearn: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("seqlearn: %w", err)
	}
	return nil
}

// Store returns the trained parameter store.
func (t *Tagger) Store() model.Store { return t.store }

// Labels returns the label alphabet.
func (t *Tagger) Labels() *dataset.Alphabet { return t.labels }

// Features returns the feature alphabet.
func (t *Tagger) Features() *dataset.Alphabet { return t.features }

// Config returns the configuration the tagger was trained with.
func (t *Tagger) Config() config.Config { return t.config }

// Reader returns a dataset reader bound to the tagger's alphabets. Unknown
// features are dropped.
func (t *Tagger) Reader(unlabeled bool) *dataset.Reader {
	return &dataset.Reader{Labels: t.labels, Features: t.features, Frozen: true, Unlabeled: unlabeled}
}

// Decode returns the best label path of seq and its score.
func (t *Tagger) Decode(seq *model.Sequence) ([]int, float64, error) {
	path, score, err := t.decoder.Decode(t.store, seq)
	if err != nil {
		return nil, 0, fmt.Errorf("seqlearn: %w", err)
	}
	return path, score, nil
}

// Tag labels one sequence given as feature columns per token.
// Returns an empty slice (not nil) for an empty sequence.
func (t *Tagger) Tag(tokens [][]string) ([]string, error) {
	r := t.Reader(true)
	seq := &model.Sequence{Tokens: make([]model.Token, len(tokens))}
	for i, cols := range tokens {
		seq.Tokens[i] = r.Token(cols)
	}
	path, _, err := t.Decode(seq)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(path))
	for i, y := range path {
		out[i] = t.labels.Label(y)
	}
	return out, nil
}

// TagAll decodes seqs in parallel with the configured number of workers.
func (t *Tagger) TagAll(ctx context.Context, seqs []*model.Sequence) ([][]int, error) {
	paths, err := perceptron.DecodeAll(ctx, t.decoder, t.store, seqs, t.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("seqlearn: %w", err)
	}
	return paths, nil
}

// Report writes every parameter of the store in plain text.
func (t *Tagger) Report(w io.Writer) error {
	return model.WriteReport(w, t.store, t.labels, t.features)
}

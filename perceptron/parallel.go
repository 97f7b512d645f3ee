package perceptron

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/seqlearn/model"
)

// Inference decodes one sequence.
type Inference interface {
	Decode(s model.Store, seq *model.Sequence) ([]int, float64, error)
}

// DecodeAll decodes seqs with at most workers concurrent goroutines
// (runtime.NumCPU() when workers <= 0). The store is only read, so it must
// not be trained while DecodeAll runs.
func DecodeAll(ctx context.Context, dec Inference, s model.Store, seqs []*model.Sequence, workers int) ([][]int, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([][]int, len(seqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seq := range seqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, _, err := dec.Decode(s, seq)
			if err != nil {
				return err
			}
			out[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/seqlearn"
	"github.com/happyhackingspace/seqlearn/internal/config"
	"github.com/happyhackingspace/seqlearn/internal/dataset"
	"github.com/happyhackingspace/seqlearn/model"
)

// trainFlags are the configuration overrides shared by train and evaluate.
type trainFlags struct {
	configPath string
	store      string
	order      int
	epochs     int
	workers    int
}

func (f *trainFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML training configuration")
	cmd.Flags().StringVar(&f.store, "store", "", "Parameter store: dense, sparse or dual")
	cmd.Flags().IntVar(&f.order, "order", 0, "Markov order: 1 or 2")
	cmd.Flags().IntVar(&f.epochs, "epochs", 0, "Number of training epochs")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel decoding workers (0 = number of CPUs)")
}

// load reads the configuration file, if any, and applies the flags that
// were set on the command line.
func (f *trainFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = model.Kind(f.store)
	}
	if cmd.Flags().Changed("order") {
		cfg.Order = f.order
	}
	if cmd.Flags().Changed("epochs") {
		cfg.Epochs = f.epochs
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = f.workers
	}
	return cfg, cfg.Validate()
}

func (c *CLI) newTrainCommand() *cobra.Command {
	var dataPath, devPath string
	var flags trainFlags

	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train a tagger on a labelled dataset",
		Args:  cobra.ExactArgs(1),
		Example: `  seqlearn train model.json --data train.txt
  seqlearn train model.json --data train.txt --dev dev.txt --config train.yaml -v
  seqlearn train model.json --data train.txt --store dual --order 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := args[0]
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			corpus, r, err := readTraining(dataPath)
			if err != nil {
				return err
			}
			opts := &seqlearn.TrainOptions{}
			if devPath != "" {
				devReader := &dataset.Reader{Labels: r.Labels, Features: r.Features, Frozen: true}
				dev, err := devReader.ReadFile(devPath)
				if err != nil {
					return err
				}
				opts.Dev = dev.Examples
			}

			slog.Info("Training tagger", "data", dataPath, "sequences", len(corpus.Examples),
				"store", cfg.Store, "order", cfg.Order, "output", modelPath)
			start := time.Now()
			tg, err := seqlearn.TrainExamples(cmd.Context(), corpus.Examples, r.Labels, r.Features, cfg, opts)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := tg.Save(modelPath); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath, "labels", tg.Labels().Size(), "features", tg.Features().Size())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Training dataset")
	cmd.Flags().StringVar(&devPath, "dev", "", "Development dataset scored after every epoch")
	_ = cmd.MarkFlagRequired("data")
	flags.register(cmd)
	return cmd
}

func readTraining(path string) (*dataset.Corpus, *dataset.Reader, error) {
	r := dataset.NewReader()
	corpus, err := r.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return corpus, r, nil
}

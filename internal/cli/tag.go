package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/seqlearn"
	"github.com/happyhackingspace/seqlearn/internal/dataset"
)

func (c *CLI) newTagCommand() *cobra.Command {
	var modelPath string
	var labeled bool

	cmd := &cobra.Command{
		Use:   "tag [file]",
		Short: "Label the sequences of a dataset file or stdin",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Tag a file of feature columns
  seqlearn tag --model model.json input.txt

  # Tag from stdin
  cat input.txt | seqlearn tag --model model.json

  # Input still carries a label column, which is replaced
  seqlearn tag --model model.json --labeled test.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := seqlearn.Load(modelPath)
			if err != nil {
				return err
			}

			r := tg.Reader(!labeled)
			r.IgnoreLabels = labeled
			var corpus *dataset.Corpus
			if len(args) == 1 {
				corpus, err = r.ReadFile(args[0])
			} else {
				corpus, err = r.Read(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			start := time.Now()
			paths, err := tg.TagAll(cmd.Context(), corpus.Sequences())
			if err != nil {
				return err
			}
			slog.Debug("Tagging completed", "sequences", len(paths), "duration", time.Since(start))
			return dataset.WriteTagged(cmd.OutOrStdout(), corpus.Lines, paths, tg.Labels())
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "model.json", "Path to model file")
	cmd.Flags().BoolVar(&labeled, "labeled", false, "Input has a trailing label column")
	return cmd
}

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/seqlearn"
	"github.com/happyhackingspace/seqlearn/internal/eval"
	"github.com/happyhackingspace/seqlearn/model"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var modelPath, dataPath string
	var cvFolds int
	var flags trainFlags

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a model on held-out data, or cross-validate on training data",
		Example: `  seqlearn evaluate --model model.json --data test.txt
  seqlearn evaluate --data train.txt --cv 10 --config train.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			var result *eval.Result
			var labels model.Dictionary

			if cvFolds > 0 {
				cfg, err := flags.load(cmd)
				if err != nil {
					return err
				}
				slog.Info("Cross-validating", "folds", cvFolds, "data", dataPath)
				corpus, r, err := readTraining(dataPath)
				if err != nil {
					return err
				}
				result, err = seqlearn.CrossValidateExamples(cmd.Context(), corpus.Examples, r.Labels, r.Features, cfg, cvFolds)
				if err != nil {
					return err
				}
				labels = r.Labels
			} else {
				tg, err := seqlearn.Load(modelPath)
				if err != nil {
					return err
				}
				slog.Info("Evaluating", "model", modelPath, "data", dataPath)
				corpus, err := tg.Reader(false).ReadFile(dataPath)
				if err != nil {
					return err
				}
				result, err = tg.Evaluate(cmd.Context(), corpus.Examples)
				if err != nil {
					return err
				}
				labels = tg.Labels()
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			printResult(cmd.OutOrStdout(), result, labels)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "model.json", "Path to model file")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Labelled dataset")
	cmd.Flags().IntVar(&cvFolds, "cv", 0, "Cross-validate with this many folds instead of loading a model")
	_ = cmd.MarkFlagRequired("data")
	flags.register(cmd)
	return cmd
}

func printResult(w io.Writer, r *eval.Result, labels model.Dictionary) {
	fmt.Fprintf(w, "Token accuracy: %.1f%% (%d/%d)\n",
		r.TokenAccuracy()*100, r.TokenCorrect, r.TokenTotal)
	fmt.Fprintf(w, "Sequence accuracy: %.1f%% (%d/%d)\n",
		r.SequenceAccuracy()*100, r.SequenceCorrect, r.SequenceTotal)
	fmt.Fprintf(w, "Macro F1: %.1f%%  Weighted F1: %.1f%%\n",
		r.MacroF1()*100, r.WeightedF1()*100)

	scores := r.Scores()
	printConfusionMatrix(w, r, scores, labels)
	printClassReport(w, scores, labels)
}

func printClassReport(w io.Writer, scores []eval.LabelScore, labels model.Dictionary) {
	fmt.Fprintf(w, "\nPer-label metrics:\n")
	fmt.Fprintf(w, "%8s  %6s  %6s  %6s  %7s\n", "label", "prec", "recall", "f1", "support")
	for _, s := range scores {
		fmt.Fprintf(w, "%8s  %5.1f%%  %5.1f%%  %5.1f%%  %7d\n",
			labels.Label(s.Label), s.Precision*100, s.Recall*100, s.F1*100, s.Support)
	}
}

// printConfusionMatrix prints rows in the order of scores, which is by
// descending gold support.
func printConfusionMatrix(w io.Writer, r *eval.Result, scores []eval.LabelScore, labels model.Dictionary) {
	if len(scores) == 0 {
		return
	}

	fmt.Fprintf(w, "\nConfusion matrix (rows=true, cols=predicted):\n")
	fmt.Fprintf(w, "%8s", "")
	for _, s := range scores {
		fmt.Fprintf(w, " %5s", labels.Label(s.Label))
	}
	fmt.Fprintf(w, "  total  acc%%\n")

	for _, gold := range scores {
		fmt.Fprintf(w, "%8s", labels.Label(gold.Label))
		total := 0
		correct := 0
		for _, pred := range scores {
			count := r.Confusion[gold.Label][pred.Label]
			total += count
			if gold.Label == pred.Label {
				correct = count
			}
			if count == 0 {
				fmt.Fprintf(w, " %5s", ".")
			} else {
				fmt.Fprintf(w, " %5d", count)
			}
		}
		acc := 0.0
		if total > 0 {
			acc = float64(correct) / float64(total) * 100
		}
		fmt.Fprintf(w, "  %5d %5.1f\n", total, acc)
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/seqlearn"
)

func (c *CLI) newReportCommand() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print every model parameter in plain text",
		Example: `  seqlearn report --model model.json
  seqlearn report --model model.json | grep -A20 '# transitions'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := seqlearn.Load(modelPath)
			if err != nil {
				return err
			}
			return tg.Report(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "model.json", "Path to model file")
	return cmd
}

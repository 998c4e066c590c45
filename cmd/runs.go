package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/recordloom-cli/internal/run"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded clean runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		runs, err := run.List(c.RunsDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		for _, m := range runs {
			fmt.Fprintf(out, "- %s  %s  %s -> %s (rows %d, unresolved dates %d)\n",
				m.ID, m.StartedAt.Format("2006-01-02 15:04:05"), m.Input, m.Output, m.Rows, m.Unresolved)
		}
		return nil
	},
}

var runsShowFormat string

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a run's manifest and diagnostic trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		m, err := run.Load(c.RunsDir, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "[RUN %s]\n", m.ID)
		fmt.Fprintf(out, "Input: %s\n", m.Input)
		fmt.Fprintf(out, "Output: %s\n", m.Output)
		fmt.Fprintf(out, "Started: %s (took %s)\n", m.StartedAt.Format("2006-01-02 15:04:05"), m.Duration())
		fmt.Fprintf(out, "Columns: %s\n\n", strings.Join(m.Columns, ", "))
		if m.Report == nil {
			return nil
		}
		text, err := m.Report.Render(runsShowFormat)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsShowCmd.Flags().StringVar(&runsShowFormat, "format", "markdown", "trace format: markdown|yaml|json")
}

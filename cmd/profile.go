package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/recordloom-cli/internal/pattern"
	"github.com/KaramelBytes/recordloom-cli/internal/source"
)

var (
	profSource  sourceFlags
	profColumns []string
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Histogram the shapes of values a date parser rejects",
	Long: `Profile reduces every value of a column that fails baseline date parsing to a
generic shape (digits become D, letters A, spaces _) and lists the shapes by
frequency. Defaults to the configured date columns.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt, err := profSource.options(c)
		if err != nil {
			return err
		}
		t, err := source.Read(cmd.Context(), args[0], opt)
		if err != nil {
			return err
		}
		cols := profColumns
		if len(cols) == 0 {
			for _, dc := range c.DateColumns {
				if t.Has(dc) {
					cols = append(cols, dc)
				}
			}
			if len(cols) == 0 {
				return fmt.Errorf("none of the date columns %v found in %s; pass --column", c.DateColumns, t.Name)
			}
		}
		out := cmd.OutOrStdout()
		for i, col := range cols {
			res, err := pattern.ProfileTable(t, col)
			if err != nil {
				return err
			}
			logger.Debug("profiled column", "column", col, "present", res.Present, "patterns", len(res.Patterns))
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprint(out, res.Markdown())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profSource.register(profileCmd)
	profileCmd.Flags().StringSliceVarP(&profColumns, "column", "c", nil, "column(s) to profile (repeatable)")
}

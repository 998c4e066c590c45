package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/recordloom-cli/internal/analysis"
	"github.com/KaramelBytes/recordloom-cli/internal/record"
	"github.com/KaramelBytes/recordloom-cli/internal/source"
	"github.com/KaramelBytes/recordloom-cli/internal/utils"
)

var (
	schemaSource     sourceFlags
	schemaOutputPath string
	schemaFormat     string
	schemaSampleRows int
	schemaJoined     bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema <file>",
	Short: "Summarize columns: inferred kind, missingness, cardinality and stats",
	Long: `Schema profiles every column of an extract. For a SQLite database every user
table is reported unless --table, --query or --joined selects a single result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		path := args[0]
		srcOpt, err := schemaSource.options(c)
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		if schemaSampleRows > 0 {
			opt.SampleRows = schemaSampleRows
		}
		if schemaSource.maxRows > 0 {
			opt.MaxRows = schemaSource.maxRows
		}

		ctx := cmd.Context()
		var tables []*record.Table
		if isSQLite(path) && schemaSource.table == "" && schemaSource.query == "" && !schemaJoined {
			tables, err = source.ReadTables(ctx, path, srcOpt.MaxRows)
		} else {
			var t *record.Table
			t, err = source.Read(ctx, path, srcOpt)
			tables = []*record.Table{t}
		}
		if err != nil {
			return err
		}
		reps := analysis.AnalyzeAll(tables, opt)

		var text string
		switch strings.ToLower(schemaFormat) {
		case "", "markdown", "md":
			parts := make([]string, len(reps))
			for i, r := range reps {
				parts[i] = r.Markdown()
			}
			text = strings.Join(parts, "\n")
		case "json":
			b, err := utils.PrettyJSON(reps)
			if err != nil {
				return err
			}
			text = string(b) + "\n"
		case "yaml", "yml":
			b, err := yaml.Marshal(reps)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			text = string(b)
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|yaml|json)", schemaFormat)
		}

		if schemaOutputPath != "" {
			if err := utils.SafeWriteFile(schemaOutputPath, []byte(text)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote schema report to %s\n", schemaOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaSource.register(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutputPath, "output", "o", "", "optional path to write the report")
	schemaCmd.Flags().StringVar(&schemaFormat, "format", "markdown", "report format: markdown|yaml|json")
	schemaCmd.Flags().IntVar(&schemaSampleRows, "sample-rows", 5, "number of sample rows to include")
	schemaCmd.Flags().BoolVar(&schemaJoined, "joined", false, "SQLite: report the joined extract instead of every table")
}

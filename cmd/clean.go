package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/recordloom-cli/internal/normalize"
	"github.com/KaramelBytes/recordloom-cli/internal/pattern"
	"github.com/KaramelBytes/recordloom-cli/internal/record"
	"github.com/KaramelBytes/recordloom-cli/internal/run"
	"github.com/KaramelBytes/recordloom-cli/internal/sink"
	"github.com/KaramelBytes/recordloom-cli/internal/source"
	"github.com/KaramelBytes/recordloom-cli/internal/utils"
)

const defaultCleanOutput = "cleaned_data.csv"

var (
	cleanSource      sourceFlags
	cleanOutput      string
	cleanTraceFormat string
	cleanTraceOut    string
	cleanOutputTable string
	cleanOutSheet    string
	cleanKeepRaw     bool
	cleanNoProfile   bool
	cleanNoManifest  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <input>",
	Short: "Normalize dates, gender, weight and height and write a cleaned table",
	Long: `Clean reads an extract (CSV/TSV, XLSX or SQLite), resolves every recognized
field through its cascade and writes the full cleaned table, or nothing on error.
The input is never modified. A diagnostic trace with per-stage counts is printed
(or written with --trace-out) and the run is recorded under runs_dir.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		input := args[0]
		output := cleanOutput
		if output == "" {
			output = defaultCleanOutput
		}
		outTable := c.OutputTable
		if cleanOutputTable != "" {
			outTable = cleanOutputTable
		}
		if outTable == "" {
			outTable = sink.DefaultTable
		}
		ctx := cmd.Context()
		// A database may receive the cleaned table next to the source tables.
		if sameFile(input, output) {
			if !isSQLite(output) {
				return errors.New("output would overwrite the input extract; choose another --output")
			}
			if strings.EqualFold(cleanSource.table, outTable) {
				return fmt.Errorf("output table %q is the table being cleaned; choose another --output-table", outTable)
			}
		}
		if isSQLite(output) {
			if err := sink.CheckTable(ctx, output, outTable); err != nil {
				return fmt.Errorf("%w; choose another --output-table", err)
			}
		}
		format := c.TraceFormat
		if cleanTraceFormat != "" {
			format = cleanTraceFormat
		}

		srcOpt, err := cleanSource.options(c)
		if err != nil {
			return err
		}
		t, err := source.Read(ctx, input, srcOpt)
		if err != nil {
			return err
		}
		logger.Info("loaded extract", "source", t.Name, "rows", len(t.Rows), "columns", len(t.Columns))

		opt := c.NormalizeOptions()
		if cmd.Flags().Changed("keep-raw-weight") {
			opt.KeepRawWeight = cleanKeepRaw
		}
		opt.Logger = logger

		var trace strings.Builder
		if !cleanNoProfile && isMarkdown(format) {
			for _, col := range opt.DateColumns {
				if !t.Has(col) {
					continue
				}
				res, err := pattern.ProfileTable(t, col)
				if err != nil {
					return err
				}
				trace.WriteString(res.Markdown())
				trace.WriteString("\n")
			}
		}

		m := run.New(c.RunsDir, input, output)
		cleaned, rep, err := normalize.Clean(t, opt)
		if err != nil {
			return err
		}
		rendered, err := rep.Render(format)
		if err != nil {
			return err
		}
		trace.WriteString(rendered)

		if err := sink.Write(ctx, output, cleaned, sink.Options{
			Delimiter: srcOpt.Delimiter,
			Table:     outTable,
			SheetName: cleanOutSheet,
		}); err != nil {
			return err
		}
		logger.Info("wrote cleaned table", "output", output, "rows", len(cleaned.Rows), "unresolved_dates", rep.UnresolvedTotal())

		out := cmd.OutOrStdout()
		if cleanTraceOut != "" {
			if err := utils.SafeWriteFile(cleanTraceOut, []byte(trace.String())); err != nil {
				return fmt.Errorf("write trace: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote trace to %s\n", cleanTraceOut)
		} else {
			fmt.Fprintln(out, trace.String())
			if !isMarkdown(format) {
				// keep stdout parseable as YAML/JSON
				out = cmd.ErrOrStderr()
			}
		}

		fmt.Fprintf(out, "✓ Cleaned data saved to %s\n", output)
		fmt.Fprintf(out, "Original shape: (%d, %d)\n", len(t.Rows), len(t.Columns))
		fmt.Fprintf(out, "Cleaned shape:  (%d, %d)\n", len(cleaned.Rows), len(cleaned.Columns))
		fmt.Fprint(out, nullCheck(cleaned))

		if !cleanNoManifest {
			m.Finish(cleaned.Columns, rep)
			if err := m.Save(); err != nil {
				// The cleaned output is already in place; a lost manifest is not fatal.
				logger.Warn("save run manifest", "error", err)
			} else {
				fmt.Fprintf(out, "Run: %s\n", m.ID)
			}
		}
		return nil
	},
}

// nullCheck lists missing counts per cleaned column.
func nullCheck(t *record.Table) string {
	var b strings.Builder
	b.WriteString("\n[NULL CHECK]\n")
	for i, col := range t.Columns {
		n := 0
		for _, row := range t.Rows {
			if row[i].IsMissing() {
				n++
			}
		}
		b.WriteString(fmt.Sprintf("- %s: %d\n", col, n))
	}
	return b.String()
}

func isMarkdown(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return true
	}
	return false
}

func sameFile(a, b string) bool {
	pa, errA := filepath.Abs(a)
	pb, errB := filepath.Abs(b)
	return errA == nil && errB == nil && pa == pb
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanSource.register(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "output path: .csv, .tsv, .xlsx or a SQLite database (default cleaned_data.csv)")
	cleanCmd.Flags().StringVar(&cleanTraceFormat, "trace-format", "", "diagnostic trace format: markdown|yaml|json (overrides config)")
	cleanCmd.Flags().StringVar(&cleanTraceOut, "trace-out", "", "write the diagnostic trace to a file instead of stdout")
	cleanCmd.Flags().StringVar(&cleanOutputTable, "output-table", "", "SQLite output: table replaced with the cleaned rows (overrides config)")
	cleanCmd.Flags().StringVar(&cleanOutSheet, "output-sheet", "", "XLSX output: sheet name (default Cleaned)")
	cleanCmd.Flags().BoolVar(&cleanKeepRaw, "keep-raw-weight", false, "keep the raw weight column next to the extracted number")
	cleanCmd.Flags().BoolVar(&cleanNoProfile, "no-profile", false, "omit the pattern profile of date columns from the trace")
	cleanCmd.Flags().BoolVar(&cleanNoManifest, "no-manifest", false, "do not record a run manifest")
}

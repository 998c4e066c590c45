package cmd

import (
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/recordloom-cli/internal/config"
	"github.com/KaramelBytes/recordloom-cli/internal/source"
)

// sourceFlags are the input selectors shared by commands that read an extract.
type sourceFlags struct {
	delimiter  string
	maxRows    int
	table      string
	query      string
	sheetName  string
	sheetIndex int
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (overrides config)")
	cmd.Flags().IntVar(&s.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	cmd.Flags().StringVar(&s.table, "table", "", "SQLite: read one table as-is instead of the join query")
	cmd.Flags().StringVar(&s.query, "query", "", "SQLite: query producing the extract (overrides config)")
	cmd.Flags().StringVar(&s.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&s.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (s *sourceFlags) options(c *cfgpkg.Global) (source.Options, error) {
	delim := s.delimiter
	if delim == "" {
		delim = c.Delimiter
	}
	d, err := parseDelimiter(delim)
	if err != nil {
		return source.Options{}, err
	}
	q := s.query
	if q == "" {
		q = c.SQLiteQuery
	}
	return source.Options{
		Delimiter:  d,
		MaxRows:    s.maxRows,
		Table:      s.table,
		Query:      q,
		SheetName:  s.sheetName,
		SheetIndex: s.sheetIndex,
	}, nil
}

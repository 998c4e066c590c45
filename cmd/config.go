package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/recordloom-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set RecordLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "date_columns: %s\n", strings.Join(cfg.DateColumns, ","))
		fmt.Fprintf(out, "gender_column: %s\n", cfg.GenderColumn)
		fmt.Fprintf(out, "weight_column: %s\n", cfg.WeightColumn)
		fmt.Fprintf(out, "weight_output: %s\n", cfg.WeightOutput)
		fmt.Fprintf(out, "keep_raw_weight: %t\n", cfg.KeepRawWeight)
		fmt.Fprintf(out, "height_column: %s\n", cfg.HeightColumn)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "sqlite_query: %s\n", strings.Join(strings.Fields(cfg.SQLiteQuery), " "))
		fmt.Fprintf(out, "output_table: %s\n", cfg.OutputTable)
		fmt.Fprintf(out, "workers: %d\n", cfg.Workers)
		fmt.Fprintf(out, "unresolved_samples: %d\n", cfg.UnresolvedSamples)
		fmt.Fprintf(out, "trace_format: %s\n", cfg.TraceFormat)
		fmt.Fprintf(out, "runs_dir: %s\n", cfg.RunsDir)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "date_columns":
			var cols []string
			for _, c := range strings.Split(val, ",") {
				if c = strings.TrimSpace(c); c != "" {
					cols = append(cols, c)
				}
			}
			cfg.DateColumns = cols
		case "gender_column":
			cfg.GenderColumn = val
		case "weight_column":
			cfg.WeightColumn = val
		case "weight_output":
			cfg.WeightOutput = val
		case "keep_raw_weight":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for keep_raw_weight: %w", err)
			}
			cfg.KeepRawWeight = b
		case "height_column":
			cfg.HeightColumn = val
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "sqlite_query":
			cfg.SQLiteQuery = val
		case "output_table":
			cfg.OutputTable = val
		case "workers":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for workers: %w", err)
			}
			cfg.Workers = i
		case "unresolved_samples":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for unresolved_samples: %w", err)
			}
			cfg.UnresolvedSamples = i
		case "trace_format":
			cfg.TraceFormat = strings.ToLower(val)
		case "runs_dir":
			cfg.RunsDir = val
		case "log_level":
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			cfg.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

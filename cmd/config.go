package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/discount-impact/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set discount-impact configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input_path: %s\n", c.InputPath)
		fmt.Fprintf(out, "output_path: %s\n", c.OutputPath)
		if c.MarkdownPath != "" {
			fmt.Fprintf(out, "markdown_path: %s\n", c.MarkdownPath)
		}
		fmt.Fprintf(out, "chart_dir: %s\n", c.ResolvedChartDir())
		fmt.Fprintf(out, "min_per_group: %d\n", c.MinPerGroup)
		fmt.Fprintf(out, "make_charts: %t\n", c.MakeCharts)
		fmt.Fprintf(out, "top_n: %d\n", c.TopN)
		fmt.Fprintf(out, "preview_rows: %d\n", c.PreviewRows)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %s\n", c.Delimiter)
		}
		if c.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", c.SheetName)
		}
		if c.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %s\n", c.DecimalSeparator)
		}
		if c.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %s\n", c.ThousandsSeparator)
		}
		fmt.Fprintf(out, "category_column: %s\n", c.CategoryColumn)
		fmt.Fprintf(out, "amount_column: %s\n", c.AmountColumn)
		fmt.Fprintf(out, "discount_column: %s\n", c.DiscountColumn)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
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
		next := *cfg
		switch key {
		case "input_path":
			next.InputPath = val
		case "output_path":
			next.OutputPath = val
		case "markdown_path":
			next.MarkdownPath = val
		case "chart_dir":
			next.ChartDir = val
		case "min_per_group":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for min_per_group: %w", err)
			}
			next.MinPerGroup = i
		case "make_charts":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for make_charts: %w", err)
			}
			next.MakeCharts = b
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for top_n: %w", err)
			}
			next.TopN = i
		case "preview_rows":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for preview_rows: %w", err)
			}
			next.PreviewRows = i
		case "delimiter":
			next.Delimiter = val
		case "sheet_name":
			next.SheetName = val
		case "decimal_separator":
			next.DecimalSeparator = val
		case "thousands_separator":
			next.ThousandsSeparator = val
		case "category_column":
			next.CategoryColumn = val
		case "amount_column":
			next.AmountColumn = val
		case "discount_column":
			next.DiscountColumn = val
		case "log_level":
			next.LogLevel = val
		case "log_format":
			next.LogFormat = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if _, err := loadOptions(&next); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

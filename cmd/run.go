package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/discount-impact/internal/analysis"
	"github.com/KaramelBytes/discount-impact/internal/chart"
	cfgpkg "github.com/KaramelBytes/discount-impact/internal/config"
	"github.com/KaramelBytes/discount-impact/internal/report"
	"github.com/KaramelBytes/discount-impact/internal/utils"
)

// alpha is the significance level reported in Markdown summaries.
const alpha = 0.05

var (
	runOutput      string
	runMinPerGroup int
	runTopN        int
	runCharts      bool
	runChartDir    string
	runMarkdown    string
	runDelimiter   string
	runSheetName   string
	runPreviewRows int
	runDecimal     string
	runThousands   string
	runCategoryCol string
	runAmountCol   string
	runDiscountCol string
)

var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Compare discounted vs non-discounted AOV per category",
	Long: `Load a CSV/TSV/XLSX of transactions, compare the discounted and non-discounted
cohorts of every category and write the summary table (sorted by % lift), a
console preview, optional Markdown and the top-lift and erosion bar charts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalysis,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

// addRunFlags registers the pipeline flags on c. Root and run share them.
func addRunFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVarP(&runOutput, "output", "o", "", "output CSV path (default from config)")
	f.IntVar(&runMinPerGroup, "min-per-group", 0, "minimum transactions per cohort for t-test and effect size")
	f.IntVar(&runTopN, "top-n", 0, "number of categories per chart")
	f.BoolVar(&runCharts, "charts", true, "render the top-lift and erosion charts (--charts=false to disable)")
	f.StringVar(&runChartDir, "chart-dir", "", "directory for chart PNGs (default: next to the output CSV)")
	f.StringVar(&runMarkdown, "markdown", "", "also write a Markdown summary to this path")
	f.StringVar(&runDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	f.StringVar(&runSheetName, "sheet-name", "", "XLSX: sheet name to analyze (default first sheet)")
	f.IntVar(&runPreviewRows, "preview-rows", -1, "rows shown in the console preview (0 disables)")
	f.StringVar(&runDecimal, "decimal", "", "decimal separator for amounts: '.'|'comma'")
	f.StringVar(&runThousands, "thousands", "", "thousands separator for amounts: ','|'.'|'space'")
	f.StringVar(&runCategoryCol, "category-col", "", "category column name")
	f.StringVar(&runAmountCol, "amount-col", "", "purchase amount column name")
	f.StringVar(&runDiscountCol, "discount-col", "", "discount flag column name")
}

// applyRunFlags overrides c with the flags the user actually set.
func applyRunFlags(cmd *cobra.Command, c *cfgpkg.Global, args []string) {
	f := cmd.Flags()
	if len(args) == 1 {
		c.InputPath = args[0]
	}
	if f.Changed("output") {
		c.OutputPath = runOutput
	}
	if f.Changed("min-per-group") {
		c.MinPerGroup = runMinPerGroup
	}
	if f.Changed("top-n") {
		c.TopN = runTopN
	}
	if f.Changed("charts") {
		c.MakeCharts = runCharts
	}
	if f.Changed("chart-dir") {
		c.ChartDir = runChartDir
	}
	if f.Changed("markdown") {
		c.MarkdownPath = runMarkdown
	}
	if f.Changed("delimiter") {
		c.Delimiter = runDelimiter
	}
	if f.Changed("sheet-name") {
		c.SheetName = runSheetName
	}
	if f.Changed("preview-rows") {
		c.PreviewRows = runPreviewRows
	}
	if f.Changed("decimal") {
		c.DecimalSeparator = runDecimal
	}
	if f.Changed("thousands") {
		c.ThousandsSeparator = runThousands
	}
	if f.Changed("category-col") {
		c.CategoryColumn = runCategoryCol
	}
	if f.Changed("amount-col") {
		c.AmountColumn = runAmountCol
	}
	if f.Changed("discount-col") {
		c.DiscountColumn = runDiscountCol
	}
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	c, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, c, args)
	if err := c.Validate(); err != nil {
		return err
	}
	setupLogging(c)
	_, err = runPipeline(cmd.Context(), c, cmd.OutOrStdout())
	return err
}

// loadOptions translates configuration into loader options.
func loadOptions(c *cfgpkg.Global) (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	opt.Columns = analysis.Columns{
		Category: c.CategoryColumn,
		Amount:   c.AmountColumn,
		Discount: c.DiscountColumn,
	}
	opt.SheetName = c.SheetName
	if err := analysis.ParseSeparators(&opt, c.Delimiter, c.DecimalSeparator, c.ThousandsSeparator); err != nil {
		return opt, err
	}
	return opt, nil
}

// runPipeline loads, summarizes and reports one input file. It returns the
// rounded, ordered summary rows.
func runPipeline(ctx context.Context, c *cfgpkg.Global, out io.Writer) ([]analysis.CategorySummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	log := slog.Default().With("run_id", runID)

	opt, err := loadOptions(c)
	if err != nil {
		return nil, err
	}
	ds, err := analysis.Load(c.InputPath, opt)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	log.Info("loaded dataset", "file", ds.Name, "rows", ds.Rows, "kept", len(ds.Transactions), "dropped", ds.Dropped.Total())
	for _, w := range ds.Warnings {
		log.Warn(w, "file", ds.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := report.Round(analysis.Summarize(ds.Transactions, c.MinPerGroup), report.Places)
	report.Sort(rows)
	log.Info("summarized categories", "categories", len(rows), "min_per_group", c.MinPerGroup)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := report.WriteCSV(c.OutputPath, rows); err != nil {
		return nil, err
	}
	log.Debug("wrote summary", "path", c.OutputPath)
	fmt.Fprintf(out, "✓ Saved results to: %s\n", utils.AbsOrSelf(c.OutputPath))

	if err := report.Preview(out, rows, c.PreviewRows); err != nil {
		return nil, fmt.Errorf("print preview: %w", err)
	}

	if c.MarkdownPath != "" {
		md := report.Markdown(report.Meta{
			RunID:       runID,
			Source:      ds.Name,
			Rows:        ds.Rows,
			Kept:        len(ds.Transactions),
			MinPerGroup: c.MinPerGroup,
			Alpha:       alpha,
			Warnings:    ds.Warnings,
		}, rows)
		if err := utils.SafeWriteFile(c.MarkdownPath, []byte(md)); err != nil {
			return nil, fmt.Errorf("write markdown: %w", err)
		}
		log.Debug("wrote markdown", "path", c.MarkdownPath)
		fmt.Fprintf(out, "✓ Wrote Markdown summary: %s\n", c.MarkdownPath)
	}

	if c.MakeCharts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		written, err := chart.RenderLift(rows, chart.Options{
			Dir:         c.ResolvedChartDir(),
			MinPerGroup: c.MinPerGroup,
			TopN:        c.TopN,
		})
		if err != nil {
			return nil, err
		}
		if len(written) == 0 {
			log.Info("skipped charts: no category meets the group threshold", "min_per_group", c.MinPerGroup)
		}
		for _, p := range written {
			fmt.Fprintf(out, "✓ Saved: %s\n", p)
		}
	}
	return rows, nil
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/discount-impact/internal/utils"
)

var (
	batchOutDir string
	batchQuiet  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Run the analysis over several CSV/TSV/XLSX files",
	Long: `Expand the given paths and glob patterns, then run the full analysis for each
file. Each input writes <name>_discount_impact.csv (and <name>_charts/ when charts
are enabled) into --out-dir; name clashes get a __2, __3... suffix.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("output") {
			return fmt.Errorf("--output is not supported by batch; outputs are named per input under --out-dir")
		}
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		base, err := effectiveConfig(cmd)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, base, nil)
		if err := base.Validate(); err != nil {
			return err
		}
		setupLogging(base)
		if err := utils.EnsureDir(batchOutDir); err != nil {
			return fmt.Errorf("create out dir: %w", err)
		}

		out := cmd.OutOrStdout()
		if batchQuiet {
			out = io.Discard
		}
		total := len(files)
		used := map[string]struct{}{}
		for i, path := range files {
			fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			stem := uniqueStem(batchOutDir, path, used)
			c := *base
			c.InputPath = path
			c.OutputPath = filepath.Join(batchOutDir, stem+"_discount_impact.csv")
			c.ChartDir = filepath.Join(batchOutDir, stem+"_charts")
			if c.MarkdownPath != "" {
				c.MarkdownPath = filepath.Join(batchOutDir, stem+"_discount_impact.md")
			}
			if _, err := runPipeline(cmd.Context(), &c, out); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addRunFlags(batchCmd)
	_ = batchCmd.Flags().MarkHidden("output")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", ".", "directory for per-file results")
	batchCmd.Flags().BoolVarP(&batchQuiet, "quiet", "q", false, "suppress progress and previews")
}

// expandInputs resolves globs and literal paths, dropping duplicates, in sorted order.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// uniqueStem returns the file's base name without extension, suffixed with
// __N when an earlier input in this batch or an existing output already uses it.
func uniqueStem(outDir, path string, used map[string]struct{}) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	taken := func(s string) bool {
		if _, ok := used[s]; ok {
			return true
		}
		_, err := os.Stat(filepath.Join(outDir, s+"_discount_impact.csv"))
		return err == nil
	}
	cand := stem
	for idx := 2; taken(cand); idx++ {
		cand = fmt.Sprintf("%s__%d", stem, idx)
	}
	used[cand] = struct{}{}
	return cand
}

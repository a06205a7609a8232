package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/discount-impact/internal/analysis"
	"github.com/KaramelBytes/discount-impact/internal/chart"
	"github.com/KaramelBytes/discount-impact/internal/report"
)

// resetFlags clears values and Changed state that persist across Execute calls.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range []*cobra.Command{rootCmd, runCmd, batchCmd, configShowCmd, configSetCmd} {
		c.Flags().VisitAll(reset)
	}
	cfg = nil
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	rootCmd.SetOut(nil)
	return out.String(), err
}

// mustExecute is a helper to execute the root command with args.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

// isolate points HOME at a temp dir so no user config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// writeShopping writes 3 categories with 10 discounted and 10 full-price rows
// each. Every cohort alternates two values, so means are exact.
func writeShopping(t *testing.T, dir string) string {
	t.Helper()
	cohorts := []struct {
		category string
		disc     [2]int
		full     [2]int
	}{
		{"Apparel", [2]int{70, 90}, [2]int{90, 110}}, // 80 vs 100: -20%
		{"Bags", [2]int{95, 105}, [2]int{95, 105}},   // 100 vs 100: 0%
		{"Coats", [2]int{110, 130}, [2]int{90, 110}}, // 120 vs 100: +20%
	}
	var b strings.Builder
	b.WriteString("Customer ID,Category,Purchase Amount (USD),Discount Applied\n")
	id := 1
	for _, c := range cohorts {
		for i := 0; i < 10; i++ {
			fmt.Fprintf(&b, "%d,%s,%d,Yes\n", id, c.category, c.disc[i%2])
			id++
			fmt.Fprintf(&b, "%d,%s,%d,No\n", id, c.category, c.full[i%2])
			id++
		}
	}
	path := filepath.Join(dir, "shopping.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestCLI_RunEndToEnd(t *testing.T) {
	home := isolate(t)
	input := writeShopping(t, home)
	outPath := filepath.Join(home, "results", "impact.csv")
	mdPath := filepath.Join(home, "results", "impact.md")

	out := mustExecute(t, "run", input, "-o", outPath, "--markdown", mdPath)
	assert.Contains(t, out, "✓ Saved results to: ")
	assert.Contains(t, out, "Pct_Lift", "preview header")
	assert.Contains(t, out, "Coats")

	rows, err := report.ReadCSV(outPath)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	wantOrder := []string{"Coats", "Bags", "Apparel"}
	wantLift := []float64{20, 0, -20}
	for i, r := range rows {
		assert.Equal(t, wantOrder[i], r.Category, "row %d", i)
		assert.Equal(t, 10, r.NDiscount, r.Category)
		assert.Equal(t, 10, r.NNoDiscount, r.Category)
		for name, valid := range map[string]bool{
			"AOV_discount":    r.AOVDiscount.Valid,
			"AOV_no_discount": r.AOVNoDiscount.Valid,
			"Delta_AOV":       r.DeltaAOV.Valid,
			"Pct_Lift":        r.PctLift.Valid,
			"Welch_t":         r.WelchT.Valid,
			"p_value":         r.PValue.Valid,
			"Hedges_g":        r.HedgesG.Valid,
		} {
			assert.True(t, valid, "%s: %s is missing", r.Category, name)
		}
		assert.Equal(t, wantLift[i], r.PctLift.Value, "%s lift", r.Category)
	}

	// Re-sorting what was read back keeps the order.
	resorted := append([]analysis.CategorySummary(nil), rows...)
	report.Sort(resorted)
	assert.Equal(t, rows, resorted)

	for _, name := range []string{chart.TopFile, chart.ErosionFile} {
		assert.FileExists(t, filepath.Join(home, "results", name))
	}
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "[DISCOUNT IMPACT SUMMARY]")
	assert.Contains(t, string(md), "| Coats | 10 | 10 | 120 | 100 | 20 | 20 |")
}

func TestCLI_RootRunsPipelineWithoutCharts(t *testing.T) {
	home := isolate(t)
	input := writeShopping(t, home)
	outPath := filepath.Join(home, "root.csv")

	out := mustExecute(t, input, "-o", outPath, "--charts=false", "--preview-rows", "0", "--min-per-group", "11")
	assert.NotContains(t, out, "Pct_Lift", "preview should be disabled")
	assert.NoFileExists(t, filepath.Join(home, chart.TopFile))

	rows, err := report.ReadCSV(outPath)
	require.NoError(t, err)
	for _, r := range rows {
		assert.False(t, r.WelchT.Valid || r.PValue.Valid || r.HedgesG.Valid,
			"%s: statistics should be missing below the threshold", r.Category)
		assert.True(t, r.PctLift.Valid, "%s: lift should still be present", r.Category)
	}
}

func TestCLI_MissingColumnFails(t *testing.T) {
	home := isolate(t)
	input := filepath.Join(home, "partial.csv")
	require.NoError(t, os.WriteFile(input, []byte("Category,Purchase Amount (USD)\nBags,10\n"), 0o644))
	outPath := filepath.Join(home, "never.csv")

	_, err := execute(t, "run", input, "-o", outPath)
	var mce *analysis.MissingColumnsError
	require.ErrorAs(t, err, &mce)
	assert.NoFileExists(t, outPath, "no output should be written on failure")
}

func TestCLI_InvalidFlagValueFails(t *testing.T) {
	home := isolate(t)
	input := writeShopping(t, home)
	_, err := execute(t, "run", input, "--min-per-group", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_per_group")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	mustExecute(t, "config", "set", "top_n", "5")
	mustExecute(t, "config", "set", "amount_column", "Total")
	assert.FileExists(t, filepath.Join(home, ".discount-impact", "config.yaml"))

	out := mustExecute(t, "config", "show")
	assert.Contains(t, out, "top_n: 5")
	assert.Contains(t, out, "amount_column: Total")

	_, err := execute(t, "config", "set", "top_n", "0")
	assert.Error(t, err, "top_n=0 must fail validation")
	_, err = execute(t, "config", "set", "delimiter", "|")
	assert.Error(t, err, "unsupported delimiter")
	_, err = execute(t, "config", "set", "nope", "1")
	assert.Error(t, err, "unknown key")
}

func TestCLI_BatchWritesPerFileResults(t *testing.T) {
	home := isolate(t)
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		require.NoError(t, os.MkdirAll(d, 0o755))
		writeShopping(t, d)
	}
	outDir := filepath.Join(home, "out")

	out := mustExecute(t, "batch", filepath.Join(home, "d*", "shopping.csv"), "--out-dir", outDir, "--charts=false", "--preview-rows", "0")
	assert.Contains(t, out, "[1/2] Processing shopping.csv...")
	assert.Contains(t, out, "[2/2] Processing shopping.csv...")
	for _, name := range []string{"shopping_discount_impact.csv", "shopping__2_discount_impact.csv"} {
		rows, err := report.ReadCSV(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		require.Len(t, rows, 3, name)
		assert.Equal(t, "Coats", rows[0].Category, name)
	}

	_, err := execute(t, "batch", filepath.Join(home, "nothing*.csv"))
	assert.Error(t, err, "no files match")
}

func TestCLI_BatchRejectsOutputFlag(t *testing.T) {
	home := isolate(t)
	input := writeShopping(t, home)
	outDir := filepath.Join(home, "out")
	stray := filepath.Join(home, "single.csv")

	_, err := execute(t, "batch", input, "--out-dir", outDir, "-o", stray)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
	assert.NoFileExists(t, stray)
	assert.NoDirExists(t, outDir, "nothing should run when the flag is rejected")
}

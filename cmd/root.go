package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/discount-impact/internal/config"
	"github.com/KaramelBytes/discount-impact/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "discount-impact [input]",
	Short: "Measure how discounts move average order value per category",
	Long: `discount-impact splits each product category's transactions into discounted and
non-discounted cohorts and compares their average order value (AOV): absolute and
percentage lift, Welch's t-test and Hedges' g. Results go to a CSV table, a console
preview, optional Markdown and two bar charts.

Run without a subcommand to analyze the configured input with configured defaults.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAnalysis,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.discount-impact/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text | json (overrides config)")
	addRunFlags(rootCmd)
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config load it again and report the error
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// effectiveConfig returns a copy of the loaded configuration with the global
// flag overrides applied, loading it first when startup loading failed.
func effectiveConfig(cmd *cobra.Command) (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	c := *cfg
	f := cmd.Flags()
	if debug {
		c.LogLevel = "debug"
	}
	if f.Changed("log-format") {
		c.LogFormat = logFormat
	}
	return &c, nil
}

// setupLogging installs the process logger for c.
func setupLogging(c *cfgpkg.Global) {
	logging.Setup(c.LogLevel, c.LogFormat)
}

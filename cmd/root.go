package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/echoloom-cli/internal/config"
	"github.com/KaramelBytes/echoloom-cli/internal/logging"
	"github.com/KaramelBytes/echoloom-cli/internal/parser"
	"github.com/KaramelBytes/echoloom-cli/internal/timing"
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
	Use:   "echoloom",
	Short: "EchoLoom CLI: turn echocardiography strain exports into analysis-ready datasets",
	Long: `EchoLoom reads vendor strain exports (SpreadsheetML .xml and single-view .txt),
computes per-segment and global strain descriptors around aortic valve closure,
merges them into a case dataset and summarises labelled populations on the
AHA 17-segment model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := ""
		format := logFormat
		if cfg != nil {
			level = cfg.LogLevel
			if format == "" {
				format = cfg.LogFormat
			}
		}
		if debug {
			level = "debug"
		}
		return logging.Configure(level, format)
	},
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.echoloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to flag defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// setting returns the flag value when the flag was given, otherwise the
// configured value, otherwise the flag default.
func setting(cmd *cobra.Command, flag, flagVal, cfgVal string) string {
	if cmd.Flags().Changed(flag) || cfgVal == "" {
		return flagVal
	}
	return cfgVal
}

// parseOptions builds reader options from the data tag and an optional
// timing file.
func parseOptions(dataTag, timingsFile string) (parser.Options, error) {
	opt := parser.DefaultOptions()
	if dataTag != "" {
		opt.DataTag = dataTag
	}
	if timingsFile != "" {
		t, err := timing.Load(timingsFile)
		if err != nil {
			return opt, err
		}
		opt.Timings = t
	}
	return opt, nil
}

// excelSetting returns the --excel flag when given, otherwise the
// configured write_excel, otherwise the flag default.
func excelSetting(cmd *cobra.Command, flagVal bool) bool {
	if cmd.Flags().Changed("excel") || cfg == nil {
		return flagVal
	}
	return cfg.WriteExcel
}

// configValue returns the loaded config or its defaults.
func configValue() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{}
}

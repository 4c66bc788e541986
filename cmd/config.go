package cmd

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/echoloom-cli/internal/aha"
	cfgpkg "github.com/KaramelBytes/echoloom-cli/internal/config"
	"github.com/KaramelBytes/echoloom-cli/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set EchoLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		if c.GLSDir != "" {
			fmt.Fprintf(out, "gls_dir: %s\n", c.GLSDir)
		}
		fmt.Fprintf(out, "output_name: %s\n", c.OutputName)
		if c.TimingsFile != "" {
			fmt.Fprintf(out, "timings_file: %s\n", c.TimingsFile)
		}
		if c.LabelsFile != "" {
			fmt.Fprintf(out, "labels_file: %s\n", c.LabelsFile)
		}
		fmt.Fprintf(out, "aha_scheme: %s\n", c.AHAScheme)
		fmt.Fprintf(out, "xml_data_tag: %s\n", c.XMLDataTag)
		fmt.Fprintf(out, "write_excel: %t\n", c.WriteExcel)
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
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		switch key {
		case "output_dir":
			c.OutputDir = val
		case "gls_dir":
			c.GLSDir = val
		case "output_name":
			c.OutputName = val
		case "timings_file":
			c.TimingsFile = val
		case "labels_file":
			c.LabelsFile = val
		case "aha_scheme":
			s, err := aha.ParseScheme(val)
			if err != nil {
				return err
			}
			c.AHAScheme = s.String()
		case "xml_data_tag":
			if val == "" {
				return fmt.Errorf("xml_data_tag cannot be empty")
			}
			c.XMLDataTag = val
		case "write_excel":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for write_excel: %v", val)
			}
			c.WriteExcel = b
		case "log_level":
			if _, err := log.ParseLevel(val); err != nil {
				return fmt.Errorf("invalid log_level: %w", err)
			}
			c.LogLevel = val
		case "log_format":
			if val != logging.FormatText && val != logging.FormatJSON {
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
			c.LogFormat = val
		default:
			return fmt.Errorf("unknown key: %s (known: %v)", key, cfgpkg.Keys)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
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

// ensureConfig loads the configuration when the root hook has not.
func ensureConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	return cfg, nil
}

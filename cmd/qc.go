package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/utils"
)

var (
	qcThreshold float64
	qcOutput    string
)

var qcCmd = &cobra.Command{
	Use:   "qc <dataset>",
	Short: "Summarise dataset coverage and flag outlier cases",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dataset.Read(args[0])
		if err != nil {
			return err
		}
		rep, err := dataset.Profile(filepath.Base(args[0]), d, qcThreshold)
		if err != nil {
			return err
		}
		md := rep.Markdown()
		if qcOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := utils.EnsureDir(filepath.Dir(qcOutput)); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(qcOutput, []byte(md)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", qcOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(qcCmd)
	qcCmd.Flags().Float64Var(&qcThreshold, "outlier-threshold", dataset.DefaultOutlierThreshold, "robust |z| threshold for outliers (MAD-based)")
	qcCmd.Flags().StringVarP(&qcOutput, "output", "o", "", "write the report to this file instead of stdout")
}

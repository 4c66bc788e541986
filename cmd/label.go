package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/echoloom-cli/internal/aha"
	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/population"
)

var (
	lbLabels    string
	lbFeature   string
	lbScheme    string
	lbOutputDir string
)

var labelCmd = &cobra.Command{
	Use:   "label <dataset>",
	Short: "Label a dataset and pick one representative case per label",
	Long: `Joins a dataset with a label spreadsheet (ID, label) and writes
Labelled.xlsx, representatives.xlsx (the case of each label closest to the
label median of the chosen feature) and population_<N>_AHA.xlsx.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := configValue()
		path := setting(cmd, "labels", lbLabels, conf.LabelsFile)
		if path == "" {
			return fmt.Errorf("--labels is required (or set labels_file)")
		}
		f, err := population.ParseFeature(lbFeature)
		if err != nil {
			return err
		}
		scheme, err := aha.ParseScheme(setting(cmd, "scheme", lbScheme, conf.AHAScheme))
		if err != nil {
			return err
		}
		d, err := dataset.Read(args[0])
		if err != nil {
			return err
		}
		labels, err := population.LoadLabels(path)
		if err != nil {
			return err
		}
		rep, err := population.Run(setting(cmd, "output-dir", lbOutputDir, conf.OutputDir), d, labels, f, scheme)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(rep.Unlabelled) > 0 {
			fmt.Fprintf(out, "⚠ %d case(s) without a label: %v\n", len(rep.Unlabelled), rep.Unlabelled)
		}
		tw := tablewriter.NewWriter(out)
		tw.SetHeader([]string{"Label", "Cases"})
		for _, g := range rep.Groups {
			tw.Append([]string{g.Label, fmt.Sprint(len(g.IDs))})
		}
		tw.Render()
		for _, p := range []string{rep.Labelled, rep.Representatives, rep.AHA} {
			fmt.Fprintf(out, "✓ Wrote %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelCmd)
	labelCmd.Flags().StringVar(&lbLabels, "labels", "", "label spreadsheet (.xlsx|.csv) with ID and label columns")
	labelCmd.Flags().StringVar(&lbFeature, "feature", "strain_min", "feature: strain_avc|strain_min|ttp|ttp_ratio|psi_pct")
	labelCmd.Flags().StringVar(&lbScheme, "scheme", "4:1:1", "apical weighting: 4:1:1|vendor-2:1")
	labelCmd.Flags().StringVarP(&lbOutputDir, "output-dir", "o", ".", "directory for the workbooks")
}

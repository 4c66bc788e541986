package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/echoloom-cli/internal/aha"
	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/population"
)

var (
	ahaLabels    string
	ahaFeature   string
	ahaScheme    string
	ahaOutputDir string
)

var ahaCmd = &cobra.Command{
	Use:   "aha <dataset>",
	Short: "Summarise a segment feature of a dataset on the AHA 17-segment model",
	Long: `Computes the mean and median of a per-segment feature over every case of a
dataset (.csv or .xlsx), remaps them to the AHA 17-segment model and writes
population_<N>_AHA.xlsx. With --labels, one extra sheet per label is added.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := configValue()
		f, err := population.ParseFeature(ahaFeature)
		if err != nil {
			return err
		}
		scheme, err := aha.ParseScheme(setting(cmd, "scheme", ahaScheme, conf.AHAScheme))
		if err != nil {
			return err
		}
		d, err := dataset.Read(args[0])
		if err != nil {
			return err
		}
		groups := []population.Group{{Label: population.AllGroup, IDs: d.IDs()}}
		if path := setting(cmd, "labels", ahaLabels, conf.LabelsFile); path != "" {
			labels, err := population.LoadLabels(path)
			if err != nil {
				return err
			}
			labelled, missing := population.Apply(d, labels)
			if len(missing) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "⚠ %d case(s) without a label: %v\n", len(missing), missing)
			}
			d = labelled
			groups = append([]population.Group{{Label: population.AllGroup, IDs: d.IDs()}}, population.Groups(d)...)
		}
		var sheets []population.Sheet
		for _, g := range groups {
			s, err := population.AHASummary(d, g.IDs, f, scheme)
			if err != nil {
				return err
			}
			sheets = append(sheets, population.Sheet{Name: g.Label, Summary: s})
		}
		p, err := population.WriteAHA(setting(cmd, "output-dir", ahaOutputDir, conf.OutputDir), d.Len(), sheets)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%s, %s scheme, %d sheet(s))\n", p, f, scheme, len(sheets))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ahaCmd)
	ahaCmd.Flags().StringVar(&ahaLabels, "labels", "", "label spreadsheet (ID, label) to add one sheet per label")
	ahaCmd.Flags().StringVar(&ahaFeature, "feature", "strain_min", "feature: strain_avc|strain_min|ttp|ttp_ratio|psi_pct")
	ahaCmd.Flags().StringVar(&ahaScheme, "scheme", "4:1:1", "apical weighting: 4:1:1|vendor-2:1")
	ahaCmd.Flags().StringVarP(&ahaOutputDir, "output-dir", "o", ".", "directory for the workbook")
}

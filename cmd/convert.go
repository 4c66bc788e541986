package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/echoloom-cli/internal/analysis"
	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

var (
	cvTimings string
	cvDataTag string
	cvGLSDir  string
	cvExcel   bool
	cvFilter  string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Describe one strain export and print its descriptor row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := configValue()
		opt, err := parseOptions(
			setting(cmd, "data-tag", cvDataTag, conf.XMLDataTag),
			setting(cmd, "timings", cvTimings, conf.TimingsFile),
		)
		if err != nil {
			return err
		}
		c, row, err := dataset.Convert(args[0], opt)
		if err != nil {
			return err
		}
		if dir := setting(cmd, "gls-dir", cvGLSDir, conf.GLSDir); dir != "" {
			paths, err := dataset.WriteMeanGlobalTraces(dir, c.ID, analysis.MeanGlobalTraces(c), excelSetting(cmd, cvExcel))
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", p)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Case %s (%s, AVC %.3fs)\n", c.ID, c.Kind, c.AVC)
		renderRow(cmd.OutOrStdout(), row, cvFilter)
		return nil
	},
}

// renderRow prints the cells of a row whose name contains filter.
func renderRow(w io.Writer, row *table.Row, filter string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Column", "Value"})
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	filter = strings.ToLower(filter)
	for _, name := range row.Names() {
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		v, _ := row.Get(name)
		tw.Append([]string{name, displayValue(v)})
	}
	tw.Render()
}

func displayValue(v table.Value) string {
	if f, ok := v.Float(); ok && v.Kind == table.KindNumber && !math.IsNaN(f) {
		return fmt.Sprintf("%.4g", f)
	}
	return v.String()
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&cvTimings, "timings", "", "valve-closure timing spreadsheet (.xlsx|.csv, ID and AVC in ms)")
	convertCmd.Flags().StringVar(&cvDataTag, "data-tag", "Data", "SpreadsheetML element holding cell text")
	convertCmd.Flags().StringVar(&cvGLSDir, "gls-dir", "", "write the mean global traces into this directory")
	convertCmd.Flags().BoolVar(&cvExcel, "excel", false, "also write .xlsx copies of the traces (default from write_excel when configured)")
	convertCmd.Flags().StringVar(&cvFilter, "filter", "", "only print columns containing this text")
}

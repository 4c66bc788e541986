package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/parser"
)

var (
	dsTimings    string
	dsDataTag    string
	dsOutputDir  string
	dsGLSDir     string
	dsName       string
	dsExcel      bool
	dsSkipErrors bool
	dsQuiet      bool
)

var datasetCmd = &cobra.Command{
	Use:   "dataset <files...>",
	Short: "Convert many strain exports into one case dataset with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		conf := configValue()
		opt, err := parseOptions(
			setting(cmd, "data-tag", dsDataTag, conf.XMLDataTag),
			setting(cmd, "timings", dsTimings, conf.TimingsFile),
		)
		if err != nil {
			return err
		}
		outDir := setting(cmd, "output-dir", dsOutputDir, conf.OutputDir)

		bopt := dataset.Options{
			Parse:      opt,
			GLSDir:     setting(cmd, "gls-dir", dsGLSDir, conf.GLSDir),
			Excel:      excelSetting(cmd, dsExcel),
			SkipErrors: dsSkipErrors,
		}
		if !dsQuiet {
			bopt.Progress = cmd.OutOrStdout()
		}
		b := dataset.NewBuilder(bopt)
		if err := b.Build(files); err != nil {
			return err
		}
		paths, err := b.Save(outDir, setting(cmd, "name", dsName, conf.OutputName))
		if err != nil {
			return err
		}
		if !dsQuiet {
			ok, failed := b.Manifest.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d case(s) converted, %d failed\n", ok, failed)
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", p)
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, drops duplicates and files
// no reader handles, and sorts the result.
func expandInputs(args []string) ([]string, error) {
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
			if !parser.Supported(m) {
				continue
			}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.Flags().StringVar(&dsTimings, "timings", "", "valve-closure timing spreadsheet (.xlsx|.csv, ID and AVC in ms)")
	datasetCmd.Flags().StringVar(&dsDataTag, "data-tag", "Data", "SpreadsheetML element holding cell text")
	datasetCmd.Flags().StringVarP(&dsOutputDir, "output-dir", "o", ".", "directory for the dataset and manifest")
	datasetCmd.Flags().StringVar(&dsGLSDir, "gls-dir", "", "write per-case mean global traces into this directory")
	datasetCmd.Flags().StringVar(&dsName, "name", dataset.DefaultName, "base name of the dataset files")
	datasetCmd.Flags().BoolVar(&dsExcel, "excel", true, "also write .xlsx copies of the outputs")
	datasetCmd.Flags().BoolVar(&dsSkipErrors, "skip-errors", false, "record failing cases and continue")
	datasetCmd.Flags().BoolVar(&dsQuiet, "quiet", false, "suppress progress and non-essential output")
}

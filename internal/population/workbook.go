package population

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/echoloom-cli/internal/aha"
	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
	"github.com/KaramelBytes/echoloom-cli/internal/utils"
)

// Output file names.
const (
	LabelledFile        = "Labelled.xlsx"
	RepresentativesFile = "representatives.xlsx"
)

// AHAFile names the AHA summary workbook of a population of n cases.
func AHAFile(n int) string { return fmt.Sprintf("population_%d_AHA.xlsx", n) }

// AllGroup is the sheet holding the summary over every labelled case.
const AllGroup = "all"

// WriteLabelled writes the labelled dataset to dir/Labelled.xlsx.
func WriteLabelled(dir string, d *dataset.Dataset) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	p := filepath.Join(dir, LabelledFile)
	return p, d.WriteXLSX(p)
}

// WriteRepresentatives writes the rows of the representative cases, with
// their label and distance, to dir/representatives.xlsx.
func WriteRepresentatives(dir string, d *dataset.Dataset, reps []Representative) (string, error) {
	out := dataset.New()
	for _, rep := range reps {
		r, ok := d.Row(rep.ID)
		if !ok {
			continue
		}
		c := table.NewRow(rep.ID)
		c.Set(LabelColumn, table.Text(rep.Label))
		c.SetNumber("distance", rep.Distance)
		c.Merge(r)
		out.Add(c)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	p := filepath.Join(dir, RepresentativesFile)
	return p, out.WriteXLSX(p)
}

// Sheet is one labelled AHA summary of a workbook.
type Sheet struct {
	Name    string
	Summary *table.Labelled
}

// WriteAHA writes one sheet per summary to dir/population_<n>_AHA.xlsx.
func WriteAHA(dir string, n int, sheets []Sheet) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("no AHA summaries to write")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	f := excelize.NewFile()
	defer f.Close()
	first := f.GetSheetName(0)
	used := make(map[string]bool)
	for i, s := range sheets {
		name := sheetName(s.Name, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return "", fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := writeSummarySheet(f, name, s.Summary); err != nil {
			return "", err
		}
	}
	p := filepath.Join(dir, AHAFile(n))
	if err := f.SaveAs(p); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return p, nil
}

func writeSummarySheet(f *excelize.File, sheet string, l *table.Labelled) error {
	header := []interface{}{""}
	for _, c := range l.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range l.Rows {
		vals := []interface{}{r}
		for _, v := range l.Values[i] {
			if math.IsNaN(v) {
				vals = append(vals, nil)
				continue
			}
			vals = append(vals, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write %s: %w", r, err)
		}
	}
	return nil
}

// sheetName makes a label usable as a unique worksheet name.
func sheetName(label string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(label))
	if name == "" {
		name = "group"
	}
	if r := []rune(name); len(r) > 28 {
		name = string(r[:28])
	}
	base := name
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	used[name] = true
	return name
}

// Report is the outcome of a population run.
type Report struct {
	Labelled        string
	Representatives string
	AHA             string
	Unlabelled      []string
	Groups          []Group
}

// Run labels a dataset, writes Labelled.xlsx, the representatives and the
// AHA summaries (one sheet for all cases plus one per label) into dir.
func Run(dir string, d *dataset.Dataset, labels Labels, f Feature, scheme aha.Scheme) (*Report, error) {
	labelled, missing := Apply(d, labels)
	if labelled.Len() == 0 {
		return nil, fmt.Errorf("no case in the dataset has a label")
	}
	rep := &Report{Unlabelled: missing, Groups: Groups(labelled)}

	var err error
	if rep.Labelled, err = WriteLabelled(dir, labelled); err != nil {
		return nil, err
	}
	reps, err := Representatives(labelled, rep.Groups, f)
	if err != nil {
		return nil, err
	}
	if rep.Representatives, err = WriteRepresentatives(dir, labelled, reps); err != nil {
		return nil, err
	}
	sheets, err := ahaSheets(labelled, rep.Groups, f, scheme)
	if err != nil {
		return nil, err
	}
	if rep.AHA, err = WriteAHA(dir, labelled.Len(), sheets); err != nil {
		return nil, err
	}
	return rep, nil
}

func ahaSheets(d *dataset.Dataset, groups []Group, f Feature, scheme aha.Scheme) ([]Sheet, error) {
	all, err := AHASummary(d, d.IDs(), f, scheme)
	if err != nil {
		return nil, err
	}
	sheets := []Sheet{{Name: AllGroup, Summary: all}}
	for _, g := range groups {
		s, err := AHASummary(d, g.IDs, f, scheme)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Label, err)
		}
		sheets = append(sheets, Sheet{Name: g.Label, Summary: s})
	}
	return sheets, nil
}

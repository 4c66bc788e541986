package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"

	cfgpkg "github.com/KaramelBytes/echoloom-cli/internal/config"
	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/echo/echotest"
)

// resetFlags restores every flag to its default so state does not leak
// between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns its output.
func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// writeCohort writes two full exports, one single-view export and a file
// no reader handles, plus the timing sheet.
func writeCohort(t *testing.T) (in, timings string) {
	t.Helper()
	in = filepath.Join(t.TempDir(), "exports")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	echotest.WriteXML(t, in, "ABC0455.xml", "PAT-1", 300)
	echotest.WriteXML(t, in, "ABC0457.xml", "PAT-2", 320)
	echotest.WriteSingleView(t, in, "ABC0456_4C.txt")
	if err := os.WriteFile(filepath.Join(in, "notes.docx"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	timings = filepath.Join(t.TempDir(), "avc.csv")
	if err := os.WriteFile(timings, []byte("ID,AVC\nABC0456,300\n"), 0o644); err != nil {
		t.Fatalf("write timings: %v", err)
	}
	return in, timings
}

func TestCLI_DatasetThenPopulation(t *testing.T) {
	in, timings := writeCohort(t)
	out := filepath.Join(t.TempDir(), "out")
	gls := filepath.Join(out, "gls")

	progress := runCmd(t, "dataset", filepath.Join(in, "*"), "--timings", timings, "-o", out, "--gls-dir", gls)
	if !strings.Contains(progress, "[3/3] Processing") {
		t.Fatalf("expected progress for three cases, got:\n%s", progress)
	}
	for _, name := range []string{"all_cases.csv", "all_cases.xlsx", "manifest.json"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	for _, id := range []string{"ABC0455", "ABC0457", "ABC0456_4C"} {
		if _, err := os.Stat(filepath.Join(gls, id+dataset.GLSSuffix+".csv")); err != nil {
			t.Fatalf("missing traces of %s: %v", id, err)
		}
	}
	m, err := dataset.LoadManifest(out)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if ok, failed := m.Counts(); ok != 3 || failed != 0 {
		t.Fatalf("manifest counts = %d ok, %d failed", ok, failed)
	}

	csvPath := filepath.Join(out, "all_cases.csv")
	runCmd(t, "aha", csvPath, "-o", out, "--feature", "ttp")
	if _, err := os.Stat(filepath.Join(out, "population_3_AHA.xlsx")); err != nil {
		t.Fatalf("missing AHA workbook: %v", err)
	}

	labels := filepath.Join(t.TempDir(), "labels.csv")
	if err := os.WriteFile(labels, []byte("ID,label\nABC0455,healthy\nABC0457,dcm\n"), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}
	popDir := filepath.Join(out, "population")
	report := runCmd(t, "label", csvPath, "--labels", labels, "-o", popDir)
	if !strings.Contains(report, "ABC0456_4C") {
		t.Fatalf("expected the unlabelled case to be reported, got:\n%s", report)
	}
	for _, name := range []string{"Labelled.xlsx", "representatives.xlsx", "population_2_AHA.xlsx"} {
		if _, err := os.Stat(filepath.Join(popDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	f, err := excelize.OpenFile(filepath.Join(popDir, "population_2_AHA.xlsx"))
	if err != nil {
		t.Fatalf("open AHA workbook: %v", err)
	}
	defer f.Close()
	if got := strings.Join(f.GetSheetList(), ","); got != "all,dcm,healthy" {
		t.Fatalf("sheets = %s", got)
	}

	qc := runCmd(t, "qc", csvPath)
	if !strings.Contains(qc, "Cases: 3") {
		t.Fatalf("unexpected qc report:\n%s", qc)
	}
}

func TestCLI_DatasetStopsOnMalformedExport(t *testing.T) {
	in := t.TempDir()
	echotest.WriteXML(t, in, "ABC0455.xml", "PAT-1", 300)
	if err := os.WriteFile(filepath.Join(in, "broken.xml"), []byte("<Workbook>"), 0o644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	out := t.TempDir()
	_, err := execCmd("dataset", filepath.Join(in, "*.xml"), "-o", out, "--quiet")
	if !errors.Is(err, echo.ErrMalformedExport) {
		t.Fatalf("expected malformed export error, got %v", err)
	}

	runCmd(t, "dataset", filepath.Join(in, "*.xml"), "-o", out, "--quiet", "--skip-errors", "--excel=false")
	d, err := dataset.Read(filepath.Join(out, "all_cases.csv"))
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	if ids := d.IDs(); len(ids) != 1 || ids[0] != "ABC0455" {
		t.Fatalf("ids = %v", ids)
	}
	if _, err := os.Stat(filepath.Join(out, "all_cases.xlsx")); !os.IsNotExist(err) {
		t.Fatalf("expected no xlsx with --excel=false")
	}
}

func TestCLI_ConvertPrintsDescriptors(t *testing.T) {
	in, timings := writeCohort(t)
	out := runCmd(t, "convert", filepath.Join(in, "ABC0456_4C.txt"), "--timings", timings, "--filter", "gls")
	if !strings.Contains(out, "Case ABC0456_4C (single_view, AVC 0.300s)") {
		t.Fatalf("missing case header:\n%s", out)
	}
	if !strings.Contains(out, "max_gls") || strings.Contains(out, "strain_min") {
		t.Fatalf("filter not applied:\n%s", out)
	}

	_, err := execCmd("convert", filepath.Join(in, "ABC0456_4C.txt"))
	if !errors.Is(err, echo.ErrMissingTiming) {
		t.Fatalf("expected missing timing error, got %v", err)
	}
}

func TestCLI_ConvertFollowsWriteExcel(t *testing.T) {
	in, timings := writeCohort(t)
	file := filepath.Join(in, "ABC0456_4C.txt")
	xlsx := func(dir string) string { return filepath.Join(dir, "ABC0456_4C"+dataset.GLSSuffix+".xlsx") }

	run := func(dir string, flags map[string]string) {
		t.Helper()
		resetFlags(rootCmd)
		cfg = &cfgpkg.Global{WriteExcel: true}
		defer func() { cfg = nil }()
		flags["timings"] = timings
		flags["gls-dir"] = dir
		for k, v := range flags {
			if err := convertCmd.Flags().Set(k, v); err != nil {
				t.Fatalf("set %s: %v", k, err)
			}
		}
		var out bytes.Buffer
		convertCmd.SetOut(&out)
		if err := convertCmd.RunE(convertCmd, []string{file}); err != nil {
			t.Fatalf("convert: %v", err)
		}
	}

	configured := t.TempDir()
	run(configured, map[string]string{})
	if _, err := os.Stat(xlsx(configured)); err != nil {
		t.Fatalf("write_excel should produce the xlsx traces: %v", err)
	}

	disabled := t.TempDir()
	run(disabled, map[string]string{"excel": "false"})
	if _, err := os.Stat(xlsx(disabled)); !os.IsNotExist(err) {
		t.Fatalf("--excel=false should win over write_excel")
	}
	if _, err := os.Stat(filepath.Join(disabled, "ABC0456_4C"+dataset.GLSSuffix+".csv")); err != nil {
		t.Fatalf("missing csv traces: %v", err)
	}
}

func TestExcelSetting(t *testing.T) {
	c := &cobra.Command{Use: "x"}
	var excel bool
	c.Flags().BoolVar(&excel, "excel", false, "")
	defer func() { cfg = nil }()

	cfg = nil
	if excelSetting(c, excel) {
		t.Fatalf("flag default expected without config")
	}
	cfg = &cfgpkg.Global{WriteExcel: true}
	if !excelSetting(c, excel) {
		t.Fatalf("write_excel expected when the flag is not given")
	}
	if err := c.Flags().Set("excel", "false"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if excelSetting(c, excel) {
		t.Fatalf("explicit flag expected to win")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	runCmd(t, "--config", p, "config", "set", "output_name", "cohort")
	runCmd(t, "--config", p, "config", "set", "aha_scheme", "2:1")
	out := runCmd(t, "--config", p, "config", "show")
	for _, want := range []string{"output_name: cohort", "aha_scheme: vendor-2:1", "xml_data_tag: Data"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show missing %q:\n%s", want, out)
		}
	}
	if _, err := execCmd("--config", p, "config", "set", "bogus", "x"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := execCmd("--config", p, "config", "set", "write_excel", "maybe"); err == nil {
		t.Fatalf("expected invalid bool error")
	}
}

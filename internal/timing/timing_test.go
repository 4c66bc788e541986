package timing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
)

func TestLoadXLSXAndLookupByPrefix(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "ID"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "AVC"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "ABC0455"))
	require.NoError(t, f.SetCellValue(sheet, "B2", 350))
	path := filepath.Join(dir, "AVC timings.xlsx")
	require.NoError(t, f.SaveAs(path))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	avc, err := tbl.Lookup("ABC0455_4C")
	require.NoError(t, err)
	assert.InDelta(t, 0.35, avc, 1e-12)

	_, err = tbl.Lookup("XYZ0001_4C")
	assert.ErrorIs(t, err, echo.ErrMissingTiming)
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timings.csv")
	require.NoError(t, os.WriteFile(path, []byte("ID,AVC\ncase1,420\ncase2,\n"), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
	avc, err := tbl.Lookup("case1")
	require.NoError(t, err)
	assert.InDelta(t, 0.42, avc, 1e-12)
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timings.csv")
	require.NoError(t, os.WriteFile(path, []byte("case,time\na,1\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestNilTableLookup(t *testing.T) {
	var tbl *Table
	_, err := tbl.Lookup("a")
	assert.ErrorIs(t, err, echo.ErrMissingTiming)
}

package inputlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docpipeline/internal/common"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "manifest.csv",
		"file_path,notes\n"+
			"docs/a.txt,first\n"+
			"docs/b.pdf\n"+
			"  docs/c.docx  ,extra,columns\n"+
			",blank path skipped\n")

	paths, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.txt", "docs/b.pdf", "docs/c.docx"}, paths)
}

func TestReadCSVMalformed(t *testing.T) {
	path := writeFile(t, "broken.csv", "file_path\n\"unterminated\n")

	_, err := ReadCSV(path)
	require.ErrorIs(t, err, common.ErrMalformedInput)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	paths, err := ReadCSV(writeFile(t, "empty.csv", "file_path\n"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	rows := [][]any{
		{"file_path", "notes"},
		{"docs/a.txt", "x"},
		{"docs/b.pdf"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "manifest.xlsx")
	require.NoError(t, f.SaveAs(path))

	paths, err := ReadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.txt", "docs/b.pdf"}, paths)
}

func TestReadManifestDispatch(t *testing.T) {
	paths, err := ReadManifest(writeFile(t, "m.csv", "file_path\ndocs/a.txt\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.txt"}, paths)

	_, err = ReadManifest(writeFile(t, "m.json", "{}"))
	require.ErrorIs(t, err, common.ErrMalformedInput)
}

package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormatFromFileName(t *testing.T) {
	cases := map[string]struct {
		format Format
		ok     bool
	}{
		"locations.csv":  {FormatCSV, true},
		"MACHINES.XLSX":  {FormatXLSX, true},
		"legacy.xls":     {FormatXLS, true},
		"notes.txt":      {"", false},
		"no-extension":   {"", false},
		"archive.csv.gz": {"", false},
	}

	for name, expected := range cases {
		format, ok := FormatFromFileName(name)
		require.Equal(t, expected.ok, ok, name)
		require.Equal(t, expected.format, format, name)
	}
}

func TestParseCSV(t *testing.T) {
	data := []byte("name,description,icon\nPlant A,Main plant,factory\nWarehouse,,box\n")

	rows, err := Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Plant A", rows[0]["name"])
	require.Equal(t, "Main plant", rows[0]["description"])
	require.Equal(t, "", rows[1]["description"])
	require.Equal(t, "box", rows[1]["icon"])
}

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nPlant A\n")...)

	rows, err := Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Plant A", rows[0]["name"])
}

func TestParseCSVPadsShortRecords(t *testing.T) {
	data := []byte("name,description\nPlant A\n")

	rows, err := Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Plant A", rows[0]["name"])
	require.Equal(t, "", rows[0]["description"])
}

func TestParseCSVSkipsBlankLines(t *testing.T) {
	data := []byte("name\n\nPlant A\n,\nPlant B\n")

	rows, err := Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Plant A", rows[0]["name"])
	require.Equal(t, "Plant B", rows[1]["name"])
}

func TestParseCSVHeaderOnlyIsEmptyResult(t *testing.T) {
	rows, err := Parse([]byte("name,description\n"), FormatCSV)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestParseCSVNoHeaderFails(t *testing.T) {
	_, err := Parse([]byte(""), FormatCSV)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseIsIdempotent(t *testing.T) {
	data := []byte("name,parentId\nPlant A,\nBuilding A,Plant A\nLine 1,Building A\n")

	first, err := Parse(data, FormatCSV)
	require.NoError(t, err)
	second, err := Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"name", "manufacturer", "brand", "year"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"X1", "Acme", "X", 2020}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Parse(buf.Bytes(), FormatXLSX)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "X1", rows[0]["name"])
	require.Equal(t, "Acme", rows[0]["manufacturer"])
	require.Equal(t, "2020", rows[0]["year"])
}

func TestParseXLSXCorruptBytesFails(t *testing.T) {
	_, err := Parse([]byte("definitely not a zip archive"), FormatXLSX)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseXLSCorruptBytesFails(t *testing.T) {
	_, err := Parse([]byte("not an ole compound file"), FormatXLS)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseXLSRejectsOOXMLContainer(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"name"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	// A zip-based workbook carrying an .xls extension is a format mismatch,
	// not a legacy workbook.
	_, err = Parse(buf.Bytes(), FormatXLS)
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseUnsupportedFormatFails(t *testing.T) {
	_, err := Parse([]byte("a,b\n1,2\n"), Format("tsv"))
	require.Error(t, err)
}

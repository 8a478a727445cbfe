package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Row maps header column names to raw cell values for one line of an upload.
type Row map[string]string

type Format string

var (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// FormatFromFileName derives the declared format from the file extension.
func FormatFromFileName(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	case ".xls":
		return FormatXLS, true
	default:
		return "", false
	}
}

// ParseError means the byte buffer could not be decoded as the declared
// format. It fails the whole job with zero rows processed.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Parse converts raw upload bytes into header-keyed rows in file order. The
// first row is the header for every format. A file with a header and zero
// data rows is a valid empty result.
func Parse(data []byte, format Format) ([]Row, error) {
	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatXLSX:
		return parseSpreadsheet(data)
	case FormatXLS:
		return parseLegacySpreadsheet(data)
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unsupported format %q", format)}
	}
}

func parseCSV(data []byte) ([]Row, error) {
	reader := bufio.NewReader(bytes.NewReader(data))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: "failed to read csv", Err: err}
	}

	return buildRows(records)
}

func parseSpreadsheet(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Reason: "failed to open spreadsheet", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "spreadsheet has no sheets"}
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Reason: "failed to read rows from spreadsheet", Err: err}
	}

	return buildRows(records)
}

// parseLegacySpreadsheet reads the BIFF container used by pre-2007 Excel.
// The OOXML path cannot open it, so .xls gets its own decoder.
func parseLegacySpreadsheet(data []byte) ([]Row, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &ParseError{Reason: "failed to open workbook", Err: err}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}

	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}

		// Columns start at index zero regardless of where the row's first
		// populated cell sits, keeping header alignment intact.
		record := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			record = append(record, row.Col(j))
		}
		records = append(records, record)
	}

	return buildRows(records)
}

func buildRows(records [][]string) ([]Row, error) {
	header, data := splitHeader(records)
	if header == nil {
		return nil, &ParseError{Reason: "no header row found"}
	}

	rows := make([]Row, 0, len(data))
	for _, record := range data {
		row := make(Row, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitHeader(records [][]string) ([]string, [][]string) {
	var header []string
	var data [][]string

	for _, record := range records {
		if isEmptyRecord(record) {
			continue
		}
		if header == nil {
			header = make([]string, len(record))
			for i, col := range record {
				header[i] = strings.TrimSpace(col)
			}
			continue
		}
		data = append(data, record)
	}

	return header, data
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

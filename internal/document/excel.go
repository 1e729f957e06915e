package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// columnDelimiter separates "column: value" pairs in a row record.
const columnDelimiter = " | "

// LoadExcel extracts one record per data row of the first sheet, in row
// order. The first row is the header; each record's text is the row
// rendered as "col: val | col: val" over every header column, with rows
// shorter than the header padded with empty values. Row positions are
// zero-based.
func LoadExcel(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open spreadsheet %s: %v", ErrExtraction, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet %s has no sheets", ErrExtraction, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read rows of %s: %v", ErrExtraction, path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		pairs := make([]string, len(header))
		for c, col := range header {
			val := ""
			if c < len(row) {
				val = row[c]
			}
			pairs[c] = col + ": " + val
		}
		records = append(records, Record{
			Text: strings.Join(pairs, columnDelimiter),
			Meta: Metadata{
				SourceFile: path,
				FileName:   filepath.Base(path),
				FileType:   FileTypeExcel,
				Position:   i,
			},
		})
	}

	return records, nil
}

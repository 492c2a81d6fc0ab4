package spreadsheet

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
)

// ReadWorkbook parses an uploaded xlsx file and keeps only the sheets the
// import contract knows about. Cells are read raw so date serials survive
// number formatting. Any failure to open the file is a *importsheet.FileError.
func ReadWorkbook(r io.Reader) (importsheet.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &importsheet.FileError{Cause: err}
	}
	defer f.Close()

	known := make(map[string]struct{}, len(importsheet.SheetOrder))
	for _, name := range importsheet.SheetOrder {
		known[name] = struct{}{}
	}

	wb := make(importsheet.Workbook, len(importsheet.SheetOrder))
	for _, name := range f.GetSheetList() {
		canonical := strings.TrimSpace(name)
		if _, ok := known[canonical]; !ok {
			continue
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &importsheet.FileError{Cause: err}
		}
		wb[canonical] = toSheet(canonical, rows)
	}
	return wb, nil
}

func toSheet(name string, rows [][]string) importsheet.Sheet {
	sheet := importsheet.Sheet{Name: name}
	if len(rows) == 0 {
		return sheet
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	sheet.Header = header

	sheet.Rows = make([]importsheet.Row, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		cells := make(map[string]string, len(header))
		for col, h := range header {
			if h == "" || col >= len(raw) {
				continue
			}
			cells[h] = raw[col]
		}
		sheet.Rows = append(sheet.Rows, importsheet.NewRow(name, i+importsheet.HeaderRow+1, cells))
	}
	return sheet
}

package spreadsheet

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
)

// WriteTemplate writes an empty workbook carrying every contract sheet with
// its required headers followed by the optional ones.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range importsheet.SheetOrder {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		header := append(append([]string{}, importsheet.RequiredColumns[name]...), importsheet.OptionalColumns[name]...)
		row := make([]any, len(header))
		for j, h := range header {
			row[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

package importsheet

import "strings"

// Row is one data row of a worksheet keyed by header label.
type Row struct {
	Sheet  string
	Number int
	cells  map[string]string
}

func NewRow(sheet string, number int, cells map[string]string) Row {
	return Row{Sheet: sheet, Number: number, cells: cells}
}

// Get returns the trimmed cell under header col, or "" when absent.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r.cells[col])
}

func (r Row) IsBlank() bool {
	for _, v := range r.cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type Sheet struct {
	Name   string
	Header []string
	Rows   []Row
}

// MissingColumns lists required headers the sheet does not carry.
func (s Sheet) MissingColumns() []string {
	present := make(map[string]struct{}, len(s.Header))
	for _, h := range s.Header {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, col := range RequiredColumns[s.Name] {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// DataRows returns the rows that carry at least one value.
func (s Sheet) DataRows() []Row {
	out := make([]Row, 0, len(s.Rows))
	for _, r := range s.Rows {
		if !r.IsBlank() {
			out = append(out, r)
		}
	}
	return out
}

// Workbook holds the recognized sheets of an uploaded file by name.
type Workbook map[string]Sheet

func (w Workbook) Sheet(name string) (Sheet, bool) {
	s, ok := w[name]
	return s, ok
}

package spreadsheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
)

func buildFile(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}

	buf := &bytes.Buffer{}
	_, err := f.WriteTo(buf)
	require.NoError(t, err)
	return buf
}

func TestReadWorkbook_KeepsKnownSheetsAndRowNumbers(t *testing.T) {
	buf := buildFile(t, map[string][][]any{
		importsheet.SheetPhysicalPersons: {
			{"BATIMENT", "NOM", "PRENOM", "DATE DEBUT FORMULE"},
			{"Nord", "Dupont", " Jean ", 45292},
			{},
			{"Sud", "Curie", "Marie", "2024-02-01"},
		},
		"Notes": {
			{"anything"},
		},
	})

	wb, err := ReadWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, wb, 1)

	sheet, ok := wb.Sheet(importsheet.SheetPhysicalPersons)
	require.True(t, ok)
	require.Equal(t, []string{"BATIMENT", "NOM", "PRENOM", "DATE DEBUT FORMULE"}, sheet.Header)

	rows := sheet.DataRows()
	require.Len(t, rows, 2)
	require.Equal(t, 2, rows[0].Number)
	require.Equal(t, "Jean", rows[0].Get("PRENOM"))
	require.Equal(t, "45292", rows[0].Get("DATE DEBUT FORMULE"))
	require.Equal(t, 4, rows[1].Number)
	require.Equal(t, "Curie", rows[1].Get("NOM"))
}

func TestReadWorkbook_EmptySheetHasNoHeader(t *testing.T) {
	buf := buildFile(t, map[string][][]any{
		importsheet.SheetRelations: nil,
	})

	wb, err := ReadWorkbook(buf)
	require.NoError(t, err)
	sheet, ok := wb.Sheet(importsheet.SheetRelations)
	require.True(t, ok)
	require.Empty(t, sheet.Header)
	require.Equal(t, importsheet.RequiredColumns[importsheet.SheetRelations], sheet.MissingColumns())
}

func TestReadWorkbook_CorruptFile(t *testing.T) {
	_, err := ReadWorkbook(strings.NewReader("not a zip archive"))
	require.Error(t, err)

	var fileErr *importsheet.FileError
	require.True(t, errors.As(err, &fileErr))
	require.True(t, strings.HasPrefix(err.Error(), importsheet.ErrorPrefix))
}

func TestWriteTemplate_RoundTripsThroughReader(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteTemplate(buf))

	wb, err := ReadWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, wb, len(importsheet.SheetOrder))
	for _, name := range importsheet.SheetOrder {
		sheet, ok := wb.Sheet(name)
		require.True(t, ok, name)
		require.Empty(t, sheet.MissingColumns(), name)
		require.Empty(t, sheet.DataRows(), name)
	}
}

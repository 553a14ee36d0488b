// Package spreadsheet reads uploaded workbooks into named sheets of
// position-addressed string rows.
package spreadsheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

// Sheet holds the raw rows of one sheet. Rows[0] is the header row.
type Sheet struct {
	Name string
	Rows [][]string
}

type Workbook struct {
	Sheets []Sheet
}

// Read parses the workbook in r, choosing the format by the extension of filename.
func Read(filename string, r io.ReadSeeker) (*Workbook, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	default:
		return nil, fmt.Errorf("%w: %q is not a valid extension", constants.ErrInvalidInput, ext)
	}
}

func readXLSX(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %v", constants.ErrInvalidInput, err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %q: %v", constants.ErrInvalidInput, name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}

	return wb, nil
}

func readXLS(r io.ReadSeeker) (*Workbook, error) {
	book, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open xls: %v", constants.ErrInvalidInput, err)
	}

	wb := &Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}

		sheet := Sheet{Name: ws.Name}
		for j := 0; j <= int(ws.MaxRow); j++ {
			row := ws.Row(j)
			if row == nil {
				sheet.Rows = append(sheet.Rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := range cells {
				cells[c] = row.Col(c)
			}
			sheet.Rows = append(sheet.Rows, cells)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

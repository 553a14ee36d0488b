package spreadsheet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

func buildXLSX(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatal(err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err = f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestReadXLSX(t *testing.T) {
	r := buildXLSX(t, map[string][][]any{
		"Chile": {
			{"PRE", "MODULO", "PARAMETRO", "DETALLE", "BAJO", "MEDIO", "ALTO"},
			{"", "OFICINA", "SEGURIDAD", "CAMARAS", 1, 2.5, 3},
			{"BASE", "GASTOS GENERALES"},
		},
		"Peru": {
			{"PRE"},
		},
	}, "Chile", "Peru")

	wb, err := Read("catalog.XLSX", r)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(wb.Sheets) != 2 || wb.Sheets[0].Name != "Chile" || wb.Sheets[1].Name != "Peru" {
		t.Fatalf("sheets = %+v", wb.Sheets)
	}

	df, err := wb.Sheets[0].Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if df.Nrow() != 2 || df.Ncol() != 7 {
		t.Fatalf("frame is %dx%d, want 2x7", df.Nrow(), df.Ncol())
	}

	tests := []struct {
		row, col int
		want     string
		ok       bool
	}{
		{0, constants.ColumnPre, "", false},
		{0, constants.ColumnModule, "OFICINA", true},
		{0, constants.ColumnMedium, "2.5", true},
		{1, constants.ColumnPre, "BASE", true},
		{1, constants.ColumnDetail, "", false},
		{1, constants.ColumnHigh, "", false},
		{5, 0, "", false},
	}
	for _, tt := range tests {
		got, ok := Text(df, tt.row, tt.col)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Text(%d, %d) = %q, %v; want %q, %v", tt.row, tt.col, got, ok, tt.want, tt.ok)
		}
	}

	empty, err := wb.Sheets[1].Frame()
	if err != nil {
		t.Fatalf("header-only Frame: %v", err)
	}
	if empty.Nrow() != 0 {
		t.Fatalf("header-only sheet has %d rows", empty.Nrow())
	}
}

func TestFrameNATokens(t *testing.T) {
	s := Sheet{Name: "x", Rows: [][]string{
		{"a", "b", "c"},
		{"NA", " #N/A ", "nan"},
		{"", "1"},
	}}

	df, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if !Blank(df, 0) {
		t.Error("row of NA tokens is not blank")
	}
	if Blank(df, 1) {
		t.Error("row with a value is blank")
	}
	if v, ok := Text(df, 1, 2); ok {
		t.Errorf("padded cell = %q, want missing", v)
	}
}

func TestReadRejectsUnknownExtension(t *testing.T) {
	_, err := Read("catalog.csv", bytes.NewReader(nil))
	if !errors.Is(err, constants.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestReadRejectsCorruptWorkbook(t *testing.T) {
	_, err := Read("catalog.xlsx", bytes.NewReader([]byte("not a zip")))
	if !errors.Is(err, constants.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

package spreadsheet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

// Frame loads the data rows (everything after the header) into a dataframe
// of string columns named col0, col1 ... by position. Ragged rows are padded
// to the widest row; NA tokens become NA elements.
func (s *Sheet) Frame() (dataframe.DataFrame, error) {
	width := 0
	for _, row := range s.Rows {
		width = max(width, len(row))
	}

	records := make([][]string, 0, max(len(s.Rows), 1))
	header := make([]string, width)
	for i := range header {
		header[i] = fmt.Sprintf("col%d", i)
	}
	records = append(records, header)

	for _, row := range s.Rows[min(1, len(s.Rows)):] {
		padded := make([]string, width)
		copy(padded, row)
		records = append(records, padded)
	}

	if width == 0 || len(records) == 1 {
		return dataframe.DataFrame{}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(constants.NATokens),
	)
	if err := df.Error(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load sheet %q: %w", s.Name, err)
	}

	return df, nil
}

// Text returns the trimmed cell at (row, col) and false when it is NA, blank
// or outside the frame.
func Text(df dataframe.DataFrame, row, col int) (string, bool) {
	if row < 0 || row >= df.Nrow() || col < 0 || col >= df.Ncol() {
		return "", false
	}

	e := df.Elem(row, col)
	if e.IsNA() {
		return "", false
	}

	v := strings.TrimSpace(e.String())
	if slices.Contains(constants.NATokens, v) {
		return "", false
	}
	return v, true
}

// Blank reports whether every cell of the row is NA or blank.
func Blank(df dataframe.DataFrame, row int) bool {
	for col := 0; col < df.Ncol(); col++ {
		if _, ok := Text(df, row, col); ok {
			return false
		}
	}
	return true
}

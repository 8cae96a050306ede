package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSX reads an Excel export. RawCellValue mode surfaces date cells as
// their day-count serials, which is exactly what the date resolver
// expects. Empty Sheet means the workbook's first sheet.
type XLSX struct {
	Path  string
	Sheet string
}

func (s *XLSX) Fingerprint() (string, error) {
	return fileFingerprint(s.Path)
}

func (s *XLSX) Load(_ context.Context) (*Table, error) {
	f, err := excelize.OpenFile(s.Path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	tab := &Table{Columns: header}
	for _, cells := range rows[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		tab.Rows = append(tab.Rows, row)
	}
	return tab, nil
}

// Package export writes statistics tables to xlsx and csv files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/xolan/worklog/internal/stats"
)

// SheetName is the worksheet holding the statistics table.
const SheetName = "工作统计"

// Header is the first row of every export.
var Header = []string{"工作类别", "次数", "归档统计"}

var columnWidths = map[string]float64{"A": 20, "B": 10, "C": 25}

// WriteStatsXLSX saves rows as a single-sheet workbook at path.
func WriteStatsXLSX(path string, rows []stats.Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	for col, title := range Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(SheetName, cell, title); err != nil {
			return fmt.Errorf("export: write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []any{row.Category, row.Count, row.Archive}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("export: write %s: %w", cell, err)
			}
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("export: set width of %s: %w", col, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

// WriteStatsCSV writes rows as CSV with a UTF-8 byte-order mark, so that
// spreadsheet programs detect the encoding of the category names.
func WriteStatsCSV(w io.Writer, rows []stats.Row) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Category, strconv.Itoa(row.Count), row.Archive}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Close()
}

package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is sent with workbook exports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName is the single sheet of the exported workbook.
const SheetName = "Inventory"

// XLSX renders rows into a single-sheet workbook. Prices and stock are
// written as numbers, everything else as text.
func XLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	for col, h := range Header {
		if err := setCell(f, col, 1, h); err != nil {
			return nil, err
		}
	}

	for i, r := range rows {
		buying, _ := r.BuyingPrice.Round(2).Float64()
		selling, _ := r.SellingPrice.Round(2).Float64()
		values := []any{
			r.Type,
			r.Name,
			r.Category,
			r.Code,
			buying,
			selling,
			r.Stock,
			HumanizeStatus(r.Status),
			r.CreatedAt.Format(DateLayout),
		}
		for col, v := range values {
			if err := setCell(f, col, i+2, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("setting %s: %w", cell, err)
	}
	return nil
}

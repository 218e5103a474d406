package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Transactions"

// WriteWorkbook writes rows to an .xlsx workbook with the same columns as the
// CSV schema. Amounts are written as numbers so spreadsheet tools can sum the
// column directly.
func WriteWorkbook(dest string, rows []*Row) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{"date", "description", "amount", "category"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.Date.Format("2006-01-02"),
			row.Description,
			row.Amount.Decimal().InexactFloat64(),
			row.Category,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(dest); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

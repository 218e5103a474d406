// Package export serializes transaction records to CSV and Excel. Writes are
// atomic: content goes to a temporary file that is renamed into place on
// success, so an aborted run never leaves a half-written artifact behind.
package export

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/statement-extract/internal/domain/statement"
	"github.com/FACorreiaa/statement-extract/pkg/money"
)

// ISODate marshals a calendar date as ISO 8601 (2006-01-02) in CSV files.
type ISODate struct {
	time.Time
}

// MarshalCSV implements gocsv marshaling.
func (d ISODate) MarshalCSV() (string, error) {
	return d.Format("2006-01-02"), nil
}

// UnmarshalCSV implements gocsv unmarshaling.
func (d *ISODate) UnmarshalCSV(s string) error {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Row is one CSV record in the output schema. Column order follows the field
// order here: date, description, amount, category.
type Row struct {
	Date        ISODate      `csv:"date"`
	Description string       `csv:"description"`
	Amount      money.Amount `csv:"amount"`
	Category    string       `csv:"category"`
}

// RowsFromTransactions converts classified transactions to CSV rows,
// preserving document order.
func RowsFromTransactions(txs []statement.Transaction) []*Row {
	rows := make([]*Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, &Row{
			Date:        ISODate{tx.Date},
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    tx.Category,
		})
	}
	return rows
}

// WriteCSV writes rows to dest via a temporary file and rename.
func WriteCSV(dest string, rows []*Row) error {
	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// ReadCSV reads a file in the output schema.
func ReadCSV(path string) ([]*Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var rows []*Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

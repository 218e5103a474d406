// Package combine merges per-statement CSV extracts into one chronologically
// ordered dataset.
package combine

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FACorreiaa/statement-extract/internal/domain/export"
)

// Result reports what the combiner did with a directory tree.
type Result struct {
	FilesRead    int
	FilesSkipped int
	Rows         int
	Warnings     []string
}

// Combiner reads every CSV under a root directory, concatenates the rows,
// sorts them by date, and writes a single combined file. Files that fail to
// parse are skipped with a warning, never fatal to the batch.
type Combiner struct {
	logger *slog.Logger
}

// New creates a combiner.
func New(logger *slog.Logger) *Combiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Combiner{logger: logger}
}

// sourceRow keeps provenance alongside each row so the sort can break date
// ties on (source path, original row index), preserving within-statement
// order.
type sourceRow struct {
	row   *export.Row
	path  string
	index int
}

// Combine discovers CSVs under root recursively and writes the merged,
// date-sorted output to dest. A destination ending in .xlsx produces an Excel
// workbook instead of CSV. If dest already exists it is silently overwritten;
// this matches documented behavior and is surfaced only as a warning.
func (c *Combiner) Combine(root, dest string) (*Result, error) {
	paths, err := discover(root, dest)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var rows []sourceRow
	for _, path := range paths {
		fileRows, err := export.ReadCSV(path)
		if err != nil {
			msg := fmt.Sprintf("skipping unparseable file %s: %v", path, err)
			c.logger.Warn("skipping unparseable file", "path", path, "error", err)
			res.Warnings = append(res.Warnings, msg)
			res.FilesSkipped++
			continue
		}
		for i, row := range fileRows {
			rows = append(rows, sourceRow{row: row, path: path, index: i})
		}
		res.FilesRead++
	}

	// Equal dates break ties on (source path, original row index) so the
	// combined output is deterministic regardless of read order.
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.row.Date.Equal(b.row.Date.Time) {
			return a.row.Date.Before(b.row.Date.Time)
		}
		if a.path != b.path {
			return a.path < b.path
		}
		return a.index < b.index
	})

	if _, err := os.Stat(dest); err == nil {
		c.logger.Warn("destination exists, overwriting", "path", dest)
		res.Warnings = append(res.Warnings, fmt.Sprintf("destination %s overwritten", dest))
	}

	out := make([]*export.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.row)
	}
	res.Rows = len(out)

	if strings.EqualFold(filepath.Ext(dest), ".xlsx") {
		if err := export.WriteWorkbook(dest, out); err != nil {
			return nil, err
		}
		return res, nil
	}
	if err := export.WriteCSV(dest, out); err != nil {
		return nil, err
	}
	return res, nil
}

// discover lists CSV files under root in deterministic (sorted) order,
// excluding the destination itself when it lives inside the tree.
func discover(root, dest string) ([]string, error) {
	absDest, _ := filepath.Abs(dest)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".csv") {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absDest {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

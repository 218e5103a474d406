// Package runner drives the extraction pipeline across one or more PDF
// statements, fanning documents out to a worker pool and collecting a
// per-document accounting for the final summary.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"log/slog"

	"github.com/google/uuid"

	"github.com/FACorreiaa/statement-extract/internal/domain/export"
	"github.com/FACorreiaa/statement-extract/internal/domain/layout"
	"github.com/FACorreiaa/statement-extract/internal/domain/statement"
)

// DocumentResult is the outcome of extracting a single statement.
type DocumentResult struct {
	Path      string
	OutPath   string
	Extracted int
	Dropped   int
	Err       error
}

// Summary is the end-of-run accounting across all documents.
type Summary struct {
	RunID     string
	Documents []DocumentResult
}

// Extracted returns the total transaction count across all documents.
func (s *Summary) Extracted() int {
	n := 0
	for _, d := range s.Documents {
		n += d.Extracted
	}
	return n
}

// Failed returns the documents that produced an error.
func (s *Summary) Failed() []DocumentResult {
	var out []DocumentResult
	for _, d := range s.Documents {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}

// extractFunc extracts one document. Swappable in tests.
type extractFunc func(ctx context.Context, path, outPath string) (*statement.Result, error)

// Runner coordinates extraction of statement PDFs.
type Runner struct {
	rules   *layout.Rules
	logger  *slog.Logger
	extract extractFunc
}

// New creates a runner using the given layout rules. A nil rules falls back
// to the built-in rule set.
func New(rules *layout.Rules, logger *slog.Logger) *Runner {
	if rules == nil {
		rules = layout.DefaultRules()
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{rules: rules, logger: logger}
	r.extract = r.extractOne
	return r
}

// OutputPath returns the destination CSV for a statement: the source path
// with its extension replaced by .csv, in the same directory.
func OutputPath(pdfPath string) string {
	ext := filepath.Ext(pdfPath)
	return strings.TrimSuffix(pdfPath, ext) + ".csv"
}

// Run extracts every listed document, writing one CSV beside each source (or
// to outPath when a single document and an explicit destination are given).
// Documents are processed concurrently; per-document failures are recorded in
// the summary rather than aborting the batch.
func (r *Runner) Run(ctx context.Context, paths []string, outPath string) (*Summary, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input documents")
	}
	if outPath != "" && len(paths) > 1 {
		return nil, fmt.Errorf("explicit output path requires a single input document")
	}

	sum := &Summary{RunID: uuid.NewString()}
	r.logger.Info("starting extraction run", "run_id", sum.RunID, "documents", len(paths))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan DocumentResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- r.runOne(ctx, path, outPath)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	for res := range results {
		sum.Documents = append(sum.Documents, res)
	}
	// Workers complete out of order; keep the summary in input order.
	order := make(map[string]int, len(paths))
	for i, p := range paths {
		order[p] = i
	}
	sort.SliceStable(sum.Documents, func(i, j int) bool {
		return order[sum.Documents[i].Path] < order[sum.Documents[j].Path]
	})

	for _, d := range sum.Documents {
		if d.Err != nil {
			r.logger.Error("document failed", "run_id", sum.RunID, "path", d.Path, "error", d.Err)
			continue
		}
		r.logger.Info("document extracted",
			"run_id", sum.RunID,
			"path", d.Path,
			"out", d.OutPath,
			"transactions", d.Extracted,
			"dropped", d.Dropped,
		)
	}
	return sum, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, path, outPath string) DocumentResult {
	if err := ctx.Err(); err != nil {
		return DocumentResult{Path: path, Err: err}
	}

	dest := outPath
	if dest == "" {
		dest = OutputPath(path)
	}
	if _, err := os.Stat(dest); err == nil {
		r.logger.Warn("destination exists, overwriting", "path", dest)
	}

	res, err := r.extract(ctx, path, dest)
	if err != nil {
		return DocumentResult{Path: path, OutPath: dest, Err: err}
	}
	return DocumentResult{
		Path:      path,
		OutPath:   dest,
		Extracted: len(res.Transactions),
		Dropped:   len(res.Dropped),
	}
}

// extractOne runs the full pipeline for one document: layout read, parse,
// classify, write.
func (r *Runner) extractOne(ctx context.Context, path, outPath string) (*statement.Result, error) {
	pages, err := layout.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := statement.NewParser(r.rules, r.logger)
	sctx, lines, err := parser.Parse(pages)
	if err != nil {
		return nil, err
	}

	res := statement.NewClassifier(r.rules).Classify(lines, sctx)
	for _, drop := range res.Dropped {
		r.logger.Warn("dropped line", "path", path, "page", drop.Page, "line", drop.Line, "error", drop.Err)
	}
	if len(res.Transactions) == 0 {
		return res, fmt.Errorf("no transactions recognized in %s", path)
	}

	if err := export.WriteCSV(outPath, export.RowsFromTransactions(res.Transactions)); err != nil {
		return nil, err
	}
	return res, nil
}

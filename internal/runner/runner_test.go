package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extract/internal/domain/statement"
	"github.com/FACorreiaa/statement-extract/pkg/money"
)

func stubResult(n int) *statement.Result {
	res := &statement.Result{LinesTotal: n}
	for i := 0; i < n; i++ {
		res.Transactions = append(res.Transactions, statement.Transaction{
			Date:        time.Date(2023, time.December, 20, 0, 0, 0, 0, time.UTC),
			Description: "STUB",
			Amount:      money.FromCents(-450),
			Category:    "Purchases",
		})
	}
	return res
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "statement.csv", OutputPath("statement.pdf"))
	assert.Equal(t, filepath.Join("a", "b", "jan.csv"), OutputPath(filepath.Join("a", "b", "jan.pdf")))
	assert.Equal(t, "noext.csv", OutputPath("noext"))
}

func TestRunner_Run(t *testing.T) {
	t.Run("processes every document and reports totals", func(t *testing.T) {
		r := New(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		r.extract = func(ctx context.Context, path, outPath string) (*statement.Result, error) {
			return stubResult(3), nil
		}

		sum, err := r.Run(context.Background(), []string{"a.pdf", "b.pdf", "c.pdf"}, "")
		require.NoError(t, err)
		assert.NotEmpty(t, sum.RunID)
		require.Len(t, sum.Documents, 3)
		assert.Equal(t, 9, sum.Extracted())
		assert.Empty(t, sum.Failed())
	})

	t.Run("keeps documents in input order", func(t *testing.T) {
		r := New(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		r.extract = func(ctx context.Context, path, outPath string) (*statement.Result, error) {
			if path == "first.pdf" {
				time.Sleep(20 * time.Millisecond)
			}
			return stubResult(1), nil
		}

		sum, err := r.Run(context.Background(), []string{"first.pdf", "second.pdf"}, "")
		require.NoError(t, err)
		require.Len(t, sum.Documents, 2)
		assert.Equal(t, "first.pdf", sum.Documents[0].Path)
		assert.Equal(t, "second.pdf", sum.Documents[1].Path)
	})

	t.Run("records per-document failures without aborting the batch", func(t *testing.T) {
		r := New(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		r.extract = func(ctx context.Context, path, outPath string) (*statement.Result, error) {
			if path == "bad.pdf" {
				return nil, fmt.Errorf("no transactions recognized in %s", path)
			}
			return stubResult(2), nil
		}

		sum, err := r.Run(context.Background(), []string{"good.pdf", "bad.pdf"}, "")
		require.NoError(t, err)
		require.Len(t, sum.Documents, 2)
		assert.Equal(t, 2, sum.Extracted())

		failed := sum.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, "bad.pdf", failed[0].Path)
		assert.ErrorContains(t, failed[0].Err, "no transactions")
	})

	t.Run("derives the output path from the source by default", func(t *testing.T) {
		var got string
		r := New(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		r.extract = func(ctx context.Context, path, outPath string) (*statement.Result, error) {
			got = outPath
			return stubResult(1), nil
		}

		sum, err := r.Run(context.Background(), []string{filepath.Join("dir", "jan.pdf")}, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("dir", "jan.csv"), got)
		assert.Equal(t, filepath.Join("dir", "jan.csv"), sum.Documents[0].OutPath)
	})

	t.Run("honors an explicit output path for a single document", func(t *testing.T) {
		var got string
		r := New(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		r.extract = func(ctx context.Context, path, outPath string) (*statement.Result, error) {
			got = outPath
			return stubResult(1), nil
		}

		_, err := r.Run(context.Background(), []string{"jan.pdf"}, "custom.csv")
		require.NoError(t, err)
		assert.Equal(t, "custom.csv", got)
	})

	t.Run("rejects an explicit output path with multiple documents", func(t *testing.T) {
		r := New(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		_, err := r.Run(context.Background(), []string{"a.pdf", "b.pdf"}, "out.csv")
		assert.Error(t, err)
	})

	t.Run("rejects an empty document list", func(t *testing.T) {
		r := New(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		_, err := r.Run(context.Background(), nil, "")
		assert.Error(t, err)
	})

	t.Run("warns when the destination already exists", func(t *testing.T) {
		var buf bytes.Buffer
		dir := t.TempDir()
		src := filepath.Join(dir, "jan.pdf")
		dest := filepath.Join(dir, "jan.csv")
		require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

		r := New(nil, slog.New(slog.NewTextHandler(&buf, nil)))
		r.extract = func(ctx context.Context, path, outPath string) (*statement.Result, error) {
			return stubResult(1), nil
		}

		_, err := r.Run(context.Background(), []string{src}, "")
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "destination exists")
	})
}

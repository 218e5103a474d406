// Command stmt2csv extracts transaction records from PDF bank statements into
// CSV files, and merges per-statement CSVs into one date-sorted dataset.
//
// Usage:
//
//	stmt2csv extract [-o out.csv] [-rules rules.yaml] statement.pdf [more.pdf ...]
//	stmt2csv combine [-o combined.csv] dir
//
// Exit codes: 0 on success, 1 when extraction yields no transactions or an
// input cannot be processed, 2 on usage errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/statement-extract/internal/domain/combine"
	"github.com/FACorreiaa/statement-extract/internal/domain/layout"
	"github.com/FACorreiaa/statement-extract/internal/runner"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(args) == 0 {
		usage()
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "extract":
		return runExtract(ctx, args[1:], logger)
	case "combine":
		return runCombine(args[1:], logger)
	case "-h", "--help", "help":
		usage()
		return exitOK
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		usage()
		return exitUsage
	}
}

func runExtract(ctx context.Context, args []string, logger *slog.Logger) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	out := fs.String("o", "", "output CSV path (single input only; default: input path with .csv extension)")
	rulesPath := fs.String("rules", "", "layout rules YAML file (default: built-in rules)")
	ruleSet := fs.String("ruleset", "", "rule set name to use from the rules file (default: the only set)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "extract: at least one PDF path is required")
		return exitUsage
	}

	rules := layout.DefaultRules()
	if *rulesPath != "" {
		sets, err := layout.LoadFile(*rulesPath)
		if err != nil {
			logger.Error("failed to load rules", "path", *rulesPath, "error", err)
			return exitError
		}
		rules, err = pickRuleSet(sets, *ruleSet)
		if err != nil {
			logger.Error("failed to select rule set", "path", *rulesPath, "error", err)
			return exitError
		}
	}

	sum, err := runner.New(rules, logger).Run(ctx, fs.Args(), *out)
	if err != nil {
		logger.Error("extraction run failed", "error", err)
		return exitError
	}

	logger.Info("run complete",
		"run_id", sum.RunID,
		"documents", len(sum.Documents),
		"transactions", sum.Extracted(),
		"failed", len(sum.Failed()),
	)
	if len(sum.Failed()) > 0 || sum.Extracted() == 0 {
		return exitError
	}
	return exitOK
}

func runCombine(args []string, logger *slog.Logger) int {
	fs := flag.NewFlagSet("combine", flag.ContinueOnError)
	out := fs.String("o", "combined.csv", "output path (.csv or .xlsx)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "combine: exactly one directory is required")
		return exitUsage
	}

	res, err := combine.New(logger).Combine(fs.Arg(0), *out)
	if err != nil {
		logger.Error("combine failed", "error", err)
		return exitError
	}
	logger.Info("combine complete",
		"files", res.FilesRead,
		"skipped", res.FilesSkipped,
		"rows", res.Rows,
		"out", *out,
	)
	return exitOK
}

func pickRuleSet(sets map[string]*layout.Rules, name string) (*layout.Rules, error) {
	if name != "" {
		r, ok := sets[name]
		if !ok {
			return nil, fmt.Errorf("rule set %q not found", name)
		}
		return r, nil
	}
	if len(sets) == 1 {
		for _, r := range sets {
			return r, nil
		}
	}
	return nil, fmt.Errorf("rules file defines %d rule sets, pick one with -ruleset", len(sets))
}

func usage() {
	fmt.Fprint(os.Stderr, `stmt2csv - extract transactions from PDF bank statements

Commands:
  extract [-o out.csv] [-rules rules.yaml] statement.pdf [more.pdf ...]
  combine [-o combined.csv] dir
`)
}

// Package engine wires the lint pipeline: scan, extract, evaluate, report.
// It owns the worker pool and the logging of recoverable per-file problems.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/namelint/pkg/extract"
	"github.com/leapstack-labs/namelint/pkg/lint"
	"github.com/leapstack-labs/namelint/pkg/report"
	"github.com/leapstack-labs/namelint/pkg/scan"
)

// Engine lints one source tree against one registry.
type Engine struct {
	registry  *lint.Registry
	scanner   *scan.Scanner
	extractor *extract.Extractor
	jobs      int
	logger    *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Root is the directory to lint
	Root string
	// Scan controls file discovery
	Scan scan.Options
	// Extract controls symbol extraction
	Extract extract.Options
	// Jobs bounds the worker pool (default: runtime.NumCPU())
	Jobs int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine. The registry must already be loaded: a
// configuration error never reaches this point.
func New(reg *lint.Registry, cfg Config) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("engine: nil registry")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	scanner, err := scan.New(cfg.Root, cfg.Scan)
	if err != nil {
		return nil, err
	}

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	logger.Debug("initializing engine", "root", scanner.Root(), "rules", reg.Len(), "jobs", jobs)

	return &Engine{
		registry:  reg,
		scanner:   scanner,
		extractor: extract.New(cfg.Extract),
		jobs:      jobs,
		logger:    logger,
	}, nil
}

// Root returns the directory being linted.
func (e *Engine) Root() string { return e.scanner.Root() }

// Registry returns the rules the engine evaluates.
func (e *Engine) Registry() *lint.Registry { return e.registry }

// Stats describes one lint run.
type Stats struct {
	Files        int           `json:"files"`         // files extracted and evaluated
	Symbols      int           `json:"symbols"`       // symbols checked
	Violations   int           `json:"violations"`    // violations reported
	ScanWarnings int           `json:"scan_warnings"` // unreadable paths skipped
	ParseErrors  int           `json:"parse_errors"`  // files that failed to parse
	RuleErrors   int           `json:"rule_errors"`   // rule checks that failed at runtime
	Duration     time.Duration `json:"duration"`
}

// Run lints the tree once and adds every violation to rep.
func (e *Engine) Run(ctx context.Context, rep *report.Reporter) (Stats, error) {
	start := time.Now()

	files, stats, err := e.extractAll(ctx)
	if err != nil {
		return stats, err
	}

	result, err := lint.EvaluateFiles(ctx, e.registry, files, e.jobs)
	if err != nil {
		return stats, err
	}
	for _, rerr := range result.Errors {
		e.logger.Warn("rule evaluation failed",
			"rule", rerr.RuleID,
			"path", rerr.Symbol.Pos.File,
			"line", rerr.Symbol.Pos.Line,
			"symbol", rerr.Symbol.Name,
			"error", rerr.Err,
		)
	}
	rep.Add(result.Violations...)

	stats.Violations = len(result.Violations)
	stats.RuleErrors = len(result.Errors)
	stats.Duration = time.Since(start)
	e.logger.Info("lint run complete",
		"files", stats.Files,
		"symbols", stats.Symbols,
		"violations", stats.Violations,
		"scan_warnings", stats.ScanWarnings,
		"parse_errors", stats.ParseErrors,
		"rule_errors", stats.RuleErrors,
		"duration", stats.Duration,
	)
	return stats, nil
}

// extractAll scans sequentially and extracts on the worker pool. Each file
// gets its own result slot, so results keep scan order without locking.
func (e *Engine) extractAll(ctx context.Context) ([]lint.FileSymbols, Stats, error) {
	var (
		stats       Stats
		parseErrors atomic.Int64
		readErrors  atomic.Int64
		slots       []*lint.FileSymbols
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.jobs)

	for f, err := range e.scanner.Files() {
		if gctx.Err() != nil {
			break
		}
		if err != nil {
			var warn *scan.ScanWarning
			if !errors.As(err, &warn) {
				_ = g.Wait()
				return nil, stats, err
			}
			e.logger.Warn("skipping path", "path", warn.Path, "error", warn.Err)
			stats.ScanWarnings++
			continue
		}

		slot := &lint.FileSymbols{File: f.RelPath, Kind: f.Kind}
		slots = append(slots, slot)
		g.Go(func() error {
			return e.extractFile(gctx, f, slot, &parseErrors, &readErrors)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	stats.ParseErrors = int(parseErrors.Load())
	stats.ScanWarnings += int(readErrors.Load())

	files := make([]lint.FileSymbols, 0, len(slots))
	for _, slot := range slots {
		if slot.Symbols == nil {
			continue
		}
		files = append(files, *slot)
		stats.Symbols += len(slot.Symbols)
	}
	stats.Files = len(files)
	return files, stats, nil
}

func (e *Engine) extractFile(ctx context.Context, f scan.File, slot *lint.FileSymbols, parseErrors, readErrors *atomic.Int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := f.Read()
	if err != nil {
		e.logger.Warn("skipping unreadable file", "path", f.RelPath, "error", err)
		readErrors.Add(1)
		return nil
	}

	symbols, err := e.extractor.Extract(f, content)
	if err != nil {
		var perr *extract.ParseError
		if !errors.As(err, &perr) {
			return fmt.Errorf("extract %s: %w", f.RelPath, err)
		}
		e.logger.Warn("skipping file", "path", f.RelPath, "error", perr)
		parseErrors.Add(1)
		return nil
	}

	e.logger.Debug("extracted", "path", f.RelPath, "symbols", len(symbols))
	slot.Symbols = symbols
	return nil
}

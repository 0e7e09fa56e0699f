package lint

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Evaluate applies every applicable rule in reg to every symbol in files.
// It is a pure function of its inputs. Rules that fail at runtime land in
// Result.Errors and never produce a violation.
func Evaluate(reg *Registry, files []FileSymbols) Result {
	env := &matchEnv{layout: NewLayoutIndex(files)}

	var out Result
	for _, f := range files {
		out.merge(evaluateFile(reg, env, f))
	}
	out.sort()
	return out
}

// EvaluateFiles is Evaluate on a bounded worker pool. Each worker writes its own
// result slot; slots are merged and sorted once all workers finish, so the
// output equals Evaluate(reg, files).
func EvaluateFiles(ctx context.Context, reg *Registry, files []FileSymbols, workers int) (Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	env := &matchEnv{layout: NewLayoutIndex(files)}
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateFile(reg, env, files[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var out Result
	for _, r := range results {
		out.merge(r)
	}
	out.sort()
	return out, nil
}

func evaluateFile(reg *Registry, env *matchEnv, f FileSymbols) Result {
	var out Result
	for _, sym := range f.Symbols {
		for _, rule := range reg.byKind[sym.Kind] {
			if !rule.AppliesTo(f.File, f.Kind) {
				continue
			}
			v, ok, rerr := rule.check(sym, env)
			if rerr != nil {
				out.Errors = append(out.Errors, rerr)
				continue
			}
			if ok {
				out.Violations = append(out.Violations, v)
			}
		}
	}
	return out
}

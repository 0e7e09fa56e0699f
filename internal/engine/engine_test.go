package engine_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/namelint/internal/catalog"
	"github.com/leapstack-labs/namelint/internal/engine"
	"github.com/leapstack-labs/namelint/internal/testutil"
	"github.com/leapstack-labs/namelint/pkg/extract"
	"github.com/leapstack-labs/namelint/pkg/lint"
	"github.com/leapstack-labs/namelint/pkg/report"
	"github.com/leapstack-labs/namelint/pkg/scan"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const project = `
-- src/app.js --
const first_name = "Luke";
const firstName = "Lucrecio";
-- src/components/Card.jsx --
export const Card = () => <div className="card__title" />;
-- src/styles/card.css --
.card {}
.cardTitle {}
-- src/broken.js --
const a = "oops
-- node_modules/lib/index.js --
var bad_name = 1;
`

func defaultRegistry(t *testing.T) *lint.Registry {
	t.Helper()
	defs, err := catalog.Definitions()
	require.NoError(t, err)
	reg, err := lint.LoadRegistry(defs, lint.NewConfig())
	require.NoError(t, err)
	return reg
}

func newEngine(t *testing.T, root string) *engine.Engine {
	t.Helper()
	eng, err := engine.New(defaultRegistry(t), engine.Config{
		Root:    root,
		Scan:    scan.DefaultOptions(),
		Extract: extract.DefaultOptions(),
		Jobs:    4,
		Logger:  testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return eng
}

func locations(rep *report.Reporter) []string {
	var out []string
	for _, v := range rep.Violations() {
		out = append(out, v.Pos().String()+" "+v.RuleID)
	}
	return out
}

func TestEngine_Run(t *testing.T) {
	root := testutil.WriteTree(t, project)
	eng := newEngine(t, root)

	rep := report.New()
	stats, err := eng.Run(context.Background(), rep)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/app.js:1:7 variable-camel-case",
		"src/styles/card.css:2:2 selector-bem",
	}, locations(rep))
	assert.Equal(t, 1, rep.ExitStatus())

	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 8, stats.Symbols)
	assert.Equal(t, 2, stats.Violations)
	assert.Equal(t, 1, stats.ParseErrors)
	assert.Equal(t, 0, stats.ScanWarnings)
}

func TestEngine_Suggestion(t *testing.T) {
	root := testutil.WriteTree(t, "-- app.js --\nconst first_name = \"Luke\";\n")
	eng := newEngine(t, root)

	rep := report.New()
	_, err := eng.Run(context.Background(), rep)
	require.NoError(t, err)

	vs := rep.Violations()
	require.Len(t, vs, 1)
	assert.Equal(t, "variable-camel-case", vs[0].RuleID)
	assert.Equal(t, "firstName", vs[0].Suggestion)
}

func TestEngine_Deterministic(t *testing.T) {
	root := testutil.WriteTree(t, project)
	eng := newEngine(t, root)

	first, second := report.New(), report.New()
	_, err := eng.Run(context.Background(), first)
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), second)
	require.NoError(t, err)

	if diff := cmp.Diff(report.Entries(first.Violations()), report.Entries(second.Violations())); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestEngine_ReportFollowsScanOrder(t *testing.T) {
	root := testutil.WriteTree(t, `
-- a/b.js --
const first_name = 1;
-- a-b.js --
const last_name = 2;
`)
	eng := newEngine(t, root)

	scanner, err := scan.New(root, scan.DefaultOptions())
	require.NoError(t, err)
	var scanned []string
	for f, err := range scanner.Files() {
		require.NoError(t, err)
		scanned = append(scanned, f.RelPath)
	}
	require.Equal(t, []string{"a/b.js", "a-b.js"}, scanned)

	rep := report.New()
	_, err = eng.Run(context.Background(), rep)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a/b.js:1:7 variable-camel-case",
		"a-b.js:1:7 variable-camel-case",
	}, locations(rep))
}

func TestEngine_RuleErrorIsNotAViolation(t *testing.T) {
	root := testutil.WriteTree(t, "-- app.js --\nconst ab = 1;\n")
	reg, err := lint.LoadRegistry(map[string]map[string]any{
		"sixth-char": {"target_kind": "variable", "predicate": `name[5] != "x"`},
	}, lint.NewConfig())
	require.NoError(t, err)

	var logs bytes.Buffer
	eng, err := engine.New(reg, engine.Config{
		Root:    root,
		Scan:    scan.DefaultOptions(),
		Extract: extract.DefaultOptions(),
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)

	rep := report.New()
	stats, err := eng.Run(context.Background(), rep)
	require.NoError(t, err)

	assert.Empty(t, rep.Violations())
	assert.Equal(t, 0, rep.ExitStatus())
	assert.Equal(t, 1, stats.RuleErrors)
	assert.Equal(t, 0, stats.Violations)
	assert.Contains(t, logs.String(), `level=WARN msg="rule evaluation failed" rule=sixth-char path=app.js line=1 symbol=ab`)
}

func TestEngine_EmptyDir(t *testing.T) {
	eng := newEngine(t, t.TempDir())

	rep := report.New()
	stats, err := eng.Run(context.Background(), rep)
	require.NoError(t, err)
	assert.Empty(t, rep.Violations())
	assert.Equal(t, 0, rep.ExitStatus())
	assert.Equal(t, 0, stats.Files)
}

func TestEngine_Canceled(t *testing.T) {
	root := testutil.WriteTree(t, project)
	eng := newEngine(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Run(ctx, report.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_UnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	root := testutil.WriteTree(t, project)
	locked := filepath.Join(root, "src", "app.js")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o600) })

	stats, err := newEngine(t, root).Run(context.Background(), report.New())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ScanWarnings)
	assert.Equal(t, 2, stats.Files)
}

func TestNew_Errors(t *testing.T) {
	_, err := engine.New(nil, engine.Config{Root: t.TempDir()})
	assert.ErrorContains(t, err, "nil registry")

	_, err = engine.New(defaultRegistry(t), engine.Config{Root: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestEngine_Watch(t *testing.T) {
	root := testutil.WriteTree(t, project)
	eng := newEngine(t, root)

	type result struct {
		locations []string
		err       error
	}
	results := make(chan result, 16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- eng.Watch(ctx, 20*time.Millisecond, nil, func(rep *report.Reporter, _ engine.Stats, err error) {
			results <- result{locations(rep), err}
		})
	}()

	await := func(want int) []string {
		t.Helper()
		deadline := time.After(10 * time.Second)
		for {
			select {
			case r := <-results:
				require.NoError(t, r.err)
				if len(r.locations) == want {
					return r.locations
				}
			case <-deadline:
				t.Fatalf("no run with %d violations", want)
			}
		}
	}

	assert.Len(t, await(2), 2)

	testutil.WriteTreeAt(t, root, "-- src/lib/new_util.js --\nlet bad_name = 1;\n")
	assert.Equal(t, []string{
		"src/app.js:1:7 variable-camel-case",
		"src/lib/new_util.js:1:1 file-name-case",
		"src/lib/new_util.js:1:5 variable-camel-case",
		"src/styles/card.css:2:2 selector-bem",
	}, await(4))

	require.NoError(t, os.Remove(filepath.Join(root, "src", "app.js")))
	assert.Len(t, await(3), 3)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

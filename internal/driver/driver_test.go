package driver

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/jsvensson/tokentest/internal/config"
	"github.com/jsvensson/tokentest/internal/generate"
	"github.com/jsvensson/tokentest/internal/tokens"
)

const tokensJSON = `{
  "hands-on-design": {
    "type": "FRAME",
    "visuals": {"backgroundColor": {"r": 1, "g": 1, "b": 1}}
  },
  "hands-on-design/nav": {
    "type": "FRAME",
    "layout": {"layoutMode": "HORIZONTAL", "itemSpacing": 8},
    "visuals": {"backgroundColor": {"r": 0, "g": 0, "b": 0}}
  },
  "hands-on-design/hero": {
    "type": "FRAME",
    "layout": {"layoutMode": "VERTICAL", "layoutSizingHorizontal": "FILL"}
  },
  "hands-on-design/hero/title": {
    "type": "TEXT"
  }
}`

func newProject(t *testing.T, files map[string]string) (afero.Fs, *config.Config) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, "/project/"+name, []byte(content), 0o644))
	}
	cfg := config.Default()
	cfg.Dir = "/project"
	cfg.Include = []string{"**/*.tokens.json"}
	cfg.OutDir = "out"
	return fs, cfg
}

func TestRun(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{"design/app.tokens.json": tokensJSON})
	metrics := NewMetrics()
	d := &Driver{FS: fs, Config: cfg, Metrics: metrics}

	report, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/project/design/app.tokens.json"}, report.Documents)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "hands-on-design", report.Results[0].Key)
	assert.True(t, report.Results[0].Root)
	assert.Equal(t, "hands-on-design/nav", report.Results[1].Key)
	assert.Equal(t, "hands-on-design/hero", report.Results[2].Key)
	assert.Equal(t, 3, report.Count(Written))

	root, err := afero.ReadFile(fs, "/project/out/hands-on-design.test.js")
	require.NoError(t, err)
	assert.Contains(t, string(root), "import HandsOnDesign from './HandsOnDesign';")
	assert.Contains(t, string(root), "toHaveClass('w-screen', 'h-screen', 'bg-[#ffffff]')")

	nav, err := afero.ReadFile(fs, "/project/out/nav.test.js")
	require.NoError(t, err)
	assert.Contains(t, string(nav), "// Generated by tokentest from app.tokens.json.")
	assert.Contains(t, string(nav), "toHaveClass('flex', 'flex-row', 'gap-[8px]')")
	assert.Contains(t, string(nav), "toHaveClass('bg-red-200')")

	exists, err := afero.Exists(fs, "/project/out/title.test.js")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Documents))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Artifacts.WithLabelValues("root", "written")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Artifacts.WithLabelValues("frame", "written")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.DegradedRoots))
}

func TestRunIsIdempotent(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{"app.tokens.json": tokensJSON})
	cfg.Parallel = 4

	_, err := (&Driver{FS: fs, Config: cfg}).Run(context.Background())
	require.NoError(t, err)
	first, err := afero.ReadFile(fs, "/project/out/hero.test.js")
	require.NoError(t, err)

	report, err := (&Driver{FS: fs, Config: cfg}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(Unchanged))

	second, err := afero.ReadFile(fs, "/project/out/hero.test.js")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunCheck(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{"app.tokens.json": tokensJSON})

	report, err := (&Driver{FS: fs, Config: cfg, Check: true}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStale))
	assert.Equal(t, 3, report.Count(Stale))

	exists, err := afero.DirExists(fs, "/project/out")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = (&Driver{FS: fs, Config: cfg}).Run(context.Background())
	require.NoError(t, err)

	report, err = (&Driver{FS: fs, Config: cfg, Check: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(Unchanged))
}

func TestRunDegradedRoot(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{"app.tokens.json": `{
  "x/y": {"type": "FRAME"},
  "x/z": {"type": "FRAME"}
}`})
	metrics := NewMetrics()

	report, err := (&Driver{FS: fs, Config: cfg, Metrics: metrics}).Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, report.Warnings)
	assert.True(t, errors.Is(report.Warnings[0], tokens.ErrDegradedRootInference))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DegradedRoots))

	require.Len(t, report.Results, 1)
	assert.Equal(t, "x/y", report.Results[0].Key)
	assert.Equal(t, "/project/out/y.test.js", report.Results[0].Path)
}

func TestRunSkipsDocumentWithoutRoot(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{"empty.tokens.json": `{}`})

	report, err := (&Driver{FS: fs, Config: cfg}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, Skipped, report.Results[0].Outcome)
	assert.Len(t, report.Warnings, 1)
}

func TestRunCollectsFailures(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{
		"a.tokens.json": `{"app": {}, "app/ghost": null, "app/nav": {}}`,
		"b.tokens.json": `[1, 2, 3]`,
	})
	metrics := NewMetrics()

	report, err := (&Driver{FS: fs, Config: cfg, Metrics: metrics}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, tokens.ErrMissingNodeData))
	assert.True(t, errors.Is(err, tokens.ErrInvalidInputKind))

	assert.Equal(t, 1, report.Count(Failed))
	assert.Equal(t, 2, report.Count(Written))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues("missing_node_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues("invalid_input")))
}

func TestRunFailFast(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{
		"a.tokens.json": `[1]`,
		"b.tokens.json": tokensJSON,
	})
	cfg.FailFast = true

	report, err := (&Driver{FS: fs, Config: cfg}).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, report.Results)

	exists, err := afero.DirExists(fs, "/project/out")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunArtifactCollision(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{
		"a.tokens.json": `{"app": {}, "app/nav": {}}`,
		"b.tokens.json": `{"site": {}, "site/nav": {}}`,
	})

	report, err := (&Driver{FS: fs, Config: cfg}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactCollision))
	assert.Equal(t, 3, report.Count(Written))
	assert.Equal(t, 1, report.Count(Failed))
}

func TestRunPlaceholderCollision(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{"app.tokens.json": `{
  "app": {},
  "app/nav": {"visuals": {"backgroundColor": {"r": 1, "g": 0, "b": 0}}}
}`})
	cfg.DebugPalette = map[string]string{"nav": "bg-[#ff0000]"}

	_, err := (&Driver{FS: fs, Config: cfg}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, generate.ErrPlaceholderCollision))
}

func TestRunEditorConfig(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{
		"app.tokens.json": tokensJSON,
		".editorconfig": `root = true

[*.js]
indent_style = space
indent_size = 4
end_of_line = crlf
`,
	})
	cfg.EditorConfig = ".editorconfig"

	_, err := (&Driver{FS: fs, Config: cfg}).Run(context.Background())
	require.NoError(t, err)

	hero, err := afero.ReadFile(fs, "/project/out/hero.test.js")
	require.NoError(t, err)
	text := string(hero)
	assert.Contains(t, text, "\r\n    const testId = 'hero';\r\n")
	assert.True(t, strings.HasSuffix(text, "});\r\n"))
	assert.NotContains(t, strings.ReplaceAll(text, "\r\n", ""), "\n")
}

func TestRunCancelled(t *testing.T) {
	fs, cfg := newProject(t, map[string]string{"app.tokens.json": tokensJSON})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Driver{FS: fs, Config: cfg}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{
		"/p/design/a.tokens.json",
		"/p/design/archive/old.tokens.json",
		"/p/b.tokens.json",
		"/p/design/readme.md",
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte("{}"), 0o644))
	}

	files, err := Discover(fs, "/p", []string{"**/*.tokens.json", "design/*.json"}, []string{"design/archive/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/b.tokens.json", "/p/design/a.tokens.json"}, files)

	_, err = Discover(fs, "/p", []string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestStyleApply(t *testing.T) {
	assert.Equal(t, "a\nb\n", DefaultStyle.Apply("a\nb\n\n"))
	assert.Equal(t, "a\r\nb", Style{EOL: "\r\n"}.Apply("a\nb\n"))
	assert.Equal(t, "a\rb\r", Style{EOL: "\r", FinalNewline: true}.Apply("a\nb"))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "missing_node_data", Reason(errors.WithStack(tokens.ErrMissingNodeData)))
	assert.Equal(t, "placeholder_collision", Reason(errors.WithDetails(generate.ErrPlaceholderCollision, "key", "k")))
	assert.Equal(t, "other", Reason(errors.New("boom")))
}

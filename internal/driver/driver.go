// Package driver discovers token documents and writes their generated tests.
package driver

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jsvensson/tokentest/internal/config"
	"github.com/jsvensson/tokentest/internal/generate"
	"github.com/jsvensson/tokentest/internal/tokens"
)

// ErrArtifactCollision is returned when two nodes map to the same file.
var ErrArtifactCollision = errors.Base("artifact path already generated")

// ErrStale is returned by check runs when artifacts on disk are outdated.
var ErrStale = errors.Base("generated tests are out of date")

// Outcome is what happened to one artifact.
type Outcome string

const (
	Written   Outcome = "written"
	Unchanged Outcome = "unchanged"
	Stale     Outcome = "stale"
	Failed    Outcome = "failed"
	Skipped   Outcome = "skipped"
)

// Result describes one artifact of a run.
type Result struct {
	Source  string
	Key     string
	Path    string
	Root    bool
	Outcome Outcome
	Err     error
}

// Report summarizes a run.
type Report struct {
	Documents []string
	Results   []Result
	Warnings  []error
}

// Count returns the number of results with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Driver runs generation over a configured project.
type Driver struct {
	FS      afero.Fs
	Config  *config.Config
	Log     commonlog.Logger
	Metrics *Metrics
	// Check compares output with the files on disk and writes nothing.
	Check bool
}

type pending struct {
	result Result
	text   string
}

// Run generates tests for every discovered document. Per-node failures are
// collected and returned together once all documents are processed, unless
// the configuration asks to fail fast.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	d.init()
	cfg := d.Config

	files, err := Discover(d.FS, cfg.Dir, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, errors.Errorf("discovering token documents: %w", err)
	}
	if len(files) == 0 {
		d.Log.Warningf("no token documents match %v", cfg.Include)
	}

	st, err := loadStyles(d.FS, cfg.Resolve(cfg.EditorConfig))
	if err != nil {
		return nil, err
	}

	report := &Report{Documents: files}
	var errs *multierror.Error
	var out []pending
	seen := make(map[string]string)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		d.Log.Infof("processing %s", file)
		items, warnings, err := d.document(ctx, file, st)
		report.Warnings = append(report.Warnings, warnings...)
		if err != nil {
			errs = multierror.Append(errs, err)
			if cfg.FailFast {
				return report, errs.ErrorOrNil()
			}
		}

		for _, item := range items {
			if item.result.Outcome == "" {
				if other, ok := seen[item.result.Path]; ok {
					item.result.Err = errors.WithDetails(ErrArtifactCollision,
						"path", item.result.Path, "key", item.result.Key, "other", other)
					item.result.Outcome = Failed
					d.Metrics.failure(item.result.Err)
				} else {
					seen[item.result.Path] = item.result.Source + ":" + item.result.Key
				}
			}
			if item.result.Err != nil {
				d.Log.Errorf("%s: %s", item.result.Key, item.result.Err.Error())
				errs = multierror.Append(errs, item.result.Err)
				if cfg.FailFast {
					report.Results = append(report.Results, item.result)
					return report, errs.ErrorOrNil()
				}
			}
			out = append(out, item)
		}
	}

	stale := 0
	for _, item := range out {
		res := item.result
		if res.Outcome == "" {
			res.Outcome, res.Err = d.write(res.Path, item.text)
			if res.Err != nil {
				errs = multierror.Append(errs, res.Err)
			}
			d.Metrics.artifact(res.Root, res.Outcome)
		}
		if res.Outcome == Stale {
			stale++
			d.Log.Warningf("stale: %s", res.Path)
		}
		report.Results = append(report.Results, res)
	}

	d.Log.Infof("%d documents, %d written, %d unchanged, %d stale, %d failed",
		len(files), report.Count(Written), report.Count(Unchanged), stale, report.Count(Failed))

	if err := errs.ErrorOrNil(); err != nil {
		return report, err
	}
	if stale > 0 {
		return report, errors.WithDetails(ErrStale, "count", stale)
	}
	return report, nil
}

func (d *Driver) init() {
	if d.FS == nil {
		d.FS = afero.NewOsFs()
	}
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Log == nil {
		d.Log = commonlog.GetLogger("tokentest.driver")
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
}

// document generates the root artifact and one artifact per direct child of
// the root. A document without a root is skipped with a warning.
func (d *Driver) document(ctx context.Context, file string, st *styles) ([]pending, []error, error) {
	cfg := d.Config
	d.Metrics.Documents.Inc()

	src, err := afero.ReadFile(d.FS, file)
	if err != nil {
		d.Metrics.Failures.WithLabelValues("read").Inc()
		return nil, nil, errors.Errorf("reading %s: %w", file, err)
	}
	doc, err := tokens.Parse(src)
	if err != nil {
		d.Metrics.failure(err)
		return nil, nil, errors.WithDetails(errors.Errorf("loading tokens %s: %w", file, err), "file", file)
	}

	root, err := tokens.FindRootKey(doc)
	if err != nil {
		return nil, nil, errors.WithDetails(err, "file", file)
	}

	var warnings []error
	if !root.Found {
		w := errors.WithDetails(errors.New("no root key, document skipped"), "file", file)
		d.Log.Warningf("%s: %s", file, w.Error())
		return []pending{{result: Result{Source: file, Outcome: Skipped}}}, []error{w}, nil
	}
	if w := root.Warning(); w != nil {
		d.Metrics.DegradedRoots.Inc()
		d.Log.Warningf("%s: root %q inferred by fallback", file, root.Key)
		warnings = append(warnings, errors.WithDetails(w, "file", file))
	}

	keys := append([]string{root.Key}, tokens.DirectChildKeys(doc, root.Key)...)
	if len(keys) == 1 {
		d.Log.Warningf("%s: root %q has no direct children", file, root.Key)
		warnings = append(warnings, errors.WithDetails(errors.New("root has no direct children"), "file", file, "key", root.Key))
	}

	base := generate.Generator{
		Component:     cfg.Component,
		ComponentPath: cfg.ComponentPath,
		Source:        filepath.ToSlash(filepath.Base(file)),
		Placeholders:  cfg.DebugPalette,
	}
	if base.Component == "" {
		base.Component = generate.DisplayName(tokens.ShortName(root.Key))
	}
	outDir := cfg.Resolve(cfg.OutDir)

	items := make([]pending, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i, key := range keys {
		i, key := i, key // per-iteration copies for the goroutine (go < 1.22 loop semantics)
		isRoot := i == 0
		items[i].result = Result{Source: file, Key: key, Root: isRoot, Path: filepath.Join(outDir, tokens.ShortName(key)+".test.js")}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].result.Outcome = Skipped
				return nil
			}
			text, err := d.generate(base, st, doc, &items[i].result)
			if err != nil {
				items[i].result.Outcome = Failed
				items[i].result.Err = errors.WithDetails(err, "file", file, "key", key)
				d.Metrics.failure(err)
				if cfg.FailFast {
					return items[i].result.Err
				}
				return nil
			}
			items[i].text = text
			return nil
		})
	}
	// Failures are recorded per item.
	_ = g.Wait()
	return items, warnings, nil
}

func (d *Driver) generate(g generate.Generator, st *styles, doc *tokens.Document, res *Result) (string, error) {
	style, err := st.For(res.Path)
	if err != nil {
		return "", err
	}
	g.Indent = style.Indent

	var a *generate.Artifact
	if res.Root {
		a, err = g.Root(doc, res.Key)
	} else {
		a, err = g.Frame(doc, res.Key)
	}
	if err != nil {
		return "", err
	}
	return style.Apply(a.Text), nil
}

// write stores text at path unless it is already current. In check mode it
// only reports whether the file is stale.
func (d *Driver) write(path, text string) (Outcome, error) {
	existing, err := afero.ReadFile(d.FS, path)
	if err == nil && bytes.Equal(existing, []byte(text)) {
		return Unchanged, nil
	}
	if d.Check {
		return Stale, nil
	}

	if err := d.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Failed, errors.Errorf("creating output directory: %w", err)
	}
	if err := afero.WriteFile(d.FS, path, []byte(text), 0o644); err != nil {
		return Failed, errors.Errorf("writing %s: %w", path, err)
	}
	d.Log.Debugf("wrote %s", path)
	return Written, nil
}

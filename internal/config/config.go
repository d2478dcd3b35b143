// Package config loads tokentest.hcl project files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"gitlab.com/tozd/go/errors"

	"github.com/jsvensson/tokentest/internal/generate"
)

// DefaultFile is the project file name looked up when no path is given.
const DefaultFile = "tokentest.hcl"

// Defaults.
const (
	DefaultInclude  = "**/design-tokens.json"
	DefaultOutDir   = "generated"
	DefaultParallel = 1
)

// DefaultPalette holds the debug placeholders used when the project file
// does not override them.
var DefaultPalette = map[string]string{
	"nav":    "bg-red-200",
	"hero":   "bg-blue-200",
	"main":   "bg-green-200",
	"footer": "bg-yellow-200",
}

// File is the raw shape of a project file.
type File struct {
	Tokens       *TokensBlock    `hcl:"tokens,block"`
	Component    *ComponentBlock `hcl:"component,block"`
	Output       *OutputBlock    `hcl:"output,block"`
	Run          *RunBlock       `hcl:"run,block"`
	DebugPalette *PaletteBlock   `hcl:"debug_palette,block"`
}

// TokensBlock selects token documents.
type TokensBlock struct {
	Include []string `hcl:"include,optional"`
	Exclude []string `hcl:"exclude,optional"`
}

// ComponentBlock names the root component under test.
type ComponentBlock struct {
	Name string `hcl:"name,optional"`
	Path string `hcl:"path,optional"`
}

// OutputBlock controls where artifacts go.
type OutputBlock struct {
	Dir          string `hcl:"dir,optional"`
	EditorConfig string `hcl:"editorconfig,optional"`
}

// RunBlock tunes generation.
type RunBlock struct {
	Parallel *int `hcl:"parallel,optional"`
	FailFast bool `hcl:"fail_fast,optional"`
}

// PaletteBlock holds arbitrary name = "directive" attributes.
type PaletteBlock struct {
	Entries hcl.Body `hcl:",remain"`
}

// Config is a resolved, validated project configuration.
type Config struct {
	// Dir is the directory relative paths resolve against.
	Dir string

	Include       []string `field:"tokens.include" validate:"min=1,dive,required"`
	Exclude       []string `field:"tokens.exclude" validate:"dive,required"`
	Component     string   `field:"component.name" validate:"omitempty,component_name"`
	ComponentPath string   `field:"component.path"`
	OutDir        string   `field:"output.dir" validate:"required"`
	EditorConfig  string   `field:"output.editorconfig"`
	Parallel      int      `field:"run.parallel" validate:"min=1,max=64"`
	FailFast      bool     `field:"run.fail_fast"`

	// DebugPalette maps lower-case frame names to placeholder directives.
	DebugPalette map[string]string `field:"debug_palette" validate:"dive,keys,required,endkeys,required"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	palette := make(map[string]string, len(DefaultPalette))
	for k, v := range DefaultPalette {
		palette[k] = v
	}
	return &Config{
		Dir:          ".",
		Include:      []string{DefaultInclude},
		OutDir:       DefaultOutDir,
		Parallel:     DefaultParallel,
		DebugPalette: palette,
	}
}

// Load reads a project file from the OS filesystem.
func Load(path string) (*Config, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS reads a project file from fsys.
func LoadFS(fsys afero.Fs, path string) (*Config, error) {
	src, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes and validates project file source. filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (*Config, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	ctx := evalContext()

	var raw File
	if diags := gohcl.DecodeBody(file.Body, ctx, &raw); diags.HasErrors() {
		return nil, errors.Errorf("decoding config: %s", diags.Error())
	}

	cfg := Default()
	if err := cfg.apply(&raw, ctx); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(raw *File, ctx *hcl.EvalContext) error {
	if t := raw.Tokens; t != nil {
		if len(t.Include) > 0 {
			c.Include = t.Include
		}
		c.Exclude = t.Exclude
	}
	if comp := raw.Component; comp != nil {
		c.Component = comp.Name
		c.ComponentPath = comp.Path
	}
	if out := raw.Output; out != nil {
		if out.Dir != "" {
			c.OutDir = out.Dir
		}
		c.EditorConfig = out.EditorConfig
	}
	if run := raw.Run; run != nil {
		if run.Parallel != nil {
			c.Parallel = *run.Parallel
		}
		c.FailFast = run.FailFast
	}
	if p := raw.DebugPalette; p != nil {
		entries, err := decodeBodyToMap(p.Entries, ctx)
		if err != nil {
			return errors.Errorf("parsing debug_palette: %w", err)
		}
		for name, directive := range entries {
			name = strings.ToLower(name)
			if directive == "" {
				delete(c.DebugPalette, name)
				continue
			}
			c.DebugPalette[name] = directive
		}
	}
	return nil
}

// Resolve joins a config-relative path with Dir. Absolute paths are
// returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// decodeBodyToMap decodes a body of arbitrary string attributes.
func decodeBodyToMap(body hcl.Body, ctx *hcl.EvalContext) (map[string]string, error) {
	if body == nil {
		return map[string]string{}, nil
	}

	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Errorf("getting attributes: %s", diags.Error())
	}

	result := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, errors.Errorf("evaluating %s: %s", name, diags.Error())
		}
		if val.IsNull() || !val.Type().Equals(cty.String) {
			return nil, errors.Errorf("%s: expected a string", name)
		}
		result[name] = val.AsString()
	}
	return result, nil
}

var environ = os.Environ

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envValue(environ()),
		},
		Functions: map[string]function.Function{
			"pascal": makePascalFunc(),
		},
	}
}

func envValue(pairs []string) cty.Value {
	vals := make(map[string]cty.Value, len(pairs))
	for _, kv := range pairs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vals[name] = cty.StringVal(value)
	}
	if len(vals) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	return cty.MapVal(vals)
}

// makePascalFunc creates an HCL function converting kebab-case names to
// component names: pascal("hands-on-design") is "HandsOnDesign".
func makePascalFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Converts a kebab-case name to PascalCase",
		Params: []function.Parameter{
			{
				Name: "name",
				Type: cty.String,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(generate.DisplayName(args[0].AsString())), nil
		},
	})
}

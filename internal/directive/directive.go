// Package directive maps token nodes to Tailwind utility classes.
package directive

import (
	"strconv"

	"gitlab.com/tozd/go/errors"

	"github.com/jsvensson/tokentest/internal/color"
	"github.com/jsvensson/tokentest/internal/tokens"
)

// Fixed directives.
const (
	Flex           = "flex"
	Row            = "flex-row"
	Column         = "flex-col"
	FullWidth      = "w-full"
	FullHeight     = "h-full"
	ScreenWidth    = "w-screen"
	ScreenHeight   = "h-screen"
	OverflowHidden = "overflow-hidden"

	// NoBackground is the explicit "no background" directive. It is distinct
	// from omitting the background and is never inserted into a directive list.
	NoBackground = "bg-transparent"
)

var mainAxis = map[tokens.Align]string{
	tokens.AlignMin:          "justify-start",
	tokens.AlignCenter:       "justify-center",
	tokens.AlignMax:          "justify-end",
	tokens.AlignSpaceBetween: "justify-between",
}

var crossAxis = map[tokens.Align]string{
	tokens.AlignMin:      "items-start",
	tokens.AlignCenter:   "items-center",
	tokens.AlignMax:      "items-end",
	tokens.AlignBaseline: "items-baseline",
}

// Options selects the mapping variant.
type Options struct {
	// IsRoot forces viewport-filling width and height.
	IsRoot bool
	// IncludeBackground appends the actual background to Directives.
	IncludeBackground bool
}

// Result is the mapped directive set of one node.
type Result struct {
	// Directives in fixed order: display, axis, main-axis alignment,
	// cross-axis alignment, gap, padding top/bottom/left/right, width,
	// height, overflow, background.
	Directives []string
	// ActualBackground is always computed, whether or not it was included.
	ActualBackground string
}

// Map translates one node into its directive set. A nil node fails with
// tokens.ErrMissingNodeData.
func Map(n *tokens.Node, opts Options) (Result, error) {
	if n == nil {
		return Result{}, errors.WithStack(tokens.ErrMissingNodeData)
	}

	l := n.Layout
	out := make([]string, 0, 13)
	add := func(d string, ok bool) {
		if ok {
			out = append(out, d)
		}
	}

	add(display(l))
	add(axis(l))
	if l != nil {
		add(lookup(mainAxis, l.PrimaryAxisAlignItems))
		add(lookup(crossAxis, l.CounterAxisAlignItems))
		add(spacing("gap", l.ItemSpacing))
		add(spacing("pt", l.PaddingTop))
		add(spacing("pb", l.PaddingBottom))
		add(spacing("pl", l.PaddingLeft))
		add(spacing("pr", l.PaddingRight))
	}
	add(width(l, opts.IsRoot))
	add(height(l, opts.IsRoot))
	add(overflow(n.Visuals))

	bg := Background(n.Visuals.Background())
	if opts.IncludeBackground && bg != NoBackground {
		out = append(out, bg)
	}

	return Result{Directives: out, ActualBackground: bg}, nil
}

// MapPair maps a node twice: core without the background, and full with it.
// Both share the same ActualBackground.
func MapPair(n *tokens.Node, isRoot bool) (core, full Result, err error) {
	core, err = Map(n, Options{IsRoot: isRoot})
	if err != nil {
		return Result{}, Result{}, err
	}
	full, err = Map(n, Options{IsRoot: isRoot, IncludeBackground: true})
	if err != nil {
		return Result{}, Result{}, err
	}
	return core, full, nil
}

// Background returns the background directive for a color: bg-[<display>],
// or NoBackground when the color is absent or transparent.
func Background(c *color.Color) string {
	display := color.Display(c)
	if display == color.Transparent {
		return NoBackground
	}
	return "bg-[" + display + "]"
}

// Contains reports whether d is in the result's directive list.
func (r Result) Contains(d string) bool {
	for _, have := range r.Directives {
		if have == d {
			return true
		}
	}
	return false
}

func display(l *tokens.Layout) (string, bool) {
	if l == nil || l.LayoutMode == nil {
		return "", false
	}
	if *l.LayoutMode == "" {
		return "", false
	}
	return Flex, true
}

func axis(l *tokens.Layout) (string, bool) {
	if l == nil || l.LayoutMode == nil {
		return "", false
	}
	switch *l.LayoutMode {
	case tokens.LayoutVertical:
		return Column, true
	case tokens.LayoutHorizontal:
		return Row, true
	}
	return "", false
}

func lookup(table map[tokens.Align]string, a *tokens.Align) (string, bool) {
	if a == nil {
		return "", false
	}
	d, ok := table[*a]
	return d, ok
}

// spacing renders prefix-[Npx] for strictly positive values.
func spacing(prefix string, v *float64) (string, bool) {
	if v == nil || *v <= 0 {
		return "", false
	}
	return pixels(prefix, *v), true
}

func pixels(prefix string, v float64) string {
	return prefix + "-[" + strconv.FormatFloat(v, 'f', -1, 64) + "px]"
}

func width(l *tokens.Layout, isRoot bool) (string, bool) {
	if isRoot {
		return ScreenWidth, true
	}
	if l == nil || l.LayoutSizingHorizontal == nil {
		return "", false
	}
	switch *l.LayoutSizingHorizontal {
	case tokens.SizingFill:
		return FullWidth, true
	case tokens.SizingFixed:
		if w, ok := l.Width(); ok {
			return pixels("w", w), true
		}
	}
	return "", false
}

func height(l *tokens.Layout, isRoot bool) (string, bool) {
	if isRoot {
		return ScreenHeight, true
	}
	if l == nil || l.LayoutSizingVertical == nil {
		return "", false
	}
	switch *l.LayoutSizingVertical {
	case tokens.SizingFill:
		return FullHeight, true
	case tokens.SizingFixed:
		if h, ok := l.Height(); ok {
			return pixels("h", h), true
		}
	}
	return "", false
}

func overflow(v *tokens.Visuals) (string, bool) {
	if v == nil || v.ClipsContent == nil || !*v.ClipsContent {
		return "", false
	}
	return OverflowHidden, true
}

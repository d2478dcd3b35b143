package tokens

import (
	"github.com/jsvensson/tokentest/internal/color"
)

// LayoutMode is the auto-layout direction of a frame.
type LayoutMode string

const (
	LayoutHorizontal LayoutMode = "HORIZONTAL"
	LayoutVertical   LayoutMode = "VERTICAL"
	LayoutNone       LayoutMode = "NONE"
)

// Sizing is the sizing mode of one axis.
type Sizing string

const (
	SizingFixed Sizing = "FIXED"
	SizingFill  Sizing = "FILL"
	SizingHug   Sizing = "HUG"
)

// Align is an alignment keyword for the primary or counter axis.
type Align string

const (
	AlignMin          Align = "MIN"
	AlignCenter       Align = "CENTER"
	AlignMax          Align = "MAX"
	AlignSpaceBetween Align = "SPACE_BETWEEN"
	AlignBaseline     Align = "BASELINE"
)

// FillSolid is the only fill type that contributes a background.
const FillSolid = "SOLID"

// Node is one entry of a token document. Every attribute is optional; a nil
// pointer means the attribute was absent from the source.
type Node struct {
	Type    *string  `mapstructure:"type"`
	Visuals *Visuals `mapstructure:"visuals"`
	Layout  *Layout  `mapstructure:"layout"`
}

// Visuals holds the paint attributes of a node.
type Visuals struct {
	Fills           []Fill       `mapstructure:"fills"`
	BackgroundColor *color.Color `mapstructure:"backgroundColor"`
	ClipsContent    *bool        `mapstructure:"clipsContent"`
}

// Fill is a single paint layer.
type Fill struct {
	Type  string       `mapstructure:"type"`
	Color *color.Color `mapstructure:"color"`
}

// Layout holds the auto-layout attributes of a node.
type Layout struct {
	LayoutMode             *LayoutMode  `mapstructure:"layoutMode"`
	PaddingTop             *float64     `mapstructure:"paddingTop"`
	PaddingBottom          *float64     `mapstructure:"paddingBottom"`
	PaddingLeft            *float64     `mapstructure:"paddingLeft"`
	PaddingRight           *float64     `mapstructure:"paddingRight"`
	ItemSpacing            *float64     `mapstructure:"itemSpacing"`
	PrimaryAxisAlignItems  *Align       `mapstructure:"primaryAxisAlignItems"`
	CounterAxisAlignItems  *Align       `mapstructure:"counterAxisAlignItems"`
	LayoutSizingHorizontal *Sizing      `mapstructure:"layoutSizingHorizontal"`
	LayoutSizingVertical   *Sizing      `mapstructure:"layoutSizingVertical"`
	AbsoluteBoundingBox    *BoundingBox `mapstructure:"absoluteBoundingBox"`
}

// BoundingBox is the absolute box of a node in the design.
type BoundingBox struct {
	X      *float64 `mapstructure:"x"`
	Y      *float64 `mapstructure:"y"`
	Width  *float64 `mapstructure:"width"`
	Height *float64 `mapstructure:"height"`
}

// IsFrame reports whether the node is a container. Nodes without a type are
// treated as frames.
func (n *Node) IsFrame() bool {
	if n == nil || n.Type == nil {
		return true
	}
	switch *n.Type {
	case "", "FRAME", "COMPONENT", "INSTANCE", "GROUP":
		return true
	}
	return false
}

// Background returns the color that paints the node: backgroundColor when
// present, otherwise the first fill if it is SOLID. It returns nil when the
// node has neither.
func (v *Visuals) Background() *color.Color {
	if v == nil {
		return nil
	}
	if v.BackgroundColor != nil {
		return v.BackgroundColor
	}
	if len(v.Fills) > 0 && v.Fills[0].Type == FillSolid {
		return v.Fills[0].Color
	}
	return nil
}

// Width returns the bounding box width, if any.
func (l *Layout) Width() (float64, bool) {
	if l == nil || l.AbsoluteBoundingBox == nil || l.AbsoluteBoundingBox.Width == nil {
		return 0, false
	}
	return *l.AbsoluteBoundingBox.Width, true
}

// Height returns the bounding box height, if any.
func (l *Layout) Height() (float64, bool) {
	if l == nil || l.AbsoluteBoundingBox == nil || l.AbsoluteBoundingBox.Height == nil {
		return 0, false
	}
	return *l.AbsoluteBoundingBox.Height, true
}

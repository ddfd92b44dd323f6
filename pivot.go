package spriteslice

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Preset is a named pivot position
type Preset int

// The presets in the order they are offered to the user
const (
	Center Preset = iota
	Top
	TopLeft
	TopRight
	Left
	Right
	Bottom
	BottomLeft
	BottomRight
	Custom
)

// Alignment is the pivot tag stored with each sprite. The values match the
// sprite import pipeline's alignment numbering.
type Alignment int

const (
	AlignCenter Alignment = iota
	AlignTopLeft
	AlignTopCenter
	AlignTopRight
	AlignLeftCenter
	AlignRightCenter
	AlignBottomLeft
	AlignBottomCenter
	AlignBottomRight
	AlignCustom
)

var alignmentNames = [...]string{
	"Center",
	"TopLeft",
	"TopCenter",
	"TopRight",
	"LeftCenter",
	"RightCenter",
	"BottomLeft",
	"BottomCenter",
	"BottomRight",
	"Custom",
}

func (a Alignment) String() string {
	if a >= 0 && int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// Unit is the coordinate system of a custom pivot
type Unit int

const (
	// Normalized pivots are fractions of the cell, 0 to 1 on each axis
	Normalized Unit = iota
	// Pixels pivots are offsets in pixels from the cell's bottom left corner
	Pixels
)

// Vector is a pivot coordinate with the origin at the bottom left
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type presetInfo struct {
	name      string
	point     Vector
	alignment Alignment
}

var presets = map[Preset]presetInfo{
	Center:      {"center", Vector{0.5, 0.5}, AlignCenter},
	Top:         {"top", Vector{0.5, 1}, AlignTopCenter},
	TopLeft:     {"top-left", Vector{0, 1}, AlignTopLeft},
	TopRight:    {"top-right", Vector{1, 1}, AlignTopRight},
	Left:        {"left", Vector{0, 0.5}, AlignLeftCenter},
	Right:       {"right", Vector{1, 0.5}, AlignRightCenter},
	Bottom:      {"bottom", Vector{0.5, 0}, AlignBottomCenter},
	BottomLeft:  {"bottom-left", Vector{0, 0}, AlignBottomLeft},
	BottomRight: {"bottom-right", Vector{1, 0}, AlignBottomRight},
	Custom:      {"custom", Vector{}, AlignCustom},
}

func (p Preset) String() string {
	if info, ok := presets[p]; ok {
		return info.name
	}
	return fmt.Sprintf("Preset(%d)", int(p))
}

// ParsePreset returns the preset named by s. Spaces and underscores are
// accepted in place of hyphens so "Top Left" and "top_left" both work.
func ParsePreset(s string) (Preset, error) {
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(strings.ToLower(strings.TrimSpace(s)))
	for p, info := range presets {
		if info.name == s {
			return p, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidSpec, "unknown pivot preset %q", s)
}

// ParseUnit returns the Unit named by s, either "normalized" or "pixels"
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "normalized", "normalised":
		return Normalized, nil
	case "pixels", "pixel", "px":
		return Pixels, nil
	}
	return 0, errors.Wrapf(ErrInvalidSpec, "unknown pivot unit %q", s)
}

func (u Unit) String() string {
	if u == Pixels {
		return "pixels"
	}
	return "normalized"
}

// PivotSpec selects the pivot for every sprite cut from a sheet. X, Y and
// Unit are only consulted for the Custom preset.
type PivotSpec struct {
	Preset Preset
	X, Y   float64
	Unit   Unit
}

// Pivot is a resolved pivot
type Pivot struct {
	Point     Vector
	Alignment Alignment
}

// Resolve maps spec to a normalized pivot. Custom pixel coordinates are
// relative to a single cell of cellWidth by cellHeight.
func Resolve(spec PivotSpec, cellWidth, cellHeight int) (Pivot, error) {
	info, ok := presets[spec.Preset]
	if !ok {
		return Pivot{}, errors.Wrapf(ErrInvalidSpec, "unknown pivot preset %d", int(spec.Preset))
	}

	if spec.Preset != Custom {
		return Pivot{info.point, info.alignment}, nil
	}

	if math.IsNaN(spec.X) || math.IsInf(spec.X, 0) || math.IsNaN(spec.Y) || math.IsInf(spec.Y, 0) {
		return Pivot{}, errors.Wrapf(ErrInvalidSpec, "custom pivot (%v, %v)", spec.X, spec.Y)
	}

	v := Vector{spec.X, spec.Y}
	switch spec.Unit {
	case Normalized:
	case Pixels:
		if cellWidth <= 0 || cellHeight <= 0 {
			return Pivot{}, errors.Wrapf(ErrInvalidSpec, "pixel pivot with %dx%d cell", cellWidth, cellHeight)
		}
		v.X /= float64(cellWidth)
		v.Y /= float64(cellHeight)
	default:
		return Pivot{}, errors.Wrapf(ErrInvalidSpec, "unknown pivot unit %d", int(spec.Unit))
	}

	return Pivot{v, AlignCustom}, nil
}

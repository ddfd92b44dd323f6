package spriteslice

import "strconv"

// Border is the nine-slice border of a sprite in pixels
type Border struct {
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
	Top    int `json:"top"`
}

// SpriteDescriptor is the metadata for one sprite cut from a sheet
type SpriteDescriptor struct {
	Name      string    `json:"name"`
	Rect      Rect      `json:"rect"`
	Pivot     Vector    `json:"pivot"`
	Alignment Alignment `json:"alignment"`
	Border    Border    `json:"border"`
}

// Name returns the sprite name for the cell at index within the full grid
func Name(base string, index int) string {
	return base + "_" + strconv.Itoa(index)
}

// Build creates a descriptor for each cell, keeping the order of cells
func Build(cells []Cell, base string, pivot Pivot) []SpriteDescriptor {
	sprites := make([]SpriteDescriptor, 0, len(cells))
	for _, c := range cells {
		sprites = append(sprites, SpriteDescriptor{
			Name:      Name(base, c.Index),
			Rect:      c.Rect,
			Pivot:     pivot.Point,
			Alignment: pivot.Alignment,
		})
	}
	return sprites
}

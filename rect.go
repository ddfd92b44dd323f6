package spriteslice

// Rect is a rectangle in sheet pixel space with the origin at the bottom
// left
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Cell is one grid position on the sheet
type Cell struct {
	Rect
	Row    int
	Column int
	// Index is the row-major position within the full grid, it is not
	// renumbered when other cells are dropped
	Index int
}

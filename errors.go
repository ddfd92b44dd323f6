package spriteslice

import "github.com/pkg/errors"

var (
	// ErrInvalidSpec is returned when slicing parameters cannot describe a
	// non-empty grid over the sheet
	ErrInvalidSpec = errors.New("invalid slice specification")

	// ErrUnsupportedAsset is returned when the image cannot be sliced into
	// multiple sprites at all
	ErrUnsupportedAsset = errors.New("unsupported asset")
)

package batch

import (
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/spriteslice"
	"github.com/bodgit/spriteslice/alpha"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Formats that can carry transparency and so can be sliced
var sliceable = map[string]struct{}{
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tiff": {},
	"webp": {},
}

// Extensions picked up when walking a directory
var extensions = map[string]struct{}{
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// Info describes a sheet on disk
type Info struct {
	Path   string
	Name   string
	Format string
	Width  int
	Height int
}

// BaseName returns the file name of path without its extension, used as the
// prefix of every sprite name
func BaseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func checkFormat(path, format string, w, h int) error {
	if _, ok := sliceable[format]; !ok {
		return errors.Wrapf(spriteslice.ErrUnsupportedAsset, "%s: %s images have no transparency", path, format)
	}
	if w <= 0 || h <= 0 {
		return errors.Wrapf(spriteslice.ErrUnsupportedAsset, "%s: image is %dx%d", path, w, h)
	}
	return nil
}

// Stat reads just enough of the sheet at path to describe it
func Stat(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	c, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, errors.Wrapf(spriteslice.ErrUnsupportedAsset, "%s: %s", path, err)
	}

	if err := checkFormat(path, format, c.Width, c.Height); err != nil {
		return Info{}, err
	}

	return Info{
		Path:   path,
		Name:   BaseName(path),
		Format: format,
		Width:  c.Width,
		Height: c.Height,
	}, nil
}

// Load decodes the sheet at path and extracts its alpha channel
func Load(path string) (*alpha.Plane, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(spriteslice.ErrUnsupportedAsset, "%s: %s", path, err)
	}

	b := m.Bounds()
	if err := checkFormat(path, format, b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	return alpha.FromImage(m), nil
}

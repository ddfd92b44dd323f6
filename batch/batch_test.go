package batch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/bodgit/spriteslice"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	applied map[string][]spriteslice.SpriteDescriptor
	fail    string
}

func (m *memorySink) Apply(path string, width, height int, sprites []spriteslice.SpriteDescriptor) error {
	if path == m.fail {
		return errors.New("sink failure")
	}
	m.applied[path] = sprites
	return nil
}

func writePNG(t *testing.T, path string, m image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func sheet(w, h int, opaque ...image.Rectangle) image.Image {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for _, r := range opaque {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				m.SetNRGBA(x, y, color.NRGBA{R: 0xff, A: 0xff})
			}
		}
	}
	return m
}

func fixtures(t *testing.T) string {
	dir := t.TempDir()

	writePNG(t, filepath.Join(dir, "a", "full.png"), sheet(64, 64, image.Rect(0, 0, 64, 64)))
	writePNG(t, filepath.Join(dir, "a", "b", "blank.png"), sheet(64, 64))
	writePNG(t, filepath.Join(dir, "a", ".hidden", "skip.png"), sheet(64, 64, image.Rect(0, 0, 64, 64)))
	writePNG(t, filepath.Join(dir, "a", ".skip.png"), sheet(64, 64, image.Rect(0, 0, 64, 64)))
	writePNG(t, filepath.Join(dir, "tiny.png"), sheet(8, 8, image.Rect(0, 0, 8, 8)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "notes.txt"), []byte("not an image"), 0o644))

	return dir
}

func TestSelect(t *testing.T) {
	dir := fixtures(t)

	files, err := Select(context.Background(), []string{filepath.Join(dir, "a"), filepath.Join(dir, "tiny.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a", "b", "blank.png"),
		filepath.Join(dir, "a", "full.png"),
		filepath.Join(dir, "tiny.png"),
	}, files)
}

func TestRun(t *testing.T) {
	dir := fixtures(t)

	missing := filepath.Join(dir, "missing.png")
	text := filepath.Join(dir, "a", "notes.txt")

	sink := &memorySink{applied: make(map[string][]spriteslice.SpriteDescriptor)}
	logger := log.New(new(bytes.Buffer), "", 0)

	b := New(spriteslice.New(logger), sink, logger, 3)
	results, err := b.Run(context.Background(), []string{filepath.Join(dir, "a"), filepath.Join(dir, "tiny.png"), missing, text}, spriteslice.SliceSpec{Mode: spriteslice.CellCount, Columns: 2, Rows: 2}, spriteslice.PivotSpec{Preset: spriteslice.Bottom})
	require.NoError(t, err)
	require.Len(t, results, 5)

	blank, full, tiny, miss, notes := results[0], results[1], results[2], results[3], results[4]

	assert.Equal(t, filepath.Join(dir, "a", "b", "blank.png"), blank.Path)
	assert.True(t, blank.Empty())
	assert.Equal(t, 64, blank.Width)

	assert.Equal(t, filepath.Join(dir, "a", "full.png"), full.Path)
	require.NoError(t, full.Err)
	require.Len(t, full.Sprites, 4)
	assert.Equal(t, "full_3", full.Sprites[3].Name)
	assert.Equal(t, spriteslice.AlignBottomCenter, full.Sprites[3].Alignment)

	require.NoError(t, tiny.Err)
	assert.Len(t, tiny.Sprites, 4)

	assert.True(t, os.IsNotExist(errors.Cause(miss.Err)))
	assert.True(t, errors.Is(notes.Err, spriteslice.ErrUnsupportedAsset))

	var applied []string
	for path := range sink.applied {
		applied = append(applied, path)
	}
	sort.Strings(applied)
	assert.Equal(t, []string{blank.Path, full.Path, tiny.Path}, applied)
}

func TestRunFailuresAreIndependent(t *testing.T) {
	dir := fixtures(t)
	full := filepath.Join(dir, "a", "full.png")

	sink := &memorySink{applied: make(map[string][]spriteslice.SpriteDescriptor), fail: full}
	logger := log.New(new(bytes.Buffer), "", 0)

	// 16 columns don't fit the 8 pixel sheet
	b := New(spriteslice.New(logger), sink, logger, 1)
	results, err := b.Run(context.Background(), []string{dir}, spriteslice.SliceSpec{Mode: spriteslice.CellCount, Columns: 16, Rows: 16}, spriteslice.PivotSpec{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.True(t, errors.Is(results[2].Err, spriteslice.ErrInvalidSpec))

	assert.Contains(t, sink.applied, results[0].Path)
	assert.Len(t, sink.applied, 1)
}

func TestLoadRejectsOpaqueFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, sheet(8, 8), nil))
	require.NoError(t, f.Close())

	_, err = Load(path)
	assert.True(t, errors.Is(err, spriteslice.ErrUnsupportedAsset))

	_, err = Stat(path)
	assert.True(t, errors.Is(err, spriteslice.ErrUnsupportedAsset))
}

func TestStat(t *testing.T) {
	dir := fixtures(t)

	info, err := Stat(filepath.Join(dir, "tiny.png"))
	require.NoError(t, err)
	assert.Equal(t, Info{Path: filepath.Join(dir, "tiny.png"), Name: "tiny", Format: "png", Width: 8, Height: 8}, info)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "hero", BaseName("/sprites/hero.png"))
	assert.Equal(t, "hero.walk", BaseName("hero.walk.png"))
}

// deepTree builds a chain of directories under dir whose full path is too
// long to stat. Each level is nested by renaming so no single call sees a
// long path.
func deepTree(t *testing.T, dir string) string {
	t.Helper()

	name := strings.Repeat("d", 200)
	chain := filepath.Join(dir, "deep")
	require.NoError(t, os.Mkdir(chain, 0o755))

	parent := filepath.Join(dir, "parent")
	for i := 0; i < 25; i++ {
		require.NoError(t, os.Mkdir(parent, 0o755))
		require.NoError(t, os.Rename(chain, filepath.Join(parent, name)))
		require.NoError(t, os.Rename(parent, chain))
	}

	return chain
}

func TestRunUnreadableEntry(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, sheet(16, 16, image.Rect(0, 0, 16, 16)))
	deep := deepTree(t, dir)

	sink := &memorySink{applied: make(map[string][]spriteslice.SpriteDescriptor)}
	logger := log.New(new(bytes.Buffer), "", 0)

	b := New(spriteslice.New(logger), sink, logger, 2)
	results, err := b.Run(context.Background(), []string{good, deep}, spriteslice.SliceSpec{Mode: spriteslice.CellCount, Columns: 2, Rows: 2}, spriteslice.PivotSpec{})
	require.NoError(t, err)
	require.True(t, len(results) >= 2)

	assert.Equal(t, good, results[0].Path)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Sprites, 4)

	failed := 0
	for _, r := range results[1:] {
		if r.Err != nil {
			assert.True(t, strings.HasPrefix(r.Path, deep), r.Path)
			failed++
		}
	}
	assert.NotZero(t, failed)

	assert.Len(t, sink.applied, 1)
	assert.Contains(t, sink.applied, good)
}

func TestRunCancelled(t *testing.T) {
	dir := fixtures(t)
	logger := log.New(new(bytes.Buffer), "", 0)

	ctx, cancelFunc := context.WithCancel(context.Background())
	cancelFunc()

	b := New(spriteslice.New(logger), nil, logger, 1)
	_, err := b.Run(ctx, []string{dir}, spriteslice.SliceSpec{Mode: spriteslice.CellCount, Columns: 2, Rows: 2}, spriteslice.PivotSpec{})
	assert.Equal(t, context.Canceled, err)
}

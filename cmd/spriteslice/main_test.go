package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLogsSkippedFiles(t *testing.T) {
	dir := t.TempDir()

	sheet := filepath.Join(dir, "walk.png")
	f, err := os.Create(sheet)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 48, 16))))
	require.NoError(t, f.Close())

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("not an image"), 0o644))

	out, logs := new(bytes.Buffer), new(bytes.Buffer)
	require.NoError(t, list(context.Background(), out, log.New(logs, "", 0), []string{sheet, notes}))

	assert.Equal(t, "walk\t48x16\n", out.String())
	assert.Contains(t, logs.String(), notes+": skipped:")
}

package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/store"
)

// LegacyFileName is where NewStoreAt expects a legacy document.
const LegacyFileName = "legacy.json"

// NewStore creates an initialized file-backed store in a temp directory.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	return NewStoreAt(t, t.TempDir(), 0)
}

// NewStoreAt creates an initialized store rooted at dir with the given
// quota (0 disables the quota check). The legacy path is
// dir/LegacyFileName so migration tests can drop a file there.
func NewStoreAt(t *testing.T, dir string, quotaBytes int64) *store.Store {
	t.Helper()
	st := store.New(
		"file:"+filepath.Join(dir, "test.db"),
		filepath.Join(dir, LegacyFileName),
		quotaBytes,
	)
	require.NoError(t, st.Initialize(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// PNG renders a deterministic gradient test image.
func PNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 11), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// Payload wraps PNG output as a transport payload.
func Payload(t *testing.T, width, height int) models.Payload {
	t.Helper()
	return models.NewPayload("image/png", PNG(t, width, height))
}

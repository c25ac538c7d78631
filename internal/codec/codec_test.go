package codec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncharlet/bibliart/internal/codec"
	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/testutil"
)

func TestCompressClampsWidth(t *testing.T) {
	src := testutil.PNG(t, 100, 50)

	payload, err := codec.Compress(src, 40, 0.85)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", payload.MIME())

	w, h, err := codec.Dimensions(payload)
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h, "aspect ratio preserved")
}

func TestCompressNeverUpscales(t *testing.T) {
	src := testutil.PNG(t, 30, 15)

	payload, err := codec.Compress(src, 100, 0.85)
	require.NoError(t, err)

	w, h, err := codec.Dimensions(payload)
	require.NoError(t, err)
	assert.Equal(t, 30, w)
	assert.Equal(t, 15, h)
}

func TestCompressRejectsNonImage(t *testing.T) {
	_, err := codec.Compress([]byte("not an image"), 800, 0.85)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedInput))
}

func TestCompressDeterministic(t *testing.T) {
	src := testutil.PNG(t, 64, 64)

	a, err := codec.Compress(src, 32, 0.6)
	require.NoError(t, err)
	b, err := codec.Compress(src, 32, 0.6)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRecompress(t *testing.T) {
	payload := testutil.Payload(t, 200, 100)

	next, err := codec.Recompress(payload, 50, 0.6)
	require.NoError(t, err)

	w, h, err := codec.Dimensions(next)
	require.NoError(t, err)
	assert.Equal(t, 50, w)
	assert.Equal(t, 25, h)
}

func TestRecompressRejectsBrokenPayload(t *testing.T) {
	_, err := codec.Recompress(models.Payload("data:image/png;base64,!!!"), 800, 0.85)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDecodeFailed))

	_, err = codec.Recompress(models.NewPayload("image/png", []byte("garbage")), 800, 0.85)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDecodeFailed))
}

func batchCollection(t *testing.T) []models.Artist {
	return []models.Artist{
		{
			ID:       1,
			Name:     "Monet",
			Portrait: testutil.Payload(t, 120, 120),
			Artworks: []models.Artwork{
				{ID: 1, Title: "Nympheas", Image: testutil.Payload(t, 300, 200)},
				{ID: 2, Title: "Broken", Image: models.Payload("data:image/png;base64,!!!")},
			},
		},
		{ID: 2, Name: "No portrait", Artworks: []models.Artwork{}},
	}
}

func TestRecompressCollectionCountsOutcomes(t *testing.T) {
	artists := batchCollection(t)

	out, report, err := codec.RecompressCollection(context.Background(), artists,
		codec.PresetAggressivePortrait, codec.PresetAggressiveArtwork)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Done, "portrait + one artwork")
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Skipped, "empty portrait")
	assert.Greater(t, report.BytesBefore, int64(0))
	assert.Greater(t, report.BytesAfter, int64(0))

	// Failed item keeps its original payload.
	assert.Equal(t, artists[0].Artworks[1].Image, out[0].Artworks[1].Image)
	// Processed items were re-encoded as JPEG.
	assert.Equal(t, "image/jpeg", out[0].Portrait.MIME())

	// Input collection untouched.
	assert.Equal(t, "image/png", artists[0].Portrait.MIME())
}

func TestRecompressCollectionHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, report, err := codec.RecompressCollection(ctx, batchCollection(t),
		codec.PresetPortrait, codec.PresetArtwork)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Done)
}

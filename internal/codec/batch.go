package codec

import (
	"context"

	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
)

// RecompressCollection re-encodes every image payload in the collection,
// portraits with portraitPreset and artworks with artworkPreset. Items are
// processed strictly one at a time; cancellation is honored between items,
// never mid-decode. A failed item keeps its original payload and is
// counted, not fatal. The input collection is not mutated.
func RecompressCollection(ctx context.Context, artists []models.Artist, portraitPreset, artworkPreset Preset) ([]models.Artist, models.RecompressReport, error) {
	log := logger.FromContext(ctx).WithPrefix("codec")
	out := models.CloneCollection(artists)
	report := models.RecompressReport{}

	for i := range out {
		if err := ctx.Err(); err != nil {
			return out, report, err
		}
		recompressOne(&out[i].Portrait, portraitPreset, &report, log)

		for j := range out[i].Artworks {
			if err := ctx.Err(); err != nil {
				return out, report, err
			}
			recompressOne(&out[i].Artworks[j].Image, artworkPreset, &report, log)
		}
	}

	log.Info("batch recompression: %d done, %d failed, %d skipped, %d -> %d bytes",
		report.Done, report.Failed, report.Skipped, report.BytesBefore, report.BytesAfter)
	return out, report, nil
}

func recompressOne(p *models.Payload, preset Preset, report *models.RecompressReport, log *logger.Logger) {
	if p.IsZero() {
		report.Skipped++
		return
	}
	before := int64(p.Len())
	next, err := Recompress(*p, preset.MaxWidth, preset.Quality)
	if err != nil {
		log.Warn("recompress item failed, keeping original: %v", err)
		report.Failed++
		return
	}
	report.Done++
	report.BytesBefore += before
	report.BytesAfter += int64(next.Len())
	*p = next
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/logger"
)

// ExportService renders the collection as a pretty-printed JSON document,
// shaped identically to the durable payload and to a full-replace import.
type ExportService interface {
	Export(ctx context.Context) (filename string, data []byte, err error)
}

type exportService struct {
	catalog CatalogService
	now     func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(catalog CatalogService) ExportService {
	return &exportService{catalog: catalog, now: time.Now}
}

func (s *exportService) Export(ctx context.Context) (string, []byte, error) {
	artists := s.catalog.Snapshot()
	data, err := json.MarshalIndent(artists, "", "  ")
	if err != nil {
		return "", nil, errors.NewInternalError(err)
	}
	filename := fmt.Sprintf("bibliart-export-%s.json", s.now().Format("2006-01-02"))
	logger.FromContext(ctx).Info("export: %d artists, %d bytes as %s", len(artists), len(data), filename)
	return filename, data, nil
}

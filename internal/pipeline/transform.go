package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
)

// BulletinTransformer implements Transformer using the domain parser with
// optional geocoding enrichment.
type BulletinTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a BulletinTransformer. Pass a nil geocoder to
// disable geocoding enrichment.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *BulletinTransformer {
	return &BulletinTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *BulletinTransformer) Transform(ctx context.Context, raw domain.RawBulletin) (domain.Forecast, error) {
	f, err := domain.BuildForecast(raw)
	if err != nil {
		return domain.Forecast{}, err
	}

	for i := range f.Tracks {
		f.Tracks[i] = domain.EnrichWithGeocoding(ctx, f.Tracks[i], t.geocoder, t.logger)
	}
	return f, nil
}

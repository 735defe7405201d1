package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding names the place nearest to the analysed (first)
// position of a track. A nil geocoder leaves the track untouched; a failed
// lookup only sets GeoSource to "failed".
func EnrichWithGeocoding(ctx context.Context, track StormTrack, geocoder Geocoder, logger *slog.Logger) StormTrack {
	if geocoder == nil {
		return track
	}
	if len(track.Points) == 0 {
		track.GeoSource = "original"
		return track
	}

	p := track.Points[0]
	result, err := geocoder.ReverseGeocode(ctx, p.Lat, p.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"storm", track.Name,
			"lat", p.Lat,
			"lon", p.Lon,
			"error", err,
		)
		track.GeoSource = "failed"
		return track
	}
	if result.FormattedAddress == "" {
		track.GeoSource = "original"
		return track
	}

	track.NearestPlace = result.FormattedAddress
	track.GeoSource = "reverse"
	return track
}

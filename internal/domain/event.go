package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RawBulletin is one retrieval of the bulletin text.
type RawBulletin struct {
	Source    string    `json:"source"`
	Text      string    `json:"-"`
	Checksum  string    `json:"checksum"` // hex SHA-256 of Text
	FetchedAt time.Time `json:"fetched_at"`
}

// NewRawBulletin wraps text with its checksum.
func NewRawBulletin(source, text string, fetchedAt time.Time) RawBulletin {
	sum := sha256.Sum256([]byte(text))
	return RawBulletin{
		Source:    source,
		Text:      text,
		Checksum:  hex.EncodeToString(sum[:]),
		FetchedAt: fetchedAt.UTC(),
	}
}

// TrackPoint is one converted forecast position.
type TrackPoint struct {
	LeadTime int     `json:"lead_time" yaml:"lead_time"` // hours from analysis
	Lat      float64 `json:"lat" yaml:"lat"`
	Lon      float64 `json:"lon" yaml:"lon"`
	Pressure float64 `json:"pressure" yaml:"pressure"` // hPa
	Wind     float64 `json:"wind" yaml:"wind"`         // knots
}

// StormTrack is the numeric form of a StormRecord, ready for publishing and
// plotting.
type StormTrack struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	ATCFID      string       `json:"atcf_id,omitempty" yaml:"atcf_id,omitempty"`
	IssueLabel  string       `json:"issue_label,omitempty" yaml:"issue_label,omitempty"`
	Points      []TrackPoint `json:"points" yaml:"points"`
	MinPressure float64      `json:"min_pressure" yaml:"min_pressure"`
	MaxWind     float64      `json:"max_wind" yaml:"max_wind"`
	LeadStart   int          `json:"lead_start" yaml:"lead_start"`
	LeadEnd     int          `json:"lead_end" yaml:"lead_end"`
	Dissipates  bool         `json:"dissipates" yaml:"dissipates"`

	// Geocoding enrichment fields.
	NearestPlace string `json:"nearest_place,omitempty" yaml:"nearest_place,omitempty"`
	GeoSource    string `json:"geo_source,omitempty" yaml:"geo_source,omitempty"` // "reverse", "original", "failed"

	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}

// Forecast is everything derived from one bulletin.
type Forecast struct {
	Bulletin    RawBulletin  `json:"bulletin"`
	IssueLabel  string       `json:"issue_label,omitempty"`
	Storms      ParseResult  `json:"storms"`
	Tracks      []StormTrack `json:"tracks"`
	ProcessedAt time.Time    `json:"processed_at"`
}

// Track returns the track for the named storm.
func (f Forecast) Track(name string) (StormTrack, bool) {
	for _, t := range f.Tracks {
		if t.Name == name {
			return t, true
		}
	}
	return StormTrack{}, false
}

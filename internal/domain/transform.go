package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BuildForecast splits, parses and converts a fetched bulletin.
func BuildForecast(raw RawBulletin) (Forecast, error) {
	lines := SplitLines(raw.Text)

	storms, err := ParseBulletin(lines)
	if err != nil {
		return Forecast{}, fmt.Errorf("parse bulletin: %w", err)
	}

	label := IssueLabel(lines)
	tracks := make([]StormTrack, 0, storms.Len())
	for _, s := range storms.Storms {
		track, err := ConvertRecord(s.Name, s.Record)
		if err != nil {
			return Forecast{}, err
		}
		track.IssueLabel = label
		track.ID = generateID(track.Name, track.ATCFID, label)
		tracks = append(tracks, track)
	}

	return Forecast{
		Bulletin:    raw,
		IssueLabel:  label,
		Storms:      storms,
		Tracks:      tracks,
		ProcessedAt: clock.Now(),
	}, nil
}

// ConvertRecord converts a record's raw tokens to numbers. Latitude and
// longitude lose their hemisphere letter and longitude is negated: only
// Northern and Western hemisphere positions are represented correctly.
func ConvertRecord(name string, rec StormRecord) (StormTrack, error) {
	n := len(rec.Lat)
	if len(rec.LeadTime) != n || len(rec.Lon) != n || len(rec.Pressure) != n || len(rec.Wind) != n {
		return StormTrack{}, &MalformedRecordError{Storm: name, Lengths: map[string]int{
			FieldLeadTime.String(): len(rec.LeadTime),
			FieldLat.String():      len(rec.Lat),
			FieldLon.String():      len(rec.Lon),
			FieldPressure.String(): len(rec.Pressure),
			FieldWind.String():     len(rec.Wind),
		}}
	}

	track := StormTrack{
		Name:        name,
		ATCFID:      rec.ID,
		Points:      make([]TrackPoint, 0, n),
		Dissipates:  rec.TerminalRows > 0,
		ProcessedAt: clock.Now(),
	}

	for i := 0; i < n; i++ {
		lead, err := strconv.Atoi(rec.LeadTime[i])
		if err != nil {
			return StormTrack{}, conversionError(name, FieldLeadTime, i, rec.LeadTime[i])
		}
		lat, err := parseDegrees(rec.Lat[i])
		if err != nil {
			return StormTrack{}, conversionError(name, FieldLat, i, rec.Lat[i])
		}
		lon, err := parseDegrees(rec.Lon[i])
		if err != nil {
			return StormTrack{}, conversionError(name, FieldLon, i, rec.Lon[i])
		}
		pressure, err := strconv.ParseFloat(rec.Pressure[i], 64)
		if err != nil {
			return StormTrack{}, conversionError(name, FieldPressure, i, rec.Pressure[i])
		}
		wind, err := strconv.ParseFloat(rec.Wind[i], 64)
		if err != nil {
			return StormTrack{}, conversionError(name, FieldWind, i, rec.Wind[i])
		}

		track.Points = append(track.Points, TrackPoint{
			LeadTime: lead,
			Lat:      lat,
			Lon:      -lon,
			Pressure: pressure,
			Wind:     wind,
		})
	}

	summarize(&track)
	return track, nil
}

// Label is the legend text for a track, e.g. "ANNA: Hour 0-72".
func (t StormTrack) Label() string {
	return fmt.Sprintf("%s: Hour %d-%d", t.Name, t.LeadStart, t.LeadEnd)
}

func conversionError(storm string, f Field, index int, token string) error {
	return fmt.Errorf("%w: storm %s %s[%d] = %q", ErrConversion, storm, f, index, token)
}

// parseDegrees drops the trailing hemisphere letter and parses the rest.
func parseDegrees(token string) (float64, error) {
	if token == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(strings.TrimRight(token, "NSEW"), 64)
}

// summarize fills the min/max fields from the points.
func summarize(t *StormTrack) {
	if len(t.Points) == 0 {
		return
	}
	t.MinPressure = math.Inf(1)
	t.MaxWind = math.Inf(-1)
	t.LeadStart = t.Points[0].LeadTime
	t.LeadEnd = t.Points[0].LeadTime
	for _, p := range t.Points {
		t.MinPressure = math.Min(t.MinPressure, p.Pressure)
		t.MaxWind = math.Max(t.MaxWind, p.Wind)
		t.LeadStart = min(t.LeadStart, p.LeadTime)
		t.LeadEnd = max(t.LeadEnd, p.LeadTime)
	}
}

// generateID produces a deterministic track ID so republishing the same
// bulletin yields the same Kafka keys.
func generateID(name, atcfID, issueLabel string) string {
	input := fmt.Sprintf("%s|%s|%s", name, atcfID, issueLabel)
	hash := sha256.Sum256([]byte(input))
	return strings.ToLower(name) + "-" + hex.EncodeToString(hash[:8])
}

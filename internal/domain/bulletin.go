package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Field identifies a column of a bulletin data row.
type Field int

// Data row columns, in the order they appear on the row.
const (
	FieldForecastTime Field = iota
	FieldForecastDate
	FieldLeadTime
	FieldLat
	FieldLon
	FieldPressure
	FieldWind

	numFields
)

func (f Field) String() string {
	switch f {
	case FieldForecastTime:
		return "forecast_time"
	case FieldForecastDate:
		return "forecast_date"
	case FieldLeadTime:
		return "lead_time"
	case FieldLat:
		return "lat"
	case FieldLon:
		return "lon"
	case FieldPressure:
		return "pressure"
	case FieldWind:
		return "wind"
	default:
		return "unknown"
	}
}

// StormRecord holds the raw tokens read for one storm. Values are kept as
// they appear in the bulletin; see ConvertRecord for numeric conversion.
type StormRecord struct {
	ID           string   `json:"id,omitempty" yaml:"id,omitempty"` // ATCF identifier
	ForecastTime []string `json:"forecast_time" yaml:"forecast_time"`
	ForecastDate []string `json:"forecast_date" yaml:"forecast_date"`
	LeadTime     []string `json:"lead_time" yaml:"lead_time"`
	Lat          []string `json:"lat" yaml:"lat"`
	Lon          []string `json:"lon" yaml:"lon"`
	Pressure     []string `json:"pressure" yaml:"pressure"`
	Wind         []string `json:"wind" yaml:"wind"`

	// TerminalRows counts POST-TROPICAL / CEASED rows. Each contributes a
	// forecast time and date but no lead time or position.
	TerminalRows int `json:"terminal_rows,omitempty" yaml:"terminal_rows,omitempty"`
}

func newStormRecord() StormRecord {
	return StormRecord{
		ForecastTime: []string{},
		ForecastDate: []string{},
		LeadTime:     []string{},
		Lat:          []string{},
		Lon:          []string{},
		Pressure:     []string{},
		Wind:         []string{},
	}
}

// column returns the sequence backing field f.
func (r *StormRecord) column(f Field) *[]string {
	switch f {
	case FieldForecastTime:
		return &r.ForecastTime
	case FieldForecastDate:
		return &r.ForecastDate
	case FieldLeadTime:
		return &r.LeadTime
	case FieldLat:
		return &r.Lat
	case FieldLon:
		return &r.Lon
	case FieldPressure:
		return &r.Pressure
	case FieldWind:
		return &r.Wind
	default:
		return nil
	}
}

// Len returns the number of token values recorded for field f.
func (r StormRecord) Len(f Field) int {
	if col := r.column(f); col != nil {
		return len(*col)
	}
	return 0
}

// validate checks the reconciled length invariant: all position columns
// share one length, and the time columns exceed it by TerminalRows.
func (r StormRecord) validate(name string) error {
	n := len(r.LeadTime)
	ok := len(r.Lat) == n && len(r.Lon) == n && len(r.Pressure) == n && len(r.Wind) == n &&
		len(r.ForecastTime) == n+r.TerminalRows && len(r.ForecastDate) == n+r.TerminalRows
	if ok {
		return nil
	}

	lengths := make(map[string]int, numFields)
	for f := FieldForecastTime; f < numFields; f++ {
		lengths[f.String()] = r.Len(f)
	}
	lengths["terminal_rows"] = r.TerminalRows
	return &MalformedRecordError{Storm: name, Lengths: lengths}
}

// Storm pairs a storm name with its record.
type Storm struct {
	Name   string      `json:"name" yaml:"name"`
	Record StormRecord `json:"record" yaml:"record"`
}

// ParseResult maps storm names to records, ordered by first appearance in
// the bulletin.
type ParseResult struct {
	Storms []Storm
	index  map[string]int
}

// put inserts or replaces the record for name, keeping the original position
// of a name seen before.
func (p *ParseResult) put(name string, rec StormRecord) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[name]; ok {
		p.Storms[i].Record = rec
		return
	}
	p.index[name] = len(p.Storms)
	p.Storms = append(p.Storms, Storm{Name: name, Record: rec})
}

// Get returns the record stored under name.
func (p ParseResult) Get(name string) (StormRecord, bool) {
	for _, s := range p.Storms {
		if s.Name == name {
			return s.Record, true
		}
	}
	return StormRecord{}, false
}

// Names returns the storm names in bulletin order.
func (p ParseResult) Names() []string {
	names := make([]string, len(p.Storms))
	for i, s := range p.Storms {
		names[i] = s.Name
	}
	return names
}

// Len returns the number of storms.
func (p ParseResult) Len() int { return len(p.Storms) }

// MarshalJSON encodes the result as a JSON object keyed by storm name,
// preserving bulletin order.
func (p ParseResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range p.Storms {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.Record)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SplitLines splits a whole bulletin into lines, dropping carriage returns.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// IssueLabel returns the issue time label printed on the fifth bulletin line
// (its fifth and sixth words), or "" when the header is shorter.
func IssueLabel(lines []string) string {
	if len(lines) < 5 {
		return ""
	}
	words := strings.Fields(lines[4])
	if len(words) < 6 {
		return ""
	}
	return strings.Join(words[4:6], " ")
}

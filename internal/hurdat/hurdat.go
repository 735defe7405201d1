// Package hurdat reads HURDAT2 best-track files and finds, for each intensity
// threshold, the calendar-earliest observation reaching it.
package hurdat

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Observation is one best-track data line.
type Observation struct {
	StormID    string  `json:"storm_id" yaml:"storm_id"`
	StormName  string  `json:"storm_name" yaml:"storm_name"`
	Date       string  `json:"date" yaml:"date"` // YYYYMMDD
	Time       string  `json:"time" yaml:"time"` // HHMM UTC
	Identifier string  `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Status     string  `json:"status" yaml:"status"`
	Lat        float64 `json:"lat" yaml:"lat"`
	Lon        float64 `json:"lon" yaml:"lon"`
	Wind       int     `json:"wind" yaml:"wind"`         // knots, -99 when missing
	Pressure   int     `json:"pressure" yaml:"pressure"` // hPa, -999 when missing
	Line       int     `json:"line" yaml:"line"`
}

// calendarKey orders observations by month, day and time of day, ignoring
// the year.
func (o Observation) calendarKey() int {
	mmdd, _ := strconv.Atoi(o.Date[4:])
	hhmm, _ := strconv.Atoi(o.Time)
	return mmdd*10000 + hhmm
}

// MonthDay returns the date without its year, e.g. "06-25".
func (o Observation) MonthDay() string {
	return o.Date[4:6] + "-" + o.Date[6:8]
}

// ErrFormat reports a line that is not valid HURDAT2.
var ErrFormat = errors.New("invalid HURDAT2 line")

const minDataFields = 8

// Parse reads every observation in r. Header lines (basin code first, e.g.
// "AL011851") set the storm for the data lines that follow them.
func Parse(r io.Reader) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	cr.LazyQuotes = true

	var (
		obs       []Observation
		stormID   string
		stormName string
	)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return obs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read hurdat: %w", err)
		}
		line, _ := cr.FieldPos(0)

		first := strings.TrimSpace(fields[0])
		if first == "" {
			continue
		}
		if isHeader(first) {
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: header without name", ErrFormat, line)
			}
			stormID = first
			stormName = strings.TrimSpace(fields[1])
			continue
		}

		o, err := parseData(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		o.StormID = stormID
		o.StormName = stormName
		o.Line = line
		obs = append(obs, o)
	}
}

// isHeader reports whether the first field is a storm id like AL011851
// rather than a YYYYMMDD date.
func isHeader(first string) bool {
	c := first[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func parseData(fields []string) (Observation, error) {
	if len(fields) < minDataFields {
		return Observation{}, fmt.Errorf("expected at least %d fields, got %d", minDataFields, len(fields))
	}
	for i := range fields[:minDataFields] {
		fields[i] = strings.TrimSpace(fields[i])
	}

	o := Observation{
		Date:       fields[0],
		Time:       fields[1],
		Identifier: fields[2],
		Status:     fields[3],
	}
	if len(o.Date) != 8 || !digits(o.Date) {
		return Observation{}, fmt.Errorf("date %q", o.Date)
	}
	if len(o.Time) != 4 || !digits(o.Time) {
		return Observation{}, fmt.Errorf("time %q", o.Time)
	}

	var err error
	if o.Lat, err = parseCoord(fields[4], 'N', 'S'); err != nil {
		return Observation{}, fmt.Errorf("latitude %q", fields[4])
	}
	if o.Lon, err = parseCoord(fields[5], 'E', 'W'); err != nil {
		return Observation{}, fmt.Errorf("longitude %q", fields[5])
	}
	if o.Wind, err = strconv.Atoi(fields[6]); err != nil {
		return Observation{}, fmt.Errorf("wind %q", fields[6])
	}
	if o.Pressure, err = strconv.Atoi(fields[7]); err != nil {
		return Observation{}, fmt.Errorf("pressure %q", fields[7])
	}
	return o, nil
}

// parseCoord parses values like "28.0N" or "94.8W"; the negative hemisphere
// letter flips the sign.
func parseCoord(s string, pos, neg byte) (float64, error) {
	if len(s) < 2 {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil {
		return 0, err
	}
	switch s[len(s)-1] {
	case pos:
		return v, nil
	case neg:
		return -v, nil
	default:
		return 0, strconv.ErrSyntax
	}
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ThresholdResult is the earliest observation at or above a wind threshold.
type ThresholdResult struct {
	Threshold   int         `json:"threshold" yaml:"threshold"` // knots
	Found       bool        `json:"found" yaml:"found"`
	Observation Observation `json:"observation,omitzero" yaml:"observation,omitempty"`
}

// DefaultThresholds returns 35 to 160 knots in steps of 5.
func DefaultThresholds() []int {
	thresholds := make([]int, 0, 26)
	for k := 35; k <= 160; k += 5 {
		thresholds = append(thresholds, k)
	}
	return thresholds
}

// EarliestByThreshold finds, for each threshold, the observation with wind
// at or above it that falls earliest in the calendar year. Ties keep file
// order.
func EarliestByThreshold(obs []Observation, thresholds []int) []ThresholdResult {
	ordered := slices.Clone(obs)
	slices.SortStableFunc(ordered, func(a, b Observation) int {
		return a.calendarKey() - b.calendarKey()
	})

	results := make([]ThresholdResult, len(thresholds))
	for i, k := range thresholds {
		results[i].Threshold = k
		for _, o := range ordered {
			if o.Wind >= k {
				results[i].Found = true
				results[i].Observation = o
				break
			}
		}
	}
	return results
}

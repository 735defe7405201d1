// Package report formats forecasts and threshold results for terminals and
// machine consumers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
	"github.com/couchcryptid/storm-bulletin-etl/internal/hurdat"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a -format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
	}
}

// BulletinDocument is the machine-readable view of one parsed bulletin.
type BulletinDocument struct {
	IssueLabel string              `json:"issue_label,omitempty" yaml:"issue_label,omitempty"`
	Checksum   string              `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Storms     []domain.Storm      `json:"storms" yaml:"storms"`
	Tracks     []domain.StormTrack `json:"tracks" yaml:"tracks"`
}

// NewBulletinDocument builds the document for a forecast.
func NewBulletinDocument(f domain.Forecast) BulletinDocument {
	storms := f.Storms.Storms
	if storms == nil {
		storms = []domain.Storm{}
	}
	tracks := f.Tracks
	if tracks == nil {
		tracks = []domain.StormTrack{}
	}
	return BulletinDocument{
		IssueLabel: f.IssueLabel,
		Checksum:   f.Bulletin.Checksum,
		Storms:     storms,
		Tracks:     tracks,
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as YAML with two-space indentation.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// WriteStormTable writes one summary row per storm track.
func WriteStormTable(w io.Writer, f domain.Forecast) error {
	if f.IssueLabel != "" {
		if _, err := fmt.Fprintf(w, "Issued %s\n\n", f.IssueLabel); err != nil {
			return err
		}
	}

	header := []string{"STORM", "ATCF", "HOURS", "POINTS", "MIN HPA", "MAX KT", "ENDS", "NEAREST"}
	rows := make([][]string, 0, len(f.Tracks))
	for _, t := range f.Tracks {
		ends := ""
		if t.Dissipates {
			ends = "yes"
		}
		rows = append(rows, []string{
			t.Name,
			orDash(t.ATCFID),
			fmt.Sprintf("%d-%d", t.LeadStart, t.LeadEnd),
			strconv.Itoa(len(t.Points)),
			strconv.FormatFloat(t.MinPressure, 'f', -1, 64),
			strconv.FormatFloat(t.MaxWind, 'f', -1, 64),
			orDash(ends),
			orDash(t.NearestPlace),
		})
	}
	return writeTable(w, header, rows)
}

// WriteThresholdTable writes the earliest observation per wind threshold.
func WriteThresholdTable(w io.Writer, results []hurdat.ThresholdResult) error {
	header := []string{"KT", "DATE", "TIME", "YEAR", "STORM", "ID", "WIND"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if !r.Found {
			rows = append(rows, []string{strconv.Itoa(r.Threshold), "-", "-", "-", "-", "-", "-"})
			continue
		}
		o := r.Observation
		rows = append(rows, []string{
			strconv.Itoa(r.Threshold),
			o.MonthDay(),
			o.Time,
			o.Date[:4],
			orDash(o.StormName),
			orDash(o.StormID),
			strconv.Itoa(o.Wind),
		})
	}
	return writeTable(w, header, rows)
}

// writeTable pads every column to its widest cell by display width.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	rule := make([]string, len(header))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}

	var sb strings.Builder
	writeRow(&sb, header, widths)
	writeRow(&sb, rule, widths)
	for _, row := range rows {
		writeRow(&sb, row, widths)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeRow(sb *strings.Builder, row []string, widths []int) {
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		sb.WriteString(cell)
		if i == len(widths)-1 {
			break
		}
		if pad := width - runewidth.StringWidth(cell); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString("  ")
	}
	sb.WriteString("\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

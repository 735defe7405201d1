// Package chart draws forecast storm tracks as a PNG plot.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
)

// Pressure scale for dot colors, hPa.
const (
	pressureMin = 930
	pressureMax = 1020
)

const (
	marginDegrees = 5
	width         = 1200
	height        = 800
)

// ErrNoTracks is returned when there is nothing to draw.
var ErrNoTracks = errors.New("no storm tracks to render")

// Render writes a PNG plot of the tracks to w. Each track is a black line
// with dots colored by central pressure and one legend entry per storm.
func Render(w io.Writer, title string, tracks []domain.StormTrack) error {
	series := make([]chart.Series, 0, len(tracks))
	bounds := newBounds()

	for _, t := range tracks {
		if len(t.Points) == 0 {
			continue
		}
		s := chart.ContinuousSeries{
			Name:    t.Label(),
			XValues: make([]float64, len(t.Points)),
			YValues: make([]float64, len(t.Points)),
			Style: chart.Style{
				StrokeColor:      drawing.ColorBlack,
				StrokeWidth:      1.5,
				DotWidth:         5,
				DotColorProvider: pressureColor(t.Points),
			},
		}
		for i, p := range t.Points {
			s.XValues[i] = p.Lon
			s.YValues[i] = p.Lat
			bounds.add(p.Lon, p.Lat)
		}
		series = append(series, s)
	}
	if len(series) == 0 {
		return ErrNoTracks
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: "Longitude (deg)",
			Range: &chart.ContinuousRange{
				Min: bounds.minX - marginDegrees,
				Max: bounds.maxX + marginDegrees,
			},
		},
		YAxis: chart.YAxis{
			Name: "Latitude (deg)",
			Range: &chart.ContinuousRange{
				Min: bounds.minY - marginDegrees,
				Max: bounds.maxY + marginDegrees,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// pressureColor maps each point's pressure onto the fixed viridis scale so
// colors are comparable across bulletins.
func pressureColor(points []domain.TrackPoint) chart.DotColorProvider {
	return func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
		if index < 0 || index >= len(points) {
			return drawing.ColorBlack
		}
		p := math.Max(pressureMin, math.Min(pressureMax, points[index].Pressure))
		return chart.Viridis(p, pressureMin, pressureMax)
	}
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func newBounds() *bounds {
	return &bounds{
		minX: math.Inf(1), maxX: math.Inf(-1),
		minY: math.Inf(1), maxY: math.Inf(-1),
	}
}

func (b *bounds) add(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

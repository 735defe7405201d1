package domain

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile("testdata/ukmet_sample.txt")
	require.NoError(t, err)
	return SplitLines(string(data))
}

func TestParseBulletin_SingleStormStopsAtFooter(t *testing.T) {
	lines := []string{
		"TROPICAL STORM ANNA",
		"1200UTC 12 24 25.0N 80.0W 1005 45",
		"",
		"THIS IS THE LAST ADVISORY",
		"HURRICANE NEVERREAD",
	}

	result, err := ParseBulletin(lines)
	require.NoError(t, err)

	want := []Storm{{
		Name: "ANNA",
		Record: StormRecord{
			ForecastTime: []string{"1200UTC"},
			ForecastDate: []string{"12"},
			LeadTime:     []string{"24"},
			Lat:          []string{"25.0N"},
			Lon:          []string{"80.0W"},
			Pressure:     []string{"1005"},
			Wind:         []string{"45"},
		},
	}}
	if diff := cmp.Diff(want, result.Storms); diff != "" {
		t.Errorf("storms mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBulletin_Sample(t *testing.T) {
	result, err := ParseBulletin(loadSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"ANNA", "BEN", "NEW_1"}, result.Names())

	anna, ok := result.Get("ANNA")
	require.True(t, ok)
	assert.Equal(t, "AL012021", anna.ID)
	assert.Equal(t, []string{"1200UTC", "0000UTC", "1200UTC", "0000UTC"}, anna.ForecastTime)
	assert.Equal(t, []string{"0", "12", "24"}, anna.LeadTime)
	assert.Equal(t, []string{"25.0N", "26.1N", "27.5N"}, anna.Lat)
	assert.NotContains(t, anna.Lat, "POST-TROPICAL")
	assert.Equal(t, 1, anna.TerminalRows)

	ben, ok := result.Get("BEN")
	require.True(t, ok)
	assert.Equal(t, "AL022021", ben.ID)
	assert.Equal(t, []string{"0", "12", "24"}, ben.LeadTime)
	assert.NotContains(t, ben.Lat, "CEASED")
	assert.NotContains(t, ben.Lon, "TRACKING")
	assert.Len(t, ben.ForecastDate, 4)

	newStorm, ok := result.Get("NEW_1")
	require.True(t, ok)
	assert.Empty(t, newStorm.ID)
	assert.Equal(t, []string{"24", "36"}, newStorm.LeadTime)
	assert.Equal(t, []string{"1008", "1006"}, newStorm.Pressure)

	_, ok = result.Get("IGNORED")
	assert.False(t, ok, "lines after the footer must not be read")
}

func TestParseBulletin_FieldLengthsAreReconciled(t *testing.T) {
	result, err := ParseBulletin(loadSample(t))
	require.NoError(t, err)

	for _, s := range result.Storms {
		rec := s.Record
		n := rec.Len(FieldLeadTime)
		for _, f := range []Field{FieldLat, FieldLon, FieldPressure, FieldWind} {
			assert.Equal(t, n, rec.Len(f), "%s %s", s.Name, f)
		}
		assert.Equal(t, n+rec.TerminalRows, rec.Len(FieldForecastTime), s.Name)
		assert.Equal(t, n+rec.TerminalRows, rec.Len(FieldForecastDate), s.Name)
	}
}

func TestParseBulletin_TerminalRowDropsOneLeadTime(t *testing.T) {
	tests := []struct {
		name   string
		marker string
	}{
		{"post-tropical", "0000UTC 24.05.2021 36 POST-TROPICAL"},
		{"ceased tracking", "0000UTC 24.05.2021 36 CEASED TRACKING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{
				"HURRICANE CARL",
				"1200UTC 22.05.2021 0 15.2N 45.3W 985 70",
				"0000UTC 23.05.2021 12 15.9N 47.0W 978 78",
				tt.marker,
			}

			result, err := ParseBulletin(lines)
			require.NoError(t, err)

			rec, ok := result.Get("CARL")
			require.True(t, ok)
			assert.Len(t, rec.ForecastTime, 3, "one per UTC line")
			assert.Len(t, rec.LeadTime, 2, "one fewer than UTC lines")
			assert.Equal(t, []string{"15.2N", "15.9N"}, rec.Lat)
			assert.Equal(t, []string{"45.3W", "47.0W"}, rec.Lon)
			assert.Equal(t, 1, rec.TerminalRows)
		})
	}
}

func TestParseBulletin_SynthesizedNames(t *testing.T) {
	t.Run("two unnamed systems in sequence", func(t *testing.T) {
		lines := []string{
			"TROPICAL STORM NEW",
			"1200UTC 23.05.2021 24 12.0N 30.0W 1008 30",
			"TROPICAL STORM NEW",
			"0000UTC 24.05.2021 36 13.0N 35.0W 1007 31",
		}

		result, err := ParseBulletin(lines)
		require.NoError(t, err)
		assert.Equal(t, []string{"NEW_1", "NEW_2"}, result.Names())
	})

	t.Run("named storms only", func(t *testing.T) {
		lines := []string{
			"TROPICAL STORM ANNA",
			"1200UTC 22.05.2021 0 25.0N 80.0W 1005 45",
			"HURRICANE BEN",
			"1200UTC 22.05.2021 0 15.2N 45.3W 985 70",
		}

		result, err := ParseBulletin(lines)
		require.NoError(t, err)
		assert.Equal(t, []string{"ANNA", "BEN"}, result.Names())
	})

	t.Run("counter restarts per call", func(t *testing.T) {
		lines := []string{"TROPICAL DEPRESSION NEW", "1200UTC 22.05.2021 0 10.0N 20.0W 1009 25"}

		first, err := ParseBulletin(lines)
		require.NoError(t, err)
		second, err := ParseBulletin(lines)
		require.NoError(t, err)

		assert.Equal(t, []string{"NEW_1"}, first.Names())
		assert.Equal(t, []string{"NEW_1"}, second.Names())
	})
}

func TestParseBulletin_FlushesStormAtEndOfInput(t *testing.T) {
	lines := []string{
		"TROPICAL STORM ANNA",
		"1200UTC 22.05.2021 0 25.0N 80.0W 1005 45",
		"HURRICANE BEN",
		"1200UTC 22.05.2021 0 15.2N 45.3W 985 70",
	}

	result, err := ParseBulletin(lines)
	require.NoError(t, err)

	ben, ok := result.Get("BEN")
	require.True(t, ok, "last storm must be kept without a footer")
	assert.Equal(t, []string{"985"}, ben.Pressure)
}

func TestParseBulletin_ForecastLineContinuesStorm(t *testing.T) {
	lines := []string{
		"TROPICAL STORM ANNA",
		"1200UTC 22.05.2021 0 25.0N 80.0W 1005 45",
		"FORECAST POSITION AT T+ 12 : 26.1N 79.2W",
		"0000UTC 23.05.2021 12 26.1N 79.2W 1003 48",
		"THIS IS THE END",
	}

	result, err := ParseBulletin(lines)
	require.NoError(t, err)

	assert.Equal(t, []string{"ANNA"}, result.Names())
	anna, _ := result.Get("ANNA")
	assert.Equal(t, []string{"0", "12"}, anna.LeadTime)
}

func TestParseBulletin_IgnoresLinesWhileIdle(t *testing.T) {
	lines := []string{
		"WTNT82 EGRR 221603",
		"1200UTC 22.05.2021 0 25.0N 80.0W 1005 45",
		"ATCF IDENTIFIER : AL992021",
		"THIS IS NOT A STORM",
	}

	result, err := ParseBulletin(lines)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
}

func TestParseBulletin_ATCF(t *testing.T) {
	t.Run("short line leaves id unset", func(t *testing.T) {
		result, err := ParseBulletin([]string{"HURRICANE BEN", "ATCF IDENTIFIER"})
		require.NoError(t, err)
		ben, _ := result.Get("BEN")
		assert.Empty(t, ben.ID)
	})

	t.Run("first identifier wins", func(t *testing.T) {
		result, err := ParseBulletin([]string{
			"HURRICANE BEN",
			"ATCF IDENTIFIER : AL022021",
			"ATCF IDENTIFIER : AL992021",
		})
		require.NoError(t, err)
		ben, _ := result.Get("BEN")
		assert.Equal(t, "AL022021", ben.ID)
	})
}

func TestParseBulletin_ExtraColumnsIgnored(t *testing.T) {
	result, err := ParseBulletin([]string{
		"HURRICANE BEN",
		"1200UTC 22.05.2021 0 15.2N 45.3W 985 70 EXTRA COLUMNS",
	})
	require.NoError(t, err)

	ben, _ := result.Get("BEN")
	assert.Equal(t, []string{"70"}, ben.Wind)
}

func TestParseBulletin_ExtractionError(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		line  int
	}{
		{"idle start line", []string{"", "TROPICAL STORM"}, 2},
		{"start line after storm", []string{
			"TROPICAL STORM ANNA",
			"1200UTC 22.05.2021 0 25.0N 80.0W 1005 45",
			"HURRICANE TROPICAL",
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBulletin(tt.lines)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrExtraction))

			var extractErr *ExtractionError
			require.ErrorAs(t, err, &extractErr)
			assert.Equal(t, tt.line, extractErr.Line)
			assert.Contains(t, err.Error(), tt.lines[tt.line-1])
		})
	}
}

func TestParseBulletin_MalformedRecord(t *testing.T) {
	lines := []string{
		"HURRICANE BEN",
		"1200UTC 22.05.2021 0 15.2N 45.3W 985 70",
		"0000UTC 23.05.2021 12 15.9N",
	}

	_, err := ParseBulletin(lines)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRecord))

	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "BEN", malformed.Storm)
	assert.Equal(t, 2, malformed.Lengths["lat"])
	assert.Equal(t, 1, malformed.Lengths["lon"])
	assert.Contains(t, err.Error(), "storm BEN")
}

func TestParseBulletin_ConcurrentCalls(t *testing.T) {
	lines := loadSample(t)

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := ParseBulletin(lines)
			if err == nil {
				results[i] = r.Names()
			}
		}(i)
	}
	wg.Wait()

	for _, names := range results {
		assert.Equal(t, []string{"ANNA", "BEN", "NEW_1"}, names)
	}
}

func TestParseResult_MarshalJSONKeepsOrder(t *testing.T) {
	result, err := ParseBulletin([]string{
		"HURRICANE ZETA",
		"1200UTC 22.05.2021 0 15.2N 45.3W 985 70",
		"TROPICAL STORM ALPHA",
		"1200UTC 22.05.2021 0 25.0N 80.0W 1005 45",
	})
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	s := string(data)
	assert.Less(t, strings.Index(s, `"ZETA"`), strings.Index(s, `"ALPHA"`))
	assert.Contains(t, s, `"lat":["15.2N"]`)
}

func TestIssueLabel(t *testing.T) {
	assert.Equal(t, "1200UTC 22.05.2021", IssueLabel(loadSample(t)))
	assert.Empty(t, IssueLabel([]string{"WTNT82 EGRR 221603"}))
	assert.Empty(t, IssueLabel([]string{"", "", "", "", "TOO SHORT"}))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"A", "B", ""}, SplitLines("A\r\nB\n"))
}

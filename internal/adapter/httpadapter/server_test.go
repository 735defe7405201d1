package httpadapter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-bulletin-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockSource struct {
	forecast domain.Forecast
	ok       bool
}

func (m *mockSource) Latest() (domain.Forecast, bool) { return m.forecast, m.ok }

const sampleBulletin = `WTNT82 EGRR 221603

SUMMARY OF TROPICAL CYCLONE ACTIVITY AND FORECAST TRACKS

MET OFFICE GLOBAL MODEL 1200UTC 22.05.2021

TROPICAL STORM ANNA       ANALYSED POSITION : 30.2N  75.1W

ATCF IDENTIFIER         : AL012021

   LEAD                  CENTRAL     MAXIMUM WIND
   VERIFYING TIME        POSITION    PRESSURE (MB)  SPEED (KNOTS)
   --------------        --------    -------------  -------------
   1200UTC 22.05.2021   0   30.2N  75.1W     1004           40
   0000UTC 23.05.2021  12   31.5N  73.8W     1001           45

THIS IS THE LAST MESSAGE IN THIS SERIES
`

func sampleForecast(t *testing.T) domain.Forecast {
	t.Helper()
	f, err := domain.BuildForecast(domain.RawBulletin{Text: sampleBulletin, Checksum: "abc"})
	require.NoError(t, err)
	return f
}

func newTestServer(readyErr error, source *mockSource) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, source, slog.Default())
}

func get(srv http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil, &mockSource{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil, &mockSource{}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("no forecast loaded yet"), &mockSource{}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, &mockSource{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStormsBeforeFirstForecast(t *testing.T) {
	rec := get(newTestServer(nil, &mockSource{}), "/storms")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no forecast yet", body["status"])
}

func TestStormsReturnsLatestForecast(t *testing.T) {
	rec := get(newTestServer(nil, &mockSource{forecast: sampleForecast(t), ok: true}), "/storms")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		IssueLabel string                     `json:"issue_label"`
		Storms     map[string]json.RawMessage `json:"storms"`
		Tracks     []domain.StormTrack        `json:"tracks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1200UTC 22.05.2021", body.IssueLabel)
	assert.Contains(t, body.Storms, "ANNA")
	require.Len(t, body.Tracks, 1)
	assert.Equal(t, "ANNA", body.Tracks[0].Name)
}

func TestStormByName(t *testing.T) {
	rec := get(newTestServer(nil, &mockSource{forecast: sampleForecast(t), ok: true}), "/storms/ANNA")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Track  domain.StormTrack  `json:"track"`
		Record domain.StormRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AL012021", body.Track.ATCFID)
	assert.Len(t, body.Track.Points, 2)
	assert.Equal(t, []string{"30.2N", "31.5N"}, body.Record.Lat)
}

func TestStormByNameUnknown(t *testing.T) {
	rec := get(newTestServer(nil, &mockSource{forecast: sampleForecast(t), ok: true}), "/storms/ZETA")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStormByNameBeforeFirstForecast(t *testing.T) {
	rec := get(newTestServer(nil, &mockSource{}), "/storms/ANNA")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

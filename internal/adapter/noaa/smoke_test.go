//go:build noaa

package noaa

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-bulletin-etl/internal/config"
	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
	"github.com/couchcryptid/storm-bulletin-etl/internal/observability"
)

// These tests hit the live NWS relay.
// Run with: go test -tags=noaa ./internal/adapter/noaa/ -v -count=1

func TestSmoke_FetchAndParse(t *testing.T) {
	c := NewClient(config.DefaultBulletinURL, 15*time.Second, clockwork.NewRealClock(),
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	raw, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Text)
	assert.Len(t, raw.Checksum, 64)

	_, err = domain.ParseBulletin(domain.SplitLines(raw.Text))
	require.NoError(t, err)
}

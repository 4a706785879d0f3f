//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/events-cli/internal/config"
)

// testConfig points every path at a temp dir and uses SQLite with a keyless
// geocoder, so commands run without network or a database server.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	return &config.Config{
		Log: config.LogConfig{Level: "error", Format: "json"},
		Pipeline: config.PipelineConfig{
			DataDir:       dataDir,
			OutputFile:    "normalized_events.json",
			ProgressEvery: 5,
		},
		Geocode: config.GeocodeConfig{
			Provider:        "opencage",
			RegionSuffix:    ", South Australia",
			TimeoutSecs:     1,
			RateLimit:       0,
			Concurrency:     1,
			BreakerFailures: 5,
			BreakerOpenSecs: 30,
		},
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(dir, "events.db"),
			Table:       "events",
			BatchSize:   500,
		},
		Load: config.LoadConfig{RequireCoordinates: false},
	}
}

func writeSource(t *testing.T, dataDir, key, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, key+".json"), []byte(body), 0o644))
}

const eventbriteFixture = `[
  {
    "Title": "Jazz in the Park",
    "Date & Time": "Sat, Nov 2 · 6:00 PM",
    "Location": "Rymill Park\nEast Terrace, Adelaide SA 5000",
    "Organizer": "Adelaide Jazz Society",
    "URL": "https://www.eventbrite.com.au/e/jazz-1"
  },
  {
    "Title": "Jazz in the Park",
    "Date & Time": "Sat, Nov 2 · 6:00 PM",
    "Location": "Rymill Park\nEast Terrace, Adelaide SA 5000",
    "Organizer": "Adelaide Jazz Society",
    "URL": "https://www.eventbrite.com.au/e/jazz-1"
  }
]`

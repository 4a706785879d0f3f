//go:build !integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/internal/store"
)

func TestNormalizeCmd_WritesOutput(t *testing.T) {
	cfg = testConfig(t)
	defer func() { cfg = nil }()
	cfg.Pipeline.Sources = []string{"eventbrite"}
	writeSource(t, cfg.Pipeline.DataDir, "eventbrite", eventbriteFixture)

	var out bytes.Buffer
	normalizeCmd.SetOut(&out)
	defer normalizeCmd.SetOut(nil)
	normalizeCmd.SetContext(context.Background())
	defer normalizeCmd.SetContext(nil)

	err := normalizeCmd.RunE(normalizeCmd, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.Pipeline.DataDir, "normalized_events.json"))
	require.NoError(t, err)

	var events []model.Event
	require.NoError(t, json.Unmarshal(data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Eventbrite", events[0].Source)
	require.NotNil(t, events[0].Title)
	assert.Equal(t, "Jazz in the Park", *events[0].Title)
	assert.Nil(t, events[0].Lat)

	assert.Contains(t, out.String(), "eventbrite")
	assert.Contains(t, out.String(), "1 events written")
}

func TestNormalizeCmd_MissingSourcesStillWritesFile(t *testing.T) {
	cfg = testConfig(t)
	defer func() { cfg = nil }()

	normalizeCmd.SetOut(&bytes.Buffer{})
	defer normalizeCmd.SetOut(nil)
	normalizeCmd.SetContext(context.Background())
	defer normalizeCmd.SetContext(nil)

	require.NoError(t, normalizeCmd.RunE(normalizeCmd, nil))

	data, err := os.ReadFile(filepath.Join(cfg.Pipeline.DataDir, "normalized_events.json"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestNormalizeCmd_InvalidConfig(t *testing.T) {
	cfg = testConfig(t)
	defer func() { cfg = nil }()
	cfg.Geocode.Provider = "nominatim"

	err := normalizeCmd.RunE(normalizeCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestLoadCmd_SQLite(t *testing.T) {
	cfg = testConfig(t)
	defer func() { cfg = nil }()

	lat, lng := -34.9285, 138.6007
	title := "Fringe Opening Night"
	link := "https://example.com/fringe"
	events := []model.Event{
		{Title: &title, Link: &link, Source: "Adelaide Festival", Lat: &lat, Lng: &lng, Features: []string{}},
		{Title: &title, Link: &link, Source: "Adelaide Festival", Lat: &lat, Lng: &lng, Features: []string{}},
	}
	data, err := json.Marshal(events)
	require.NoError(t, err)
	input := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(input, data, 0o644))

	loadInput = input
	defer func() { loadInput = "" }()

	var out bytes.Buffer
	loadCmd.SetOut(&out)
	defer loadCmd.SetOut(nil)
	loadCmd.SetContext(context.Background())
	defer loadCmd.SetContext(nil)

	require.NoError(t, loadCmd.RunE(loadCmd, nil))
	assert.Contains(t, out.String(), "1 rows upserted")

	st, err := store.NewSQLite(cfg.Store.DatabaseURL, cfg.Store.Table)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	n, err := st.CountEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLoadCmd_MissingInput(t *testing.T) {
	cfg = testConfig(t)
	defer func() { cfg = nil }()

	loadCmd.SetContext(context.Background())
	defer loadCmd.SetContext(nil)

	err := loadCmd.RunE(loadCmd, nil)
	require.Error(t, err)
}

func TestRunCmd_RecordsRun(t *testing.T) {
	cfg = testConfig(t)
	defer func() { cfg = nil }()
	writeSource(t, cfg.Pipeline.DataDir, "eventbrite", eventbriteFixture)

	var out bytes.Buffer
	runCmd.SetOut(&out)
	defer runCmd.SetOut(nil)
	runCmd.SetContext(context.Background())
	defer runCmd.SetContext(nil)

	require.NoError(t, runCmd.RunE(runCmd, nil))
	assert.Contains(t, out.String(), "1 rows upserted")

	st, err := store.NewSQLite(cfg.Store.DatabaseURL, cfg.Store.Table)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 1, runs[0].Normalized)
	assert.Equal(t, int64(1), runs[0].Loaded)
	assert.Len(t, runs[0].Sources, 5)

	var list bytes.Buffer
	runsListCmd.SetOut(&list)
	defer runsListCmd.SetOut(nil)
	runsListCmd.SetContext(context.Background())
	defer runsListCmd.SetContext(nil)

	require.NoError(t, runsListCmd.RunE(runsListCmd, nil))
	assert.Contains(t, list.String(), truncateID(runs[0].ID))
	assert.Contains(t, list.String(), "1/5")
}

func TestConfigShowCmd_Redacts(t *testing.T) {
	cfg = testConfig(t)
	defer func() { cfg = nil }()
	cfg.Geocode.OpenCageKey = "oc-secret"
	cfg.Store.DatabaseURL = "postgres://user:pw@localhost/events"

	var out bytes.Buffer
	configShowCmd.SetOut(&out)
	defer configShowCmd.SetOut(nil)

	require.NoError(t, configShowCmd.RunE(configShowCmd, nil))
	assert.Contains(t, out.String(), "********")
	assert.NotContains(t, out.String(), "oc-secret")
	assert.NotContains(t, out.String(), "pw@localhost")
	assert.Contains(t, out.String(), "South Australia")
}

func TestFormatSources(t *testing.T) {
	cfg = testConfig(t)
	defer func() { cfg = nil }()
	writeSource(t, cfg.Pipeline.DataDir, "ticketmaster", "[]")

	var out bytes.Buffer
	sourcesCmd.SetOut(&out)
	defer sourcesCmd.SetOut(nil)

	require.NoError(t, sourcesCmd.RunE(sourcesCmd, nil))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 6)
	assert.Contains(t, string(lines[1]), "adelaidefestival")
	assert.Contains(t, string(lines[5]), "ticketmaster")
	assert.Contains(t, string(lines[5]), "yes")
	assert.Contains(t, string(lines[2]), "location_block")
	assert.Contains(t, string(lines[2]), "no")
}

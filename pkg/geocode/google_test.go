package geocode

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleGeocode_Rooftop(t *testing.T) {
	var q atomic.Value
	srv := jsonServer(t, http.StatusOK, `{
		"status": "OK",
		"results": [{
			"geometry": {
				"location": {"lat": -34.9212, "lng": 138.5995},
				"location_type": "ROOFTOP"
			},
			"formatted_address": "King William St, Adelaide SA 5000"
		}]
	}`, nil, &q)

	g := NewGoogle("test-key", WithHTTPClient(newRewriteClient(srv.URL, googleGeocodeURL)), WithRateLimit(0))

	result, err := g.Geocode(context.Background(), "King William St, South Australia")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, -34.9212, result.Latitude, 0.0001)
	assert.InDelta(t, 138.5995, result.Longitude, 0.0001)
	assert.Equal(t, "google", result.Source)
	assert.Equal(t, "rooftop", result.Quality)

	params, err := url.ParseQuery(q.Load().(string))
	require.NoError(t, err)
	assert.Equal(t, "King William St, South Australia", params.Get("address"))
	assert.Equal(t, "test-key", params.Get("key"))
}

func TestGoogleGeocode_NoResults(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"status": "ZERO_RESULTS", "results": []}`, nil, nil)
	g := NewGoogle("test-key", WithHTTPClient(newRewriteClient(srv.URL, googleGeocodeURL)), WithRateLimit(0))

	result, err := g.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestGoogleGeocode_HTTPError(t *testing.T) {
	srv := jsonServer(t, http.StatusInternalServerError, `oops`, nil, nil)
	g := NewGoogle("test-key", WithHTTPClient(newRewriteClient(srv.URL, googleGeocodeURL)), WithRateLimit(0))

	_, err := g.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGoogleGeocode_NoKey(t *testing.T) {
	g := NewGoogle("")
	assert.False(t, g.Available())
	_, err := g.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key not configured")
}

func TestGoogleLocationTypeToQuality(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ROOFTOP", "rooftop"},
		{"RANGE_INTERPOLATED", "range"},
		{"GEOMETRIC_CENTER", "centroid"},
		{"APPROXIMATE", "approximate"},
		{"something-else", "approximate"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, googleLocationTypeToQuality(tt.in), tt.in)
	}
}

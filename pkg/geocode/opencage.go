package geocode

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

const openCageURL = "https://api.opencagedata.com/geocode/v1/json"

type openCageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Confidence int    `json:"confidence"`
		Formatted  string `json:"formatted"`
	} `json:"results"`
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

// OpenCage geocodes through the OpenCage Data API.
type OpenCage struct {
	key string
	settings
}

// NewOpenCage creates an OpenCage provider.
func NewOpenCage(key string, opts ...Option) *OpenCage {
	return &OpenCage{key: key, settings: newSettings(opts)}
}

// Name implements Provider.
func (p *OpenCage) Name() string { return ProviderOpenCage }

// Available implements Provider.
func (p *OpenCage) Available() bool { return p.key != "" }

// Geocode implements Provider. Only the first result is requested.
func (p *OpenCage) Geocode(ctx context.Context, query string) (*Result, error) {
	if p.key == "" {
		return nil, eris.New("geocode: opencage api key not configured")
	}
	if err := p.waitTurn(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: opencage rate limit")
	}
	return p.lookup(ctx, query)
}

// lookup issues the request without waiting on the rate limiter. Callers
// check Available first.
func (p *OpenCage) lookup(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":     {query},
		"key":   {p.key},
		"limit": {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openCageURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: opencage build request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: opencage request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: opencage returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: opencage read body")
	}

	var ocResp openCageResponse
	if err := json.Unmarshal(body, &ocResp); err != nil {
		return nil, eris.Wrap(err, "geocode: opencage parse response")
	}

	if len(ocResp.Results) == 0 {
		return &Result{Matched: false, Source: ProviderOpenCage}, nil
	}

	top := ocResp.Results[0]
	return &Result{
		Latitude:  top.Geometry.Lat,
		Longitude: top.Geometry.Lng,
		Source:    ProviderOpenCage,
		Quality:   openCageConfidenceToQuality(top.Confidence),
		Matched:   true,
	}, nil
}

// openCageConfidenceToQuality maps OpenCage's 0-10 bounding-box confidence
// onto the rooftop/range/centroid/approximate taxonomy.
func openCageConfidenceToQuality(c int) string {
	switch {
	case c >= 9:
		return "rooftop"
	case c >= 7:
		return "range"
	case c >= 5:
		return "centroid"
	default:
		return "approximate"
	}
}

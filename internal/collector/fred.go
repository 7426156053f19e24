package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/guregu/null/v6"

	"FuelWatch/internal/model"
)

// GallonsPerBarrel converts USD/gallon quotes to USD/bbl.
const GallonsPerBarrel = 42.0

// seriesSpec maps a tracked series to its FRED identifier and quote unit.
type seriesSpec struct {
	fredID       string
	gallonQuoted bool
}

// FREDFetcher implements Fetcher against the FRED observations API.
type FREDFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	series map[model.SeriesID]seriesSpec
}

// NewFREDFetcher creates a fetcher for the two tracked series. The
// diesel series is quoted in USD/gallon and converted to USD/bbl.
func NewFREDFetcher(baseURL, apiKey, dieselSeriesID, crudeSeriesID string) *FREDFetcher {
	return &FREDFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 20 * time.Second,
		},
		series: map[model.SeriesID]seriesSpec{
			model.SeriesDiesel: {fredID: dieselSeriesID, gallonQuoted: true},
			model.SeriesCrude:  {fredID: crudeSeriesID},
		},
	}
}

func (f *FREDFetcher) Name() string { return "fred" }

// fredResponse is the expected JSON shape from the observations endpoint.
// Unpublished days carry "." as their value.
type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

func (f *FREDFetcher) Fetch(series model.SeriesID, start, end time.Time) ([]model.Observation, error) {
	spec, ok := f.series[series]
	if !ok || !series.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeries, series)
	}
	if start.After(end) {
		return nil, fmt.Errorf("fetch %s: start %s after end %s", series, model.FormatDay(start), model.FormatDay(end))
	}

	q := url.Values{}
	q.Set("series_id", spec.fredID)
	q.Set("api_key", f.APIKey)
	q.Set("file_type", "json")
	q.Set("observation_start", model.FormatDay(start))
	q.Set("observation_end", model.FormatDay(end))
	q.Set("sort_order", "asc")
	endpoint := fmt.Sprintf("%s/series/observations?%s", f.BaseURL, q.Encode())

	resp, err := f.Client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w (%v)", series, ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		switch {
		case resp.StatusCode == http.StatusBadRequest,
			resp.StatusCode == http.StatusUnauthorized,
			resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("fetch %s: %w: status %d, body: %s", series, ErrAuthentication, resp.StatusCode, string(body))
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("fetch %s: %w: status %d", series, ErrRateLimited, resp.StatusCode)
		default:
			return nil, fmt.Errorf("fetch %s: %w: status %d, body: %s", series, ErrTransient, resp.StatusCode, string(body))
		}
	}

	var fr fredResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("fetch %s: decode response: %w", series, err)
	}

	obs := make([]model.Observation, 0, len(fr.Observations))
	for _, o := range fr.Observations {
		if o.Value == "" || o.Value == "." {
			continue // not published for this day
		}
		day, err := model.ParseDay(o.Date)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: bad date %q: %w", series, o.Date, err)
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: bad value %q on %s: %w", series, o.Value, o.Date, err)
		}
		if spec.gallonQuoted {
			v *= GallonsPerBarrel
		}
		obs = append(obs, model.Observation{
			Series: series,
			Date:   day,
			Value:  null.FloatFrom(v),
		})
	}

	// Ensure ascending date order
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, nil
}

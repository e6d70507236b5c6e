// Package routing wraps the external point-to-point directions provider.
// It exposes exactly one operation: the driving duration between two
// coordinates. Every failure mode collapses to ok=false so callers can apply
// a uniform "no travel time" policy without inspecting errors.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/snagao/tripcraft/backend/internal/domain"
)

// Client is the lookup interface the recalculation engine depends on.
// Implementations must never panic or return partial results: a lookup either
// yields whole minutes with ok=true, or ok=false.
type Client interface {
	Duration(ctx context.Context, origin, dest domain.Coordinates) (minutes int, ok bool)
}

// DirectionsClient calls a Google-Directions-style HTTP endpoint:
// GET {baseURL}?origin=lat,lng&destination=lat,lng&mode=driving&key=...
// returning JSON with a top-level status and routes[0].legs[0].duration.value
// in seconds.
//
// No retries: a transient failure simply leaves one leg without a travel
// time, and the next structural change to the day recomputes it anyway.
type DirectionsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	mode       string
	log        *slog.Logger
}

// NewDirectionsClient constructs a DirectionsClient. The timeout bounds each
// lookup end to end; a timed-out lookup is reported as ok=false like any
// other failure. Pass nil for log to use the default logger.
func NewDirectionsClient(baseURL, apiKey string, timeout time.Duration, log *slog.Logger) *DirectionsClient {
	if log == nil {
		log = slog.Default()
	}
	return &DirectionsClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		mode:       "driving",
		log:        log,
	}
}

// directionsResponse mirrors the subset of the provider payload we read.
// Duration value is a pointer so a missing field is distinguishable from 0.
type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration struct {
				Value *int64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// Duration returns the driving time between origin and dest in whole minutes,
// rounding half-up from the provider's seconds. ok is false on transport
// errors, non-2xx responses, a non-OK provider status, an empty route list,
// or a payload missing the duration field.
func (c *DirectionsClient) Duration(ctx context.Context, origin, dest domain.Coordinates) (int, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.lookupURL(origin, dest), nil)
	if err != nil {
		c.log.ErrorContext(ctx, "routing: build request", "error", err)
		return 0, false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "routing: lookup failed", "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.ErrorContext(ctx, "routing: unexpected response status", "status", resp.StatusCode)
		return 0, false
	}

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.ErrorContext(ctx, "routing: decode response", "error", err)
		return 0, false
	}

	if body.Status != "OK" {
		c.log.ErrorContext(ctx, "routing: provider status not OK", "provider_status", body.Status)
		return 0, false
	}
	if len(body.Routes) == 0 || len(body.Routes[0].Legs) == 0 {
		c.log.ErrorContext(ctx, "routing: response has no routes")
		return 0, false
	}
	seconds := body.Routes[0].Legs[0].Duration.Value
	if seconds == nil {
		c.log.ErrorContext(ctx, "routing: response missing duration")
		return 0, false
	}

	return int(math.Round(float64(*seconds) / 60.0)), true
}

// lookupURL builds the provider query for one origin/destination pair.
func (c *DirectionsClient) lookupURL(origin, dest domain.Coordinates) string {
	q := url.Values{}
	q.Set("origin", formatCoords(origin))
	q.Set("destination", formatCoords(dest))
	q.Set("mode", c.mode)
	q.Set("key", c.apiKey)
	return c.baseURL + "?" + q.Encode()
}

// formatCoords renders coordinates as the "lat,lng" pair the provider expects.
func formatCoords(c domain.Coordinates) string {
	return fmt.Sprintf("%s,%s",
		strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		strconv.FormatFloat(c.Longitude, 'f', -1, 64))
}

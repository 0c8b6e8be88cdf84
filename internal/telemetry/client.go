package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Samsara API endpoint.
const DefaultBaseURL = "https://api.samsara.com"

// statTypes is the stat selection requested from the provider.
const statTypes = "gps,obdOdometerMeters,gpsOdometerMeters,engineStates"

// vehicleLimit caps the fleet listing page size.
const vehicleLimit = "200"

// Client is a thin bearer-token client for the two Samsara endpoints this
// service consumes.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates a Client. An empty baseURL falls back to
// DefaultBaseURL; a zero timeout disables the client-side deadline.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("samsara %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		msg := string(body)
		if msg == "" {
			msg = res.Status
		}
		return fmt.Errorf("samsara %s %d: %s", path, res.StatusCode, msg)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode samsara %s response: %w", path, err)
	}
	return nil
}

// Vehicles lists the fleet's vehicle descriptors.
func (c *Client) Vehicles(ctx context.Context) ([]Vehicle, error) {
	var out struct {
		Data []Vehicle `json:"data"`
	}
	q := url.Values{"limit": {vehicleLimit}}
	if err := c.get(ctx, "/fleet/vehicles", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// VehicleStats lists the latest per-vehicle stat snapshots.
func (c *Client) VehicleStats(ctx context.Context) ([]VehicleStat, error) {
	var out struct {
		Data []VehicleStat `json:"data"`
	}
	q := url.Values{"types": {statTypes}}
	if err := c.get(ctx, "/fleet/vehicles/stats", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Fetch retrieves the vehicle list and the stat snapshots. A failed
// vehicle-list fetch aborts the whole sync; a failed stats fetch degrades
// silently to an empty stat set, since location and odometer data is less
// critical than the asset list itself.
func (c *Client) Fetch(ctx context.Context) ([]Vehicle, []VehicleStat, error) {
	vehicles, err := c.Vehicles(ctx)
	if err != nil {
		return nil, nil, err
	}
	stats, err := c.VehicleStats(ctx)
	if err != nil {
		slog.Warn("vehicle stats fetch failed, continuing without stats", "error", err)
		stats = nil
	}
	return vehicles, stats, nil
}

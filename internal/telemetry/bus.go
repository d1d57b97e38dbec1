package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/marinerstack/mariner-guard/internal/cache"
	"github.com/marinerstack/mariner-guard/internal/models"
)

const targetsCacheKey = "telemetry:targets"

// BusClient adapts the vessel data bus HTTP API to the Provider interface.
// Legacy provider shapes are normalized here so the engines only ever see
// typed models.
type BusClient struct {
	baseURL       string
	ownVesselPath string
	targetsPath   string
	httpClient    *http.Client
	cache         cache.Provider
	targetsTTL    time.Duration
}

// NewBusClient constructs a client targeting the configured data bus. The
// cache bounds target-list request load; pass cache.NoopProvider{} to disable.
func NewBusClient(baseURL, ownVesselPath, targetsPath string, timeout time.Duration, cacheProvider cache.Provider, targetsTTL time.Duration) *BusClient {
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &BusClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		ownVesselPath: ownVesselPath,
		targetsPath:   targetsPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:      cacheProvider,
		targetsTTL: targetsTTL,
	}
}

// GetOwnVessel fetches the current own-vessel kinematics.
func (c *BusClient) GetOwnVessel(ctx context.Context) (models.OwnVessel, error) {
	if c == nil || c.baseURL == "" {
		return models.OwnVessel{}, fmt.Errorf("telemetry bus not configured")
	}

	var response struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		SpeedKts  float64  `json:"speed"`
		CourseDeg float64  `json:"course"`
	}
	if err := c.getJSON(ctx, c.baseURL+c.ownVesselPath, &response); err != nil {
		return models.OwnVessel{}, fmt.Errorf("telemetry own-vessel request failed: %w", err)
	}

	own := models.OwnVessel{SpeedKts: response.SpeedKts, CourseDeg: response.CourseDeg}
	if response.Latitude != nil && response.Longitude != nil {
		pos := models.Position{Latitude: *response.Latitude, Longitude: *response.Longitude}
		if pos.Valid() {
			own.Position = &pos
		}
	}
	return own, nil
}

// GetTargets fetches the resolved target list, served from the short-TTL
// cache when fresh.
func (c *BusClient) GetTargets(ctx context.Context) ([]models.Target, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("telemetry bus not configured")
	}

	if cached, err := c.cache.Get(ctx, targetsCacheKey); err == nil {
		var targets []models.Target
		if err := json.Unmarshal(cached, &targets); err == nil {
			return targets, nil
		}
	}

	var response struct {
		Targets []struct {
			ID        string   `json:"id"`
			Name      string   `json:"name"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
			SpeedKts  float64  `json:"speed"`
			CourseDeg float64  `json:"course"`
			ShipType  string   `json:"ship_type"`
			Callsign  string   `json:"callsign"`
		} `json:"targets"`
	}
	if err := c.getJSON(ctx, c.baseURL+c.targetsPath, &response); err != nil {
		return nil, fmt.Errorf("telemetry targets request failed: %w", err)
	}

	targets := make([]models.Target, 0, len(response.Targets))
	for _, t := range response.Targets {
		target := models.Target{
			ID:        t.ID,
			Name:      t.Name,
			SpeedKts:  t.SpeedKts,
			CourseDeg: t.CourseDeg,
			ShipType:  t.ShipType,
			Callsign:  t.Callsign,
		}
		if t.Latitude != nil && t.Longitude != nil {
			pos := models.Position{Latitude: *t.Latitude, Longitude: *t.Longitude}
			if pos.Valid() {
				target.Position = &pos
			}
		}
		targets = append(targets, target)
	}

	if c.targetsTTL > 0 {
		if payload, err := json.Marshal(targets); err == nil {
			_ = c.cache.Set(ctx, targetsCacheKey, payload, c.targetsTTL)
		}
	}
	return targets, nil
}

func (c *BusClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

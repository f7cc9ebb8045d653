package clustersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmarsh417/hoopcast/internal/core/adjust"
	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

// Client fetches the opaque pairing adjustment from the clustering
// service. The pipeline treats every failure here as "no signal", so the
// client only reports errors, never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// ClusterAdjustment returns the additive signal for a pairing.
// Implements pipeline.ClusterSource.
func (c *Client) ClusterAdjustment(ctx context.Context, homeID, awayID string) (*adjust.ClusterSignal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := url.Values{
		"home": {homeID},
		"away": {awayID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/adjustment?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	telemetry.Debugf("clustersvc: %s vs %s -> %d (%s)", homeID, awayID, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clustersvc: status %d", resp.StatusCode)
	}

	var payload struct {
		PaceDelta        float64 `json:"pace_delta"`
		ScoringDeltaHome float64 `json:"scoring_delta_home"`
		ScoringDeltaAway float64 `json:"scoring_delta_away"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse adjustment: %w", err)
	}

	return &adjust.ClusterSignal{
		PaceDelta:        payload.PaceDelta,
		ScoringDeltaHome: payload.ScoringDeltaHome,
		ScoringDeltaAway: payload.ScoringDeltaAway,
	}, nil
}

package modelstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmarsh417/hoopcast/internal/core/model"
	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

// Client talks to the remote model blob store. The store keys saves on the
// parent version (If-Match) and answers 412 when the caller is stale, so
// the CAS contract survives multiple engine processes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

func (c *Client) Load(ctx context.Context) (model.RatingModel, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.RatingModel{}, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/model", nil)
	if err != nil {
		return model.RatingModel{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.RatingModel{}, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return model.RatingModel{}, model.ErrNotFound
	default:
		return model.RatingModel{}, fmt.Errorf("load model: status %d", resp.StatusCode)
	}

	var m model.RatingModel
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return model.RatingModel{}, fmt.Errorf("decode model: %w", err)
	}
	return m, nil
}

func (c *Client) Save(ctx context.Context, m model.RatingModel, parentVersion string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal model: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/model", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Match", parentVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	telemetry.Debugf("modelstore: PUT /model -> %d (%s)", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusPreconditionFailed:
		telemetry.Metrics.ModelConflicts.Inc()
		return "", model.ErrVersionConflict
	default:
		return "", fmt.Errorf("save model: status %d", resp.StatusCode)
	}

	var out struct {
		CommitID string `json:"commit_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.CommitID == "" {
		// Older store builds answer with an empty body; the model version
		// is the commit id in that case.
		return m.Version, nil
	}
	return out.CommitID, nil
}

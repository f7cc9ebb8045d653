package clustersvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterAdjustment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/adjustment", r.URL.Path)
		assert.Equal(t, "BOS", r.URL.Query().Get("home"))
		assert.Equal(t, "MIA", r.URL.Query().Get("away"))
		w.Write([]byte(`{"pace_delta": 1.4, "scoring_delta_home": 0.8, "scoring_delta_away": -0.3}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	sig, err := c.ClusterAdjustment(context.Background(), "BOS", "MIA")
	require.NoError(t, err)

	assert.InDelta(t, 1.4, sig.PaceDelta, 1e-9)
	assert.InDelta(t, 0.8, sig.ScoringDeltaHome, 1e-9)
	assert.InDelta(t, -0.3, sig.ScoringDeltaAway, 1e-9)
}

func TestClusterAdjustmentErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ClusterAdjustment(context.Background(), "BOS", "MIA")
	assert.Error(t, err)
}

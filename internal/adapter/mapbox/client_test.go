package mapbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-wind-etl/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	c := NewClient(testToken, timeout, observability.NewMetrics(), observability.DiscardLogger())
	c.baseURL = baseURL
	return c
}

func TestClient_ForwardGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/MACE HEAD, Ireland.json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		resp := response{
			Features: []feature{
				{
					Center:    []float64{-9.901, 53.326},
					PlaceName: "Mace Head, County Galway, Ireland",
					Text:      "Mace Head",
					Relevance: 0.9,
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.ForwardGeocode(context.Background(), "MACE HEAD", "Ireland")
	require.NoError(t, err)

	assert.InDelta(t, 53.326, result.Lat, 1e-9)
	assert.InDelta(t, -9.901, result.Lon, 1e-9)
	assert.Equal(t, "Mace Head, County Galway, Ireland", result.FormattedAddress)
	assert.Equal(t, "Mace Head", result.PlaceName)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("success")), 1e-9)
}

func TestClient_ForwardGeocode_NoRegion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/VALENTIA.json", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{}))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).ForwardGeocode(context.Background(), " VALENTIA ", "")
	require.NoError(t, err)
}

func TestClient_ForwardGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.ForwardGeocode(context.Background(), "NONEXISTENT", "Ireland")
	require.NoError(t, err)
	assert.Zero(t, result.Lat)
	assert.Empty(t, result.FormattedAddress)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("empty")), 1e-9)
}

func TestClient_ForwardGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.ForwardGeocode(context.Background(), "MACE HEAD", "Ireland")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("error")), 1e-9)
}

func TestClient_ForwardGeocode_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).ForwardGeocode(context.Background(), "MACE HEAD", "")
	require.ErrorContains(t, err, "decode response")
}

func TestClient_ForwardGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).ForwardGeocode(context.Background(), "MACE HEAD", "Ireland")
	require.Error(t, err)
}

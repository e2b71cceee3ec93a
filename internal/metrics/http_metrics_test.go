package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics("price-lookup")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/buscar", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/api/buscar", "/api/buscar", "/api/fail", "/nope"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("price-lookup", "GET", "/api/buscar", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("price-lookup", "GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusCodeCategoryCounter.WithLabelValues("price-lookup", "5xx", "GET", "/api/fail")))
}

func TestObserveSearchAndRate(t *testing.T) {
	m := NewHTTPMetrics("price-lookup")

	m.ObserveSearch("barcode", "ok", 1)
	m.ObserveSearch("barcode", "DataSourceError", 0)
	m.ObserveRateLookup("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchCounter.WithLabelValues("price-lookup", "barcode", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchCounter.WithLabelValues("price-lookup", "barcode", "DataSourceError")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLookupCounter.WithLabelValues("price-lookup", "ok")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := NewHTTPMetrics("price-lookup")
	m.ObserveRateLookup("NotFoundError")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `retail_rate_lookups_total{outcome="NotFoundError",service="price-lookup"} 1`)
}

func TestNewHTTPMetrics_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewHTTPMetrics("a")
		NewHTTPMetrics("b")
	})
}

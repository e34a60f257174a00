package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New("storefront")
	r.CheckoutSession("USD", OutcomeCreated)
	r.CheckoutSession("USD", OutcomeCreated)
	r.CheckoutSession("JPY", OutcomeReplayed)
	r.CurrencyFallback("ZZ")
	r.OrderLookup("index", "found")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.sessions.WithLabelValues("USD", OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sessions.WithLabelValues("JPY", OutcomeReplayed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks.WithLabelValues("ZZ")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lookups.WithLabelValues("index", "found")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.CheckoutSession("USD", OutcomeFailed)
		r.CurrencyFallback("ZZ")
		r.OrderLookup("scan", "miss")
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := New("storefront")

	router := gin.New()
	router.Use(rec.Middleware())
	router.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(rec.Handler()))

	for _, path := range []string{"/api/products/1", "/api/products/2", "/nope"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.requests.WithLabelValues(http.MethodGet, "/api/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "storefront_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/events/:id", "200"))

	for _, path := range []string{"/events/1", "/events/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/events/:id", "200"))
	if after-before != 2 {
		t.Errorf("expected 2 requests counted under route pattern, got %v", after-before)
	}
}

func TestObserveActivation(t *testing.T) {
	before := testutil.ToFloat64(dashboardActivations.WithLabelValues(OutcomeNoSession))
	ObserveActivation(OutcomeNoSession)
	if got := testutil.ToFloat64(dashboardActivations.WithLabelValues(OutcomeNoSession)) - before; got != 1 {
		t.Errorf("expected counter to increase by 1, got %v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	ObserveThemeChange("dark")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "chapterdash_theme_changes_total") {
		t.Error("expected theme counter in metrics output")
	}
}

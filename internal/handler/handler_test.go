package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newEngine(h *Handler) *gin.Engine {
	engine := gin.New()
	engine.GET("/live", h.LivenessCheck)
	engine.GET("/ready", h.ReadinessCheck)
	engine.GET("/metrics", h.MetricsHandler)
	engine.GET("/items/:id", func(c *gin.Context) {
		id, err := ParseID(c, "id")
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, id)
	})
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := get(newEngine(NewHandler(pinger{}, prometheus.NewRegistry())), "/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alive"`)
}

func TestReadiness(t *testing.T) {
	w := get(newEngine(NewHandler(pinger{}, prometheus.NewRegistry())), "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(newEngine(NewHandler(pinger{err: errors.New("dial tcp: refused")}, prometheus.NewRegistry())), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"})
	reg.MustRegister(counter)
	counter.Inc()

	w := get(newEngine(NewHandler(pinger{}, reg)), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "probe_total 1")
}

func TestParseID(t *testing.T) {
	engine := newEngine(NewHandler(nil, nil))
	assert.Equal(t, http.StatusOK, get(engine, "/items/12").Code)
	assert.Equal(t, http.StatusBadRequest, get(engine, "/items/0").Code)
	assert.Equal(t, http.StatusBadRequest, get(engine, "/items/abc").Code)
}

package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInc_LabelOrderDoesNotMatter(t *testing.T) {
	r := NewRegistry("test")
	ctx := context.Background()

	r.Inc(ctx, "uploads_total", map[string]string{"result": "ok", "source": "drop"}, 1)
	r.Inc(ctx, "uploads_total", map[string]string{"source": "drop", "result": "ok"}, 2)

	assert.Equal(t, int64(3), r.Value("uploads_total", map[string]string{"result": "ok", "source": "drop"}))
	assert.Equal(t, []string{"uploads_total{result=ok,source=drop} 3"}, r.SnapshotLines())
}

func TestInc_Concurrent(t *testing.T) {
	r := NewRegistry("test")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Inc(context.Background(), "hits", nil, 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), r.Value("hits", nil))
}

func TestNilRegistryIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var r *Registry
	assert.NotPanics(t, func() { r.Inc(context.Background(), "x", nil, 1) })
	assert.Zero(t, r.Value("x", nil))
	assert.Empty(t, r.SnapshotLines())

	engine := gin.New()
	engine.GET("/metrics", r.GinHandlerText)
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestGinHandlerText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRegistry("test")
	r.Inc(context.Background(), "b_total", nil, 2)
	r.Inc(context.Background(), "a_total", map[string]string{"k": "v"}, 1)

	engine := gin.New()
	engine.GET("/metrics", r.GinHandlerText)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a_total{k=v} 1\nb_total 2\n", w.Body.String())
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(204))
	assert.Equal(t, "4xx", StatusClass(422))
	assert.Equal(t, "5xx", StatusClass(502))
	assert.Equal(t, "0", StatusClass(0))
}

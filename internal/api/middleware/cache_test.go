package middleware_test

import (
	"floorkeeper/internal/api/middleware"
	"floorkeeper/internal/cache"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheRouter(lc *cache.ListCache, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.InvalidateOnWrite(lc))
	r.GET("/items", middleware.ResponseCache(lc), func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"success": true, "data": *hits})
	})
	r.POST("/items", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	r.POST("/broken", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
	})
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func post(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestResponseCache_NilCachePassesThrough(t *testing.T) {
	var hits int
	r := cacheRouter(nil, &hits)

	for i := 0; i < 3; i++ {
		w := get(r, "/items")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Cache"))
	}
	assert.Equal(t, 3, hits)
	assert.Equal(t, http.StatusCreated, post(r, "/items").Code)
}

func TestResponseCache_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := cache.NewRedisClient(cache.Config{Addr: addr})
	if rdb == nil {
		t.Skip("redis not reachable")
	}
	defer rdb.Close()

	var hits int
	r := cacheRouter(cache.New(rdb, "floorkeeper-test-"+uuid.NewString(), time.Minute), &hits)

	first := get(r, "/items?estado=pendiente")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get(r, "/items?estado=pendiente")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, hits)

	// A different query is a different entry
	assert.Equal(t, "MISS", get(r, "/items?estado=confirmada").Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)

	// Failed writes keep the cache
	post(r, "/broken")
	assert.Equal(t, "HIT", get(r, "/items?estado=pendiente").Header().Get("X-Cache"))

	post(r, "/items")
	assert.Equal(t, "MISS", get(r, "/items?estado=pendiente").Header().Get("X-Cache"))
	assert.Equal(t, 3, hits)
}

package middleware

import (
	"bytes"
	"floorkeeper/internal/cache"
	"net/http"

	"github.com/gin-gonic/gin"
)

// captureWriter keeps a copy of the body while forwarding it to the client
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache serves GET listings from the list cache. Only 200 responses are stored.
// A nil cache makes this a pass-through.
func ResponseCache(lc *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if lc == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key, err := lc.Key(ctx, c.FullPath(), c.Request.URL.RawQuery)
		if err != nil {
			// Redis is down; serve from the store
			c.Next()
			return
		}

		if body, ok := lc.Get(ctx, key); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header("X-Cache", "MISS")
		c.Next()

		if cw.Status() == http.StatusOK {
			lc.Set(ctx, key, cw.buf.Bytes())
		}
	}
}

// InvalidateOnWrite drops every cached listing after a successful write
func InvalidateOnWrite(lc *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if lc == nil {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			lc.Invalidate(c.Request.Context())
		}
	}
}

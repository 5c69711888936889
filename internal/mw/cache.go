package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type storedReport struct {
	status int
	header http.Header
	body   []byte
}

// recordingWriter tees the response body into buf.
type recordingWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// ReportCache caches GET report responses by request URI. Reports are
// derived from every collection, so any successful write flushes the lot.
type ReportCache struct {
	entries *cache.Cache
	ttl     time.Duration
}

// NewReportCache creates a cache whose entries live for ttl.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{entries: cache.New(ttl, 2*ttl), ttl: ttl}
}

// Len is the number of cached responses.
func (rc *ReportCache) Len() int {
	return rc.entries.ItemCount()
}

func (rc *ReportCache) replay(c *gin.Context, key string) bool {
	v, ok := rc.entries.Get(key)
	if !ok {
		return false
	}
	r := v.(storedReport)
	h := c.Writer.Header()
	for k, vals := range r.header {
		h[k] = vals
	}
	h.Set("X-Cache", "HIT")
	c.Writer.WriteHeader(r.status)
	_, _ = c.Writer.Write(r.body)
	c.Abort()
	return true
}

// Flush drops every cached response. Writers outside HTTP, such as the
// sweeper, call it after changing data the reports read.
func (rc *ReportCache) Flush() {
	rc.entries.Flush()
}

// Cache serves and fills the cache for GET requests.
func (rc *ReportCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := c.Request.RequestURI
		if rc.replay(c, key) {
			return
		}

		rec := &recordingWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		if status := rec.Status(); isSuccess(status) {
			rc.entries.Set(key, storedReport{
				status: status,
				header: rec.Header().Clone(),
				body:   rec.buf.Bytes(),
			}, rc.ttl)
		}
	}
}

// Invalidate flushes the cache after every successful non-GET request.
func (rc *ReportCache) Invalidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			return
		}
		if isSuccess(c.Writer.Status()) {
			rc.Flush()
		}
	}
}

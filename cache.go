package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// pageCache is a bounded in-memory cache for rendered GET responses. When the
// cache is full the oldest entry is evicted with a linear scan; expired
// entries are dropped on read.
type pageCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	pages      map[string]*cachedPage
}

type cachedPage struct {
	body        []byte
	contentType string
	cachedAt    time.Time
	expires     time.Time
}

func newPageCache(maxEntries int, ttl time.Duration) *pageCache {
	return &pageCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		pages:      make(map[string]*cachedPage),
	}
}

func (pc *pageCache) get(key string) (*cachedPage, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	page, ok := pc.pages[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(page.expires) {
		delete(pc.pages, key)
		return nil, false
	}

	return page, true
}

func (pc *pageCache) set(key string, body []byte, contentType string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if _, exists := pc.pages[key]; !exists && len(pc.pages) >= pc.maxEntries {
		pc.evictOldest()
	}

	now := time.Now()
	stored := make([]byte, len(body))
	copy(stored, body)
	pc.pages[key] = &cachedPage{
		body:        stored,
		contentType: contentType,
		cachedAt:    now,
		expires:     now.Add(pc.ttl),
	}
}

// evictOldest removes the entry with the earliest insertion time. Caller must
// hold the lock.
func (pc *pageCache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time

	for key, page := range pc.pages {
		if oldestKey == "" || page.cachedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = page.cachedAt
		}
	}

	if oldestKey != "" {
		delete(pc.pages, oldestKey)
	}
}

func (pc *pageCache) len() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.pages)
}

// cacheWriter captures the response body so a successful render can be stored.
type cacheWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}

// middleware serves cached GET responses and records cache misses. Only
// successful responses are stored.
func (pc *pageCache) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.Path
		if page, ok := pc.get(key); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, page.contentType, page.body)
			c.Abort()
			return
		}

		writer := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Header("X-Cache", "MISS")
		c.Next()

		if writer.Status() == http.StatusOK && len(writer.body) > 0 {
			pc.set(key, writer.body, writer.Header().Get("Content-Type"))
		}
	}
}

package middleware

import (
	"compress/gzip"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	DefaultCompression = gzip.DefaultCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
)

// Compression gzips responses for clients that accept it. Writers are pooled
// per level to avoid reallocating the compressor state on every request.
func Compression(level int) gin.HandlerFunc {
	pool := sync.Pool{
		New: func() any {
			gz, _ := gzip.NewWriterLevel(nil, level)
			return gz
		},
	}

	return func(c *gin.Context) {
		if !shouldCompress(c) {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
		c.Writer = &gzipResponseWriter{ResponseWriter: c.Writer, gz: gz}

		defer func() {
			gz.Close()
			pool.Put(gz)
		}()

		c.Next()
	}
}

func shouldCompress(c *gin.Context) bool {
	if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
		return false
	}
	// WebSocket upgrades must pass through untouched.
	if strings.EqualFold(c.GetHeader("Connection"), "upgrade") {
		return false
	}
	return true
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gz.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gz.Write([]byte(s))
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	// The length of the compressed body is unknown until the stream closes.
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

package httpx

import (
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	Level   int // Compression level (1-9, where 6 is default)
	MinSize int // Minimum response size to compress (bytes, 0 = always compress)
	// ExtraTypes adds media types to the compressible set.
	ExtraTypes    []string
	writerPool    *gzipWriterPool
	compressTypes map[string]bool
	Logger        *slog.Logger
}

// gzipWriterPool manages a pool of gzip writers for reuse.
type gzipWriterPool struct {
	mu    sync.Mutex
	pools map[int]*gzipLevelPool
}

type gzipLevelPool struct {
	level int
	pool  *sync.Pool
}

func newGzipWriterPool() *gzipWriterPool {
	return &gzipWriterPool{
		pools: make(map[int]*gzipLevelPool),
	}
}

func (p *gzipWriterPool) get(level int) *gzip.Writer {
	pool := p.ensureLevelPool(level)
	if writer := p.tryGetWriter(pool); writer != nil {
		return writer
	}
	return newGzipWriter(level)
}

func (p *gzipWriterPool) put(w *gzip.Writer, level int) {
	p.mu.Lock()
	pool, ok := p.pools[level]
	p.mu.Unlock()
	if ok {
		w.Reset(io.Discard)
		pool.pool.Put(w)
	}
}

// defaultCompressibleTypes covers API replies. Model files are streamed as
// application/octet-stream and pass through untouched unless configured.
func defaultCompressibleTypes() map[string]bool {
	return map[string]bool{
		"application/json": true,
		"text/plain":       true,
	}
}

// Compression returns a middleware that gzips responses when the client
// accepts gzip and the Content-Type is compressible. HEAD requests and 1xx,
// 204 and 304 replies are never compressed.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	if cfg.writerPool == nil {
		cfg.writerPool = newGzipWriterPool()
	}
	if cfg.compressTypes == nil {
		cfg.compressTypes = defaultCompressibleTypes()
		for _, t := range cfg.ExtraTypes {
			cfg.compressTypes[strings.ToLower(strings.TrimSpace(t))] = true
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipResponseWriter{
				ResponseWriter: w,
				request:        r,
				config:         &cfg,
				minSize:        cfg.MinSize,
			}

			w.Header().Add("Vary", "Accept-Encoding")

			next.ServeHTTP(gzw, r)

			if gzw.gzipWriter != nil {
				// Replies below MinSize are still buffered.
				if len(gzw.bufferedContent) > 0 {
					if _, err := gzw.gzipWriter.Write(gzw.bufferedContent); err != nil {
						cfg.Logger.ErrorContext(r.Context(), "writing buffered reply failed", "error", err)
					}
				}
				if err := gzw.gzipWriter.Close(); err != nil {
					cfg.Logger.ErrorContext(r.Context(), "closing gzip writer failed", "error", err)
				}
				cfg.writerPool.put(gzw.gzipWriter, cfg.Level)
			}
		})
	}
}

// acceptsGzip checks if the client accepts gzip encoding, respecting q-values.
func acceptsGzip(acceptEncoding string) bool {
	if acceptEncoding == "" {
		return false
	}

	// Simple parsing: check for "gzip" and ensure it's not explicitly disabled with q=0
	parts := strings.Split(acceptEncoding, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)

		// Check if this part contains "gzip"
		if !strings.Contains(strings.ToLower(part), "gzip") {
			continue
		}

		// Extract encoding name (before any semicolon)
		encoding := part
		if idx := strings.Index(part, ";"); idx != -1 {
			encoding = strings.TrimSpace(part[:idx])
		}

		if strings.ToLower(encoding) != "gzip" {
			continue
		}

		// Check for explicit q=0 or q=0.0 (disabled)
		// This is a simple check - a full RFC implementation would parse q-values properly
		if strings.Contains(part, "q=0.0") || strings.Contains(part, "q=0;") || strings.HasSuffix(part, "q=0") {
			return false
		}
		return true
	}
	return false
}

// isCompressibleContentType checks if the content type should be compressed.
func isCompressibleContentType(contentType string, compressTypes map[string]bool) bool {
	// Extract media type without parameters (e.g., "text/html; charset=utf-8" -> "text/html")
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	return compressTypes[contentType]
}

// gzipResponseWriter wraps http.ResponseWriter to compress response body.
type gzipResponseWriter struct {
	http.ResponseWriter
	request         *http.Request
	config          *CompressionConfig
	gzipWriter      *gzip.Writer
	headerWritten   bool
	shouldCompress  bool
	minSize         int
	bufferedContent []byte
}

func (p *gzipWriterPool) ensureLevelPool(level int) *gzipLevelPool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.pools[level]; ok {
		return pool
	}

	newPool := &gzipLevelPool{
		level: level,
		pool: &sync.Pool{
			New: func() any {
				return newGzipWriter(level)
			},
		},
	}
	p.pools[level] = newPool
	return newPool
}

func (p *gzipWriterPool) tryGetWriter(pool *gzipLevelPool) *gzip.Writer {
	w := pool.pool.Get()
	if w == nil {
		return nil
	}

	writer, ok := w.(*gzip.Writer)
	if !ok {
		return nil
	}

	return writer
}

func newGzipWriter(level int) *gzip.Writer {
	w, err := gzip.NewWriterLevel(io.Discard, level)
	if err != nil {
		return gzip.NewWriter(io.Discard)
	}

	return w
}

// WriteHeader decides whether to compress based on status code, content-type, and existing encoding.
func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.headerWritten = true

	// Don't compress for certain status codes
	if statusCode < 200 || statusCode == http.StatusNoContent || statusCode == http.StatusNotModified {
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}

	// Don't compress if Content-Encoding is already set
	if w.Header().Get("Content-Encoding") != "" {
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}

	// Check if content type is compressible
	contentType := w.Header().Get("Content-Type")
	switch {
	case contentType == "":
		// If no content-type set yet, we'll need to buffer and decide later
		// For now, assume compressible and let Write handle it
		w.shouldCompress = true
	case !isCompressibleContentType(contentType, w.config.compressTypes):
		w.ResponseWriter.WriteHeader(statusCode)
		return
	default:
		w.shouldCompress = true
	}

	// If we should compress, initialize the gzip writer
	if w.shouldCompress {
		w.gzipWriter = w.config.writerPool.get(w.config.Level)
		w.gzipWriter.Reset(w.ResponseWriter)

		// Set compression headers
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length") // Length will change after compression
	}

	w.ResponseWriter.WriteHeader(statusCode)
}

// Write compresses data if compression is enabled.
func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		// If content-type not set, try to detect it
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}

	// Handle minimum size threshold
	if w.minSize > 0 && w.gzipWriter != nil && len(w.bufferedContent) < w.minSize {
		w.bufferedContent = append(w.bufferedContent, b...)
		if len(w.bufferedContent) < w.minSize {
			return len(b), nil
		}
		// Threshold reached, write buffered content
		_, err := w.gzipWriter.Write(w.bufferedContent)
		w.bufferedContent = nil
		return len(b), err
	}

	if w.gzipWriter != nil {
		return w.gzipWriter.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming support.
func (w *gzipResponseWriter) Flush() {
	if w.gzipWriter != nil {
		if err := w.gzipWriter.Flush(); err != nil {
			w.config.Logger.ErrorContext(w.request.Context(), "flushing gzip writer failed", "error", err)
		}
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

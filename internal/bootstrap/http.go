package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"

	"github.com/SerjoschDuering/ifcore-platform/config"
	httpx "github.com/SerjoschDuering/ifcore-platform/internal/http"
)

// Uploads and chat replies are slow, so the server timeouts are generous.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 5 * time.Minute
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 120 * time.Second
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// ErrCh receives a serve failure after the listener is up. Optional.
	ErrCh chan<- error
}

// StartHTTPServer binds the listener and serves in the background.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Projects:       cfg.Services.Projects,
		Checks:         cfg.Services.Checks,
		Chat:           cfg.Services.Chat,
		Files:          cfg.Services.Objects,
		UploadMaxBytes: appCfg.Upload.MaxBytes,
		Logger:         logger,
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: services,
		HTTP:     appCfg.HTTP,
	})

	return startServer(serverOptions{
		Logger:         logger,
		Handler:        handler,
		Addr:           appCfg.HTTP.Addr,
		MaxConnections: appCfg.HTTP.MaxConnections,
		ErrCh:          cfg.ErrCh,
	})
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(cfg.Services)

	// Order: Recover -> RequestID -> Logging -> Compression -> Router
	h := router
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: cfg.Logger})(h)
	}

	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.RequestID()(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

type serverOptions struct {
	Logger         *slog.Logger
	Handler        http.Handler
	Addr           string
	MaxConnections int
	ErrCh          chan<- error
}

func startServer(opts serverOptions) (*http.Server, error) {
	addr := opts.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	if opts.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, opts.MaxConnections)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           opts.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		opts.Logger.Info("starting HTTP server", "addr", ln.Addr().String(), "max_connections", opts.MaxConnections)
		if serveErr := server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			opts.Logger.Error("HTTP server failed", "error", serveErr)
			if opts.ErrCh != nil {
				select {
				case opts.ErrCh <- fmt.Errorf("http server: %w", serveErr):
				default:
				}
			}
		}
	}()

	return server, nil
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}

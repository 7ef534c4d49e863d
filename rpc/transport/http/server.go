package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/ValentinKolb/dProp/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// maxRequestBytes bounds the size of a single request body
const maxRequestBytes = 16 << 20

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(ctx context.Context, config common.ServerConfig) error {
	if t.handler == nil {
		return errors.New("http transport: no handler registered")
	}

	srv := &http.Server{
		Addr:              config.Endpoint,
		Handler:           NewHandler(t.handler, config.LogLevel == "debug"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		Logger.Infof("Starting HTTP server on %s", config.Endpoint)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		Logger.Infof("Shutting down HTTP server on %s", config.Endpoint)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// NewHandler returns the HTTP routes of the transport:
// POST /{shardId} for RPC messages, GET /health and GET /metrics.
func NewHandler(handler transport.ServerHandleFunc, debug bool) http.Handler {
	mux := http.NewServeMux()

	rpc := handleRequest(handler)
	if debug {
		rpc = loggerMiddleware(rpc)
	}
	mux.HandleFunc("POST /{shardId}", rpc)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	})

	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return mux
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleRequest parses the shard from the path and passes the body to the handler
func handleRequest(handler transport.ServerHandleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shardId, err := strconv.ParseUint(r.PathValue("shardId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid shardId", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		_ = r.Body.Close()
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		resp := handler(r.Context(), shardId, body)

		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err = w.Write(resp); err != nil {
			Logger.Warningf("failed to write response for shard %d: %v", shardId, err)
		}
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}

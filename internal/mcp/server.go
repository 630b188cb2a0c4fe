package mcp

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/roivaz/memory-mcp/internal/auth"
	"github.com/roivaz/memory-mcp/internal/logging"
)

type Server struct {
	Gateway *Gateway
	Handler http.Handler
}

func New(cfg Config) *Server {
	log := cfg.Gateway.Logger.WithName("http")
	gateway := NewGateway(cfg.Gateway)

	mux := http.NewServeMux()
	mux.Handle(SSEPath, gateway)
	mux.Handle(SSEPath+"/", gateway)
	mux.Handle(StreamablePath, gateway)
	mux.Handle(StreamablePath+"/", gateway)

	oauth := cfg.OAuth
	if oauth == nil {
		oauth = http.NotFoundHandler()
	}
	for _, path := range auth.DelegatedPaths {
		mux.Handle(path, oauth)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		Gateway: gateway,
		Handler: withRequestLogging(mux, log),
	}
}

// statusRecorder keeps http.Flusher reachable so SSE streams still flush
// through the logging middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func withRequestLogging(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info("request", "id", requestID, "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "elapsed", time.Since(start))
	})
}

package gateway

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cyberpunkpath/gateway/internal/metrics"
)

const banner = "cyberpunkpath audio transformation gateway\n"

// Routes mounts the gateway's handlers onto r.
func (s *Service) Routes(r chi.Router) {
	r.Use(requestMetrics)

	r.Get("/health", health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(banner))
	})
	r.Get("/params/*", s.ShowParams)
	r.Get("/meta/*", s.ShowMeta)
	r.Post("/mcp", s.MCP)
	r.Get("/*", s.Process)
}

// requestMetrics records RequestsTotal by route pattern and status code.
// The route pattern is only known once chi has finished routing, so it
// reads the pattern after calling next rather than before.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(pattern, strconv.Itoa(ww.Status())).Inc()
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

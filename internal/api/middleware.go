package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pedigree/pkg/httputil"
	"github.com/matzehuels/pedigree/pkg/observability"
)

// observe reports every request to the HTTP hooks and the debug log.
// Routes are labelled by their chi pattern so session ids do not explode
// metric cardinality.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := httputil.NewStatusRecorder(w)

		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(rec, r)

		route := routePattern(r)
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, rec.Status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", rec.Status,
			"bytes", rec.Bytes,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

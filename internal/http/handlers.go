package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"orcamento/internal/core"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the record store backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"sessions":     s.svc.Sessions().Len(),
		"rate_limiter": map[string]any{"active_clients": s.limiter.ActiveClients()},
	}

	switch {
	case s.ready == nil:
		checks["backend"] = "ok"
	default:
		if err := s.ready.Ping(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "# HELP orcamento_requests_total Total HTTP requests\n")
	fmt.Fprintf(w, "# TYPE orcamento_requests_total counter\n")
	fmt.Fprintf(w, "orcamento_requests_total %d\n", s.tracer.TotalRequests())
	fmt.Fprintf(w, "# HELP orcamento_sessions Signed-in sessions\n")
	fmt.Fprintf(w, "# TYPE orcamento_sessions gauge\n")
	fmt.Fprintf(w, "orcamento_sessions %d\n", s.svc.Sessions().Len())
	fmt.Fprintf(w, "# HELP orcamento_rate_limit_clients Clients tracked by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE orcamento_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "orcamento_rate_limit_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "# HELP orcamento_uptime_seconds Process uptime\n")
	fmt.Fprintf(w, "# TYPE orcamento_uptime_seconds gauge\n")
	fmt.Fprintf(w, "orcamento_uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

type iconView struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

// handleIcons lists the icons a fixed category may use.
func (s *Server) handleIcons(w http.ResponseWriter, r *http.Request) {
	icons := make([]iconView, 0, len(core.IconCatalogue)+1)
	icons = append(icons, iconView{Name: core.DefaultIcon, HTML: core.IconHTML(core.DefaultIcon)})
	for _, name := range core.IconCatalogue {
		icons = append(icons, iconView{Name: name, HTML: core.IconHTML(name)})
	}
	NewJSONResponse().Body(map[string]any{"icons": icons}).Write(w)
}

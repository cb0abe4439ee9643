package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"kindra/internal/amqp"
	"kindra/internal/core"
	"kindra/internal/log"
	"kindra/internal/sheets"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady performs readiness check. The service is ready once at least
// one collection has been loaded, either from upstream or from the warm
// start snapshot.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK

	if !s.store.Ready() {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	traffic := s.tracer.GetMetrics()
	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks": map[string]any{
			"snapshot": status,
			"cache": map[string]any{
				"view_entries": s.viewCache.Size(),
				"status":       "ok",
			},
			"rate_limiter": map[string]any{
				"active_clients": s.rateLimiter.activeClients(),
				"status":         "ok",
			},
			"requests": map[string]any{
				"total":           traffic.TotalRequests,
				"avg_response_us": traffic.AverageResponseTime,
				"status":          "ok",
			},
		},
	})
}

type refreshRequest struct {
	Collection string `json:"collection"`
}

type refreshResponse struct {
	Status     string `json:"status"`
	RequestID  string `json:"request_id,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// handleRefresh accepts a refresh request and completes it out of band.
// With a broker configured the request is published for the worker;
// otherwise the coordinator runs it in this process.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	logger := log.FromContext(r.Context())
	identity := identityFromRequest(r)

	var req refreshRequest
	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable body")
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
		}
	}

	if req.Collection != "" && !slices.Contains(core.Collections, req.Collection) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown collection %q", req.Collection))
		return
	}

	if s.publisher != nil {
		msg := amqp.NewRefreshRequestMessage(req.Collection, identity.ID)
		if err := s.publisher.PublishRefreshRequest(r.Context(), msg); err != nil {
			fields := log.NewFields().WithOperation(log.OpRefresh).WithCollection(req.Collection).WithError(err)
			logger.ErrorContext(r.Context(), "Failed to publish refresh request", fields.ToSlice()...)
			writeError(w, http.StatusBadGateway, "failed to queue refresh request")
			return
		}
		writeJSON(w, http.StatusAccepted, refreshResponse{
			Status:     "queued",
			RequestID:  msg.RequestID,
			Collection: req.Collection,
		})
		return
	}

	if req.Collection != "" {
		if err := s.coordinator.RefreshCollection(r.Context(), req.Collection); err != nil {
			logger.WarnContext(r.Context(), "Collection refresh failed",
				log.FieldCollection, req.Collection,
				log.FieldError, err.Error())
			writeError(w, http.StatusBadGateway, fmt.Sprintf("refresh of %q failed", req.Collection))
			return
		}
		writeJSON(w, http.StatusOK, refreshResponse{Status: "refreshed", Collection: req.Collection})
		return
	}

	s.coordinator.TriggerAsync()
	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "accepted"})
}

type exportResponse struct {
	Status string `json:"status"`
	Ref    string `json:"ref"`
	Rows   int    `json:"rows"`
}

// handleExport writes the donation report to the configured spreadsheet.
// Admin only; donors and field roles have no business exporting the full
// donation ledger.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	logger := log.FromContext(r.Context())
	identity := identityFromRequest(r)

	if identity.EffectiveRole() != core.RoleAdmin {
		writeError(w, http.StatusForbidden, "report export requires an admin account")
		return
	}
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report export is not configured")
		return
	}

	report := sheets.BuildDonationReport(s.store.Snapshot(), s.now())
	ref, err := s.reports.WriteReport(r.Context(), report)
	if err != nil {
		fields := log.NewFields().WithOperation(log.OpExport).WithError(err)
		logger.ErrorContext(r.Context(), "Report export failed", fields.ToSlice()...)
		writeError(w, http.StatusBadGateway, "report export failed")
		return
	}

	fields := log.NewFields().WithOperation(log.OpExport).WithSheetsRef(ref)
	logger.InfoContext(r.Context(), "Report exported", append(fields.ToSlice(), "rows", len(report.Rows))...)
	writeJSON(w, http.StatusOK, exportResponse{Status: "exported", Ref: ref, Rows: len(report.Rows)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out if encoding fails; nothing left to do for the client.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"kindra/internal/core"
	"kindra/internal/dashboard"
	"kindra/internal/log"
)

type dashboardResponse struct {
	Greeting    string         `json:"greeting,omitempty"`
	View        dashboard.View `json:"view"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// handleDashboard resolves the caller's view from the current snapshot.
// Resolution is pure, so results are cached per identity until the next
// committed refresh or TTL expiry. The greeting is per request state and
// never cached.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	logger := log.FromContext(r.Context())
	identity := identityFromRequest(r)
	now := s.now()

	key := viewCacheKey(identity)
	view, hit := s.viewCache.Get(key)
	if !hit {
		view = dashboard.Resolve(identity, s.store.Snapshot(), now)
		s.viewCache.Set(key, view)
		logger.Debug("Dashboard view resolved",
			log.FieldOperation, log.OpResolve,
			log.FieldRole, string(view.Role),
			log.FieldUserID, identity.ID)
	}

	resp := dashboardResponse{View: view, GeneratedAt: now}
	if s.store.ShouldGreet(identity.ID, now) {
		resp.Greeting = greetingFor(identity, now)
	}

	writeJSON(w, http.StatusOK, resp)
}

// viewCacheKey covers every identity attribute resolution reads. Two
// callers that collapse to the same key always see the same view.
func viewCacheKey(id core.Identity) string {
	role := id.EffectiveRole()
	switch role {
	case core.RoleDonor:
		// Donor views are personal; email participates in record matching.
		return fmt.Sprintf("donor|%s|%s|%s", id.ID, id.DonorID, strings.ToLower(id.Email))
	case core.RoleAdmin, core.RoleVolunteer, core.RoleCaseWorker, core.RoleShelterPartner:
		return string(role)
	default:
		return string(core.RoleUnrecognized)
	}
}

// greetingFor varies with the UTC hour, matching the snapshot day boundary.
func greetingFor(id core.Identity, now time.Time) string {
	var part string
	switch hour := now.UTC().Hour(); {
	case hour < 12:
		part = "Good morning"
	case hour < 17:
		part = "Good afternoon"
	default:
		part = "Good evening"
	}
	return fmt.Sprintf("%s, %s!", part, id.DisplayName())
}

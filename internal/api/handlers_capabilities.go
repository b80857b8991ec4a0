package api

import (
	"net/http"
	"strconv"

	"github.com/org/nostrvault/internal/capability"
)

// CapabilitiesHandler handles GET /v1/capabilities?level=N
func (s *Server) CapabilitiesHandler(w http.ResponseWriter, r *http.Request) {
	levelStr := r.URL.Query().Get("level")
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < 0 {
		writeError(w, http.StatusBadRequest, "level must be a non-negative integer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"level":        level,
		"capabilities": capability.AllowedCapabilities(level),
		"summary":      capability.PermissionsString(level),
	})
}

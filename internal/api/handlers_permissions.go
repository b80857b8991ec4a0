package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/org/nostrvault/internal/capability"
	"github.com/org/nostrvault/internal/profile"
	"github.com/org/nostrvault/pkg/models"
)

// PermissionsReadHandler handles GET /v1/profiles/:pubkey/permissions
func (s *Server) PermissionsReadHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")
	perms, err := s.perms.Read(r.Context(), pubkey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"permissions": perms})
}

// PermissionHostHandler handles GET /v1/profiles/:pubkey/permissions/:host
// The optional ?cap=<identifier> query answers "may this host do X?".
func (s *Server) PermissionHostHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")
	host := chi.URLParam(r, "host")

	level, err := s.perms.Level(r.Context(), pubkey, host)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"host":         host,
		"level":        level,
		"capabilities": capability.AllowedCapabilities(level),
		"summary":      capability.PermissionsString(level),
	}
	if capID := r.URL.Query().Get("cap"); capID != "" {
		resp["allowed"] = capability.Allows(level, capID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PermissionUpdateHandler handles PUT /v1/profiles/:pubkey/permissions/:host
func (s *Server) PermissionUpdateHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")
	host := chi.URLParam(r, "host")

	var pol models.PermissionPolicy
	if err := decodeJSON(r, &pol); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if pol.Condition != models.ConditionExpirable && pol.Condition != models.ConditionPermanent {
		writeError(w, http.StatusBadRequest, "condition must be expirable or permanent")
		return
	}

	if err := s.perms.Update(r.Context(), pubkey, host, pol); err != nil {
		if errors.Is(err, profile.ErrNoProfile) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PermissionRemoveHandler handles DELETE /v1/profiles/:pubkey/permissions/:host
func (s *Server) PermissionRemoveHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")
	host := chi.URLParam(r, "host")

	if err := s.perms.Remove(r.Context(), pubkey, host); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

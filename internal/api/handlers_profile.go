package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/org/nostrvault/internal/profile"
	"github.com/org/nostrvault/pkg/models"
)

// RelaysReadHandler handles GET /v1/profiles/:pubkey/relays
func (s *Server) RelaysReadHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")
	relays, err := s.keys.Relays(r.Context(), pubkey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"relays": relays})
}

// RelaysSaveHandler handles PUT /v1/profiles/:pubkey/relays
func (s *Server) RelaysSaveHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")

	var req struct {
		Relays map[string]models.RelayPolicy `json:"relays"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.keys.SaveRelays(r.Context(), pubkey, req.Relays); err != nil {
		if errors.Is(err, profile.ErrNoProfile) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProtocolHandlerReadHandler handles GET /v1/profiles/:pubkey/handler
func (s *Server) ProtocolHandlerReadHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")
	handler, err := s.keys.ProtocolHandler(r.Context(), pubkey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"protocol_handler": handler})
}

// ProtocolHandlerSaveHandler handles PUT /v1/profiles/:pubkey/handler
func (s *Server) ProtocolHandlerSaveHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")

	var req struct {
		ProtocolHandler string `json:"protocol_handler"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.keys.SetProtocolHandler(r.Context(), pubkey, req.ProtocolHandler); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

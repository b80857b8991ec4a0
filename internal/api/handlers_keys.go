package api

import (
	"encoding/hex"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// KeysListHandler handles GET /v1/keys
// Only metadata is returned; sealed private keys never leave the store
// through this endpoint.
func (s *Server) KeysListHandler(w http.ResponseWriter, r *http.Request) {
	keys, err := s.keys.Keys(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make(map[string]any, len(keys))
	for pubkey, rec := range keys {
		out[pubkey] = map[string]any{
			"name":       rec.Name,
			"created_at": rec.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": out})
}

// KeyAddHandler handles POST /v1/keys
func (s *Server) KeyAddHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PubKey     string `json:"pubkey"`
		Name       string `json:"name"`
		PrivateKey string `json:"private_key"` // hex
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PubKey == "" || req.PrivateKey == "" {
		writeError(w, http.StatusBadRequest, "pubkey and private_key are required")
		return
	}
	priv, err := hex.DecodeString(req.PrivateKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, "private_key must be hex")
		return
	}

	if err := s.keys.AddKey(r.Context(), req.PubKey, req.Name, priv); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// KeyRemoveHandler handles DELETE /v1/keys/:pubkey
func (s *Server) KeyRemoveHandler(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")
	if err := s.keys.RemoveKey(r.Context(), pubkey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentPubKeyHandler handles GET /v1/keys/current
func (s *Server) CurrentPubKeyHandler(w http.ResponseWriter, r *http.Request) {
	pubkey, err := s.keys.CurrentPubKey(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pubkey": pubkey})
}

// SetCurrentPubKeyHandler handles PUT /v1/keys/current
func (s *Server) SetCurrentPubKeyHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PubKey string `json:"pubkey"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.keys.SetCurrentPubKey(r.Context(), req.PubKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentOptionsPubKeyHandler handles GET /v1/keys/current-options
func (s *Server) CurrentOptionsPubKeyHandler(w http.ResponseWriter, r *http.Request) {
	pubkey, err := s.keys.CurrentOptionsPubKey(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pubkey": pubkey})
}

// SetCurrentOptionsPubKeyHandler handles PUT /v1/keys/current-options
func (s *Server) SetCurrentOptionsPubKeyHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PubKey string `json:"pubkey"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.keys.SetCurrentOptionsPubKey(r.Context(), req.PubKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

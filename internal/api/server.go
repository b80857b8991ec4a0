package api

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/org/nostrvault/internal/audit"
	"github.com/org/nostrvault/internal/keystore"
	"github.com/org/nostrvault/internal/permission"
	"github.com/org/nostrvault/internal/profile"
	"github.com/org/nostrvault/internal/storage"
	"github.com/rs/zerolog/log"
)

// Config holds server configuration.
type Config struct {
	ListenAddr  string
	TLSCertFile string
	TLSKeyFile  string
	DBUrl       string
}

// Server is the API server the UI and request-handling layers talk to.
type Server struct {
	store    storage.Backend
	profiles *profile.Accessor
	perms    *permission.Store
	keys     *keystore.Service
	cfg      Config
	httpSrv  *http.Server
}

// NewServer creates a fully wired Server. sealKey is the derived store key
// used to seal private keys at rest.
func NewServer(store storage.Backend, sealKey []byte, cfg Config) *Server {
	profiles := profile.NewAccessor(store)
	auditor := audit.NewLogger()
	perms := permission.NewStore(profiles, auditor)
	keys := keystore.NewService(store, profiles, sealKey)

	return &Server{
		store:    store,
		profiles: profiles,
		perms:    perms,
		keys:     keys,
		cfg:      cfg,
	}
}

// BuildRouter wires up all routes and returns a chi router.
func (s *Server) BuildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(metricsMiddleware)
	r.Use(requestLogMiddleware)
	r.Use(newRateLimiter(100, 200).middleware)

	r.Handle("/metrics", MetricsHandler())
	r.Get("/v1/sys/health", s.HealthHandler)

	// Capability scale
	r.Get("/v1/capabilities", s.CapabilitiesHandler)

	// Per-identity permissions
	r.Get("/v1/profiles/{pubkey}/permissions", s.PermissionsReadHandler)
	r.Get("/v1/profiles/{pubkey}/permissions/{host}", s.PermissionHostHandler)
	r.Put("/v1/profiles/{pubkey}/permissions/{host}", s.PermissionUpdateHandler)
	r.Delete("/v1/profiles/{pubkey}/permissions/{host}", s.PermissionRemoveHandler)

	// Relays and protocol handler
	r.Get("/v1/profiles/{pubkey}/relays", s.RelaysReadHandler)
	r.Put("/v1/profiles/{pubkey}/relays", s.RelaysSaveHandler)
	r.Get("/v1/profiles/{pubkey}/handler", s.ProtocolHandlerReadHandler)
	r.Put("/v1/profiles/{pubkey}/handler", s.ProtocolHandlerSaveHandler)

	// Identities
	r.Get("/v1/keys", s.KeysListHandler)
	r.Post("/v1/keys", s.KeyAddHandler)
	r.Delete("/v1/keys/{pubkey}", s.KeyRemoveHandler)
	r.Get("/v1/keys/current", s.CurrentPubKeyHandler)
	r.Put("/v1/keys/current", s.SetCurrentPubKeyHandler)
	r.Get("/v1/keys/current-options", s.CurrentOptionsPubKeyHandler)
	r.Put("/v1/keys/current-options", s.SetCurrentOptionsPubKeyHandler)

	return r
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	handler := s.BuildRouter()

	s.httpSrv = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
		tlsCfg := &tls.Config{
			MinVersion: tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{
				tls.CurveP256,
				tls.X25519,
			},
		}
		s.httpSrv.TLSConfig = tlsCfg
		log.Info().Str("addr", s.cfg.ListenAddr).Msg("starting HTTPS server")
		return s.httpSrv.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	}

	log.Info().Str("addr", s.cfg.ListenAddr).Msg("starting HTTP server")
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/org/nostrvault/pkg/models"
)

var (
	grantsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nostrvault_permission_grants_total",
		Help: "Permission grants written, by condition.",
	}, []string{"condition"})

	revocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nostrvault_permission_revocations_total",
		Help: "Permission grants explicitly revoked.",
	})

	expiriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nostrvault_permission_expiries_total",
		Help: "Expirable grants evicted during reads.",
	})
)

func init() {
	prometheus.MustRegister(grantsTotal, revocationsTotal, expiriesTotal)
}

// Logger emits structured permission-decision events.
// Private keys must NEVER be passed here — only grant metadata.
type Logger struct {
	log zerolog.Logger
}

// NewLogger creates an audit Logger.
func NewLogger() *Logger {
	return &Logger{log: log.With().Str("component", "audit").Logger()}
}

// GrantWritten records a new or overwritten grant.
func (l *Logger) GrantWritten(pubkey, host string, g models.Grant) {
	grantsTotal.WithLabelValues(g.Condition).Inc()
	l.log.Info().
		Str("pubkey", pubkey).
		Str("host", host).
		Int("level", g.Level).
		Str("condition", g.Condition).
		Msg("permission granted")
}

// GrantRevoked records an explicit revocation.
func (l *Logger) GrantRevoked(pubkey, host string) {
	revocationsTotal.Inc()
	l.log.Info().
		Str("pubkey", pubkey).
		Str("host", host).
		Msg("permission revoked")
}

// GrantExpired records a lazy eviction of an expirable grant.
func (l *Logger) GrantExpired(pubkey, host string, g models.Grant) {
	expiriesTotal.Inc()
	l.log.Debug().
		Str("pubkey", pubkey).
		Str("host", host).
		Int("level", g.Level).
		Int64("created_at", g.CreatedAt).
		Msg("expirable permission evicted")
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tekblog_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RelationshipToggles counts relationship toggle operations by kind and outcome.
	RelationshipToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tekblog_relationship_toggles_total",
		Help: "Total relationship toggle operations by kind and resulting state",
	}, []string{"kind", "state"})

	// ModerationTransitions counts moderation state transitions by entity and target state.
	ModerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tekblog_moderation_transitions_total",
		Help: "Total moderation state transitions by entity and target state",
	}, []string{"entity", "state"})

	// MailDispatchFailures counts failed mail deliveries by notice kind.
	MailDispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tekblog_mail_dispatch_failures_total",
		Help: "Total failed mail deliveries by notice kind",
	}, []string{"kind"})
)

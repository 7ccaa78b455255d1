package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookEventsTotal,
		moderationActionsTotal,
		fanoutDeliveriesTotal,
		accessDeniedTotal,
		callbackRateLimitedTotal,
	)
}

var (
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound CMS webhook events by result (notified, ignored, malformed, unauthorized).",
		},
		[]string{"result"},
	)

	moderationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Operator actions by domain, verb and outcome.",
		},
		[]string{"domain", "verb", "outcome"},
	)

	fanoutDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_deliveries_total",
			Help: "Product notification deliveries per operator attempt.",
		},
		[]string{"outcome"},
	)

	accessDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_denied_total",
			Help: "Inbound updates from identities outside the operator allow-list.",
		},
		[]string{"kind"}, // message|callback
	)

	callbackRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "callback_rate_limited_total",
			Help: "Operator callbacks rejected by the rate limiter.",
		},
	)
)

func IncWebhookEvent(result string) {
	webhookEventsTotal.WithLabelValues(norm(result)).Inc()
}

func IncModerationAction(domain, verb string, ok bool) {
	moderationActionsTotal.WithLabelValues(norm(domain), norm(verb), outcome(ok)).Inc()
}

func IncFanoutDelivery(ok bool) {
	fanoutDeliveriesTotal.WithLabelValues(outcome(ok)).Inc()
}

func IncAccessDenied(kind string) {
	accessDeniedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncCallbackRateLimited() {
	callbackRateLimitedTotal.Inc()
}

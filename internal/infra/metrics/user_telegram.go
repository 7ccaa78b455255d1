package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramEditsTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from operators.",
		},
		[]string{"command"},
	)

	telegramEditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_edits_total",
			Help: "In-place message edits by outcome.",
		},
		[]string{"outcome"},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncTelegramEdit(ok bool) {
	telegramEditsTotal.WithLabelValues(outcome(ok)).Inc()
}

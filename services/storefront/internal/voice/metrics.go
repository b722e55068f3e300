package voice

import "github.com/prometheus/client_golang/prometheus"

var commandsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_voice_commands_total",
		Help: "Recognized utterances by command and outcome",
	},
	[]string{"command", "outcome"},
)

func init() {
	prometheus.MustRegister(commandsTotal)
}

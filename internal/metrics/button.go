package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buttonEdges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devboard",
		Subsystem: "button",
		Name:      "edges_total",
		Help:      "Rising edges seen on the button line",
	}, []string{"button"})

	buttonRearms = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devboard",
		Subsystem: "button",
		Name:      "rearms_total",
		Help:      "Edges that restarted a pending debounce window",
	}, []string{"button"})

	buttonPresses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devboard",
		Subsystem: "button",
		Name:      "presses_total",
		Help:      "Debounced presses",
	}, []string{"button"})

	buttonBounces = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devboard",
		Subsystem: "button",
		Name:      "bounces_total",
		Help:      "Debounce windows that expired with the line low",
	}, []string{"button"})
)

// IncButtonEdge counts one rising edge for a button.
func IncButtonEdge(button string) {
	buttonEdges.WithLabelValues(button).Inc()
}

// IncButtonRearm counts an edge that cancelled a pending debounce timer.
func IncButtonRearm(button string) {
	buttonRearms.WithLabelValues(button).Inc()
}

// IncButtonPress counts a debounced press.
func IncButtonPress(button string) {
	buttonPresses.WithLabelValues(button).Inc()
}

// IncButtonBounce counts a rejected edge.
func IncButtonBounce(button string) {
	buttonBounces.WithLabelValues(button).Inc()
}

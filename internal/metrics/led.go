package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devboard",
		Subsystem: "led",
		Name:      "toggles_total",
		Help:      "Output flips made by the blink scheduler or Toggle",
	}, []string{"led"})

	blinkActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "devboard",
		Subsystem: "led",
		Name:      "blink_active",
		Help:      "Number of LEDs currently blinking",
	})

	blinkWorkerRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "devboard",
		Subsystem: "led",
		Name:      "blink_worker_running",
		Help:      "1 while the blink worker is ticking, 0 while suspended",
	})
)

// IncLEDToggle counts one output flip.
func IncLEDToggle(led string) {
	ledToggles.WithLabelValues(led).Inc()
}

// SetBlinkActive sets the number of blinking LEDs.
func SetBlinkActive(n int) {
	blinkActive.Set(float64(n))
}

// SetBlinkWorkerRunning records the blink worker state.
func SetBlinkWorkerRunning(running bool) {
	if running {
		blinkWorkerRunning.Set(1)
	} else {
		blinkWorkerRunning.Set(0)
	}
}

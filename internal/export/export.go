package export

import (
	"net/http"
	"time"

	"codeberg.org/mutker/socwatt/internal/logger"
	"codeberg.org/mutker/socwatt/internal/sampler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
)

var (
	cpuPowerWatts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "socwatt_cpu_power_watts",
			Help: "Average CPU power over the last sample window",
		},
	)

	gpuPowerWatts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "socwatt_gpu_power_watts",
			Help: "Average GPU power over the last sample window",
		},
	)

	anePowerWatts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "socwatt_ane_power_watts",
			Help: "Average ANE power over the last sample window",
		},
	)

	samplesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socwatt_samples_total",
			Help: "Total number of energy samples observed",
		},
	)
)

// Observe publishes one power reading to the exported gauges.
func Observe(reading sampler.PowerReading) {
	cpuPowerWatts.Set(reading.CPUWatts)
	gpuPowerWatts.Set(reading.GPUWatts)
	anePowerWatts.Set(reading.ANEWatts)
	samplesTotal.Inc()
}

// Serve exposes the metrics endpoint on addr. Blocks until the listener
// fails; run it in its own goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logger.Info().Msgf("Serving metrics on %s/metrics", addr)

	return server.ListenAndServe()
}

package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusCounter struct {
	c prometheus.Counter
}

func (recv *PrometheusCounter) Add(valueToAdd int) {
	recv.c.Add(float64(valueToAdd))
}

type PrometheusHistogram struct {
	h prometheus.Observer
}

func (recv *PrometheusHistogram) Track(begin time.Time) {
	// Use seconds to track time, see https://prometheus.io/docs/practices/naming/#base-units
	elapsedTimeInSeconds := float64(time.Since(begin)) / float64(time.Second)
	recv.h.Observe(elapsedTimeInSeconds)
}

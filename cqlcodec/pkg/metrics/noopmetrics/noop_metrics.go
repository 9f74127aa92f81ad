package noopmetrics

import (
	"time"

	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/metrics"
)

type noopMetricFactory struct{}

func NewNoopMetricFactory() metrics.MetricFactory {
	return &noopMetricFactory{}
}

func (recv *noopMetricFactory) GetOrCreateCounter(mn metrics.Metric) (metrics.Counter, error) {
	return &noopCounter{}, nil
}

func (recv *noopMetricFactory) GetOrCreateHistogram(mn metrics.Metric, buckets []float64) (metrics.Histogram, error) {
	return &noopHistogram{}, nil
}

func (recv *noopMetricFactory) UnregisterAllMetrics() error {
	return nil
}

type noopCounter struct{}

func (recv *noopCounter) Add(valueToAdd int) {
}

type noopHistogram struct{}

func (recv *noopHistogram) Track(begin time.Time) {
}

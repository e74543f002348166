package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// GaugeValue returns the current value of a GaugeVec child for the given labels.
func GaugeValue(metric *prometheus.GaugeVec, labels ...string) (float64, error) {
	pb := &dto.Metric{}
	if err := metric.WithLabelValues(labels...).Write(pb); err != nil {
		return 0, err
	}
	return pb.GetGauge().GetValue(), nil
}

// CounterValue returns the current value of a CounterVec child for the given labels.
func CounterValue(metric *prometheus.CounterVec, labels ...string) (float64, error) {
	pb := &dto.Metric{}
	if err := metric.WithLabelValues(labels...).Write(pb); err != nil {
		return 0, err
	}
	return pb.GetCounter().GetValue(), nil
}

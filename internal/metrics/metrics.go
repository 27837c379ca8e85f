// Package metrics records per-run gauges and writes them in the Prometheus
// text format for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"retail-sales-lab/internal/analysis"
)

const namespace = "retail_sales"

// RunMetrics holds the gauges of a single report run on a private registry.
type RunMetrics struct {
	registry      *prometheus.Registry
	orders        prometheus.Gauge
	netTotal      prometheus.Gauge
	avgOrderValue prometheus.Gauge
	outliers      prometheus.Gauge
	lastRun       prometheus.Gauge
	groupNet      *prometheus.GaugeVec
	stageDuration *prometheus.GaugeVec
}

// NewRunMetrics registers the run gauges. runID becomes a constant label.
func NewRunMetrics(runID string) *RunMetrics {
	labels := prometheus.Labels{"run_id": runID}
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		orders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "orders_generated",
			Help: "Number of synthetic orders in the dataset.", ConstLabels: labels,
		}),
		netTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "net_amount_total",
			Help: "Sum of net amount across all orders.", ConstLabels: labels,
		}),
		avgOrderValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "average_order_value",
			Help: "Mean net amount per order.", ConstLabels: labels,
		}),
		outliers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "net_amount_outliers",
			Help: "Orders outside the IQR fence on net amount.", ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds",
			Help: "Unix time the report finished.", ConstLabels: labels,
		}),
		groupNet: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "group_net_amount",
			Help: "Net amount per group of a dimension.", ConstLabels: labels,
		}, []string{"dimension", "group"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "stage_duration_seconds",
			Help: "Wall time spent in each pipeline stage.", ConstLabels: labels,
		}, []string{"stage"}),
	}
	m.registry.MustRegister(m.orders, m.netTotal, m.avgOrderValue, m.outliers, m.lastRun, m.groupNet, m.stageDuration)
	return m
}

// ObserveInsights records the headline numbers.
func (m *RunMetrics) ObserveInsights(ins analysis.Insights) {
	m.orders.Set(float64(ins.Orders))
	m.netTotal.Set(ins.TotalNet)
	m.avgOrderValue.Set(ins.AverageOrderValue)
	m.outliers.Set(float64(ins.Outliers))
}

// ObserveGroups records one gauge per group of dim.
func (m *RunMetrics) ObserveGroups(dim analysis.Dimension, groups []analysis.Group) {
	for _, g := range groups {
		m.groupNet.WithLabelValues(string(dim), g.Label).Set(g.Value)
	}
}

// ObserveStage records how long a stage took.
func (m *RunMetrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// MarkFinished stamps the completion time.
func (m *RunMetrics) MarkFinished(at time.Time) {
	m.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile atomically writes all gauges to path.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

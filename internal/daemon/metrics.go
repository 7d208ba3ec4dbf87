package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/theirongolddev/mchango/internal/model"
)

// metrics is registered on a per-service registry so tests can run several
// services side by side.
type metrics struct {
	registry *prometheus.Registry

	polls            prometheus.Counter
	pollErrors       prometheus.Counter
	newContributions prometheus.Counter
	grandTotal       prometheus.Gauge
	departmentTotal  *prometheus.GaugeVec
	subscribers      prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &metrics{
		registry: reg,
		polls: f.NewCounter(prometheus.CounterOpts{
			Name: "mchango_polls_total",
			Help: "Total number of contribution API polls",
		}),
		pollErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "mchango_poll_errors_total",
			Help: "Total number of failed contribution API polls",
		}),
		newContributions: f.NewCounter(prometheus.CounterOpts{
			Name: "mchango_new_contributions_total",
			Help: "Transactions observed for the first time",
		}),
		grandTotal: f.NewGauge(prometheus.GaugeOpts{
			Name: "mchango_grand_total",
			Help: "Grand total of all contributions",
		}),
		departmentTotal: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mchango_department_total",
			Help: "Contribution total per department",
		}, []string{"department", "account"}),
		subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "mchango_stream_subscribers",
			Help: "Connected /v1/stream subscribers",
		}),
	}
}

func (m *metrics) observe(rows []model.DepartmentRow, grandTotal float64) {
	m.grandTotal.Set(grandTotal)
	m.departmentTotal.Reset()
	for _, r := range rows {
		m.departmentTotal.WithLabelValues(r.Name, r.Account).Set(r.Total)
	}
}

package swap

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "spark"

type metrics struct {
	ordersCreated    prometheus.Counter
	fills            *prometheus.CounterVec
	reclaims         prometheus.Counter
	staleRetries     prometheus.Counter
	paymentsConsumed prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "orders_created_total",
			Help:      "Number of order notes published.",
		}),
		fills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fills_total",
			Help:      "Number of fills settled, by kind.",
		}, []string{"kind"}),
		reclaims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reclaims_total",
			Help:      "Number of orders reclaimed by their creator.",
		}),
		staleRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stale_retries_total",
			Help:      "Number of fills retried because the order went stale.",
		}),
		paymentsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "payments_consumed_total",
			Help:      "Number of payment notes consumed.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.ordersCreated, m.fills, m.reclaims, m.staleRetries, m.paymentsConsumed,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observeFill(full bool) {
	kind := "partial"
	if full {
		kind = "full"
	}
	m.fills.WithLabelValues(kind).Inc()
}

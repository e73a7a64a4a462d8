package metrics

import (
	"github.com/expediterhq/expediter/internal/realtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

type Metrics struct {
	Registry *prometheus.Registry

	OrdersCreated   *prometheus.CounterVec
	StatusChanges   *prometheus.CounterVec
	PaymentsLogged  *prometheus.CounterVec
	ReceiptsPrinted prometheus.Counter
	Refunds         prometheus.Counter
}

func New(hub *realtime.Hub) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: registry,
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "expediter_orders_created_total",
			Help: "Orders accepted, by type.",
		}, []string{"type"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "expediter_order_status_changes_total",
			Help: "Status transitions applied, by target status.",
		}, []string{"status"}),
		PaymentsLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "expediter_payments_logged_total",
			Help: "Ledger entries recorded, by method.",
		}, []string{"method"}),
		ReceiptsPrinted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expediter_receipts_printed_total",
			Help: "Receipts printed.",
		}),
		Refunds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expediter_refunds_total",
			Help: "Orders refunded.",
		}),
	}

	registry.MustRegister(
		m.OrdersCreated,
		m.StatusChanges,
		m.PaymentsLogged,
		m.ReceiptsPrinted,
		m.Refunds,
	)
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "expediter_realtime_dropped_deliveries",
		Help: "Fan-out deliveries skipped because a subscriber was slow.",
	}, func() float64 {
		return float64(hub.Dropped())
	}))

	return m
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)

package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds the Prometheus collectors for the lending core.
// All methods are safe on a nil receiver so services can run without metrics.
type Metrics struct {
	// Registry owns every collector below; /metrics serves it.
	Registry *prometheus.Registry

	movimientos     *prometheus.CounterVec
	conflictos      *prometheus.CounterVec
	abonos          prometheus.Counter
	montoAbonado    prometheus.Counter
	prestamos       *prometheus.CounterVec
	diferencias     prometheus.Histogram
	jobs            *prometheus.CounterVec
	cajaMontoActual *prometheus.GaugeVec
}

// NewMetrics registers all collectors in a private registry, so calling it
// more than once (tests) never panics on duplicate registration.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		movimientos: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cobranza_movimientos_caja_total",
				Help: "Movimientos registrados en caja por tipo.",
			},
			[]string{"tipo"},
		),
		conflictos: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cobranza_conflictos_concurrencia_total",
				Help: "Compare-and-swap perdidos, por recurso.",
			},
			[]string{"recurso"},
		),
		abonos: factory.NewCounter(prometheus.CounterOpts{
			Name: "cobranza_abonos_total",
			Help: "Abonos aplicados a pagos.",
		}),
		montoAbonado: factory.NewCounter(prometheus.CounterOpts{
			Name: "cobranza_abonos_monto_total",
			Help: "Suma de montos abonados (capital + moratorio).",
		}),
		prestamos: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cobranza_prestamos_creados_total",
				Help: "Préstamos creados por tipo.",
			},
			[]string{"tipo"},
		),
		diferencias: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cobranza_diferencia_conciliacion",
			Help:    "Diferencia absoluta entre monto esperado y devuelto al conciliar.",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000},
		}),
		jobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cobranza_jobs_total",
				Help: "Jobs procesados por tipo y resultado.",
			},
			[]string{"tipo", "resultado"},
		),
		cajaMontoActual: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cobranza_caja_monto_actual",
				Help: "Monto actual de la caja tras el último movimiento.",
			},
			[]string{"periodo"},
		),
	}
}

func (m *Metrics) MovimientoRegistrado(tipo, periodo string, saldo decimal.Decimal) {
	if m == nil {
		return
	}
	m.movimientos.WithLabelValues(tipo).Inc()
	m.cajaMontoActual.WithLabelValues(periodo).Set(saldo.InexactFloat64())
}

func (m *Metrics) Conflicto(recurso string) {
	if m == nil {
		return
	}
	m.conflictos.WithLabelValues(recurso).Inc()
}

func (m *Metrics) AbonoAplicado(monto decimal.Decimal) {
	if m == nil {
		return
	}
	m.abonos.Inc()
	m.montoAbonado.Add(monto.InexactFloat64())
}

func (m *Metrics) PrestamoCreado(tipo string) {
	if m == nil {
		return
	}
	m.prestamos.WithLabelValues(tipo).Inc()
}

func (m *Metrics) Conciliacion(diferencia decimal.Decimal) {
	if m == nil {
		return
	}
	m.diferencias.Observe(diferencia.Abs().InexactFloat64())
}

func (m *Metrics) Job(tipo string, err error) {
	if m == nil {
		return
	}
	resultado := "ok"
	if err != nil {
		resultado = "error"
	}
	m.jobs.WithLabelValues(tipo, resultado).Inc()
}

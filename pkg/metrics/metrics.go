package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus метрик сервиса
type Metrics struct {
	serviceName string

	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Метрики базы данных
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBConnsOpen     *prometheus.GaugeVec
	DBConnsInUse    *prometheus.GaugeVec
	DBConnsIdle     *prometheus.GaugeVec

	// Доменные метрики
	AppointmentsCreatedTotal   *prometheus.CounterVec
	AppointmentsCancelledTotal *prometheus.CounterVec
	TransitionsTotal           *prometheus.CounterVec
	WaitlistPromotionsTotal    *prometheus.CounterVec
	SweepsTotal                *prometheus.CounterVec
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		}, []string{"service", "operation", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"service", "operation"}),

		DBConnsOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		}, []string{"service"}),

		DBConnsInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of database connections in use",
		}, []string{"service"}),

		DBConnsIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		}, []string{"service"}),

		AppointmentsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "appointments_created_total",
			Help: "Total number of appointments created",
		}, []string{"service"}),

		AppointmentsCancelledTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "appointments_cancelled_total",
			Help: "Total number of appointments cancelled",
		}, []string{"service", "by"}),

		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_transitions_total",
			Help: "Total number of appointment status transitions",
		}, []string{"service", "from", "to"}),

		WaitlistPromotionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "waitlist_promotions_total",
			Help: "Total number of waitlist entries promoted to appointments",
		}, []string{"service", "result"}),

		SweepsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "housekeeping_sweeps_total",
			Help: "Total number of housekeeping sweep runs",
		}, []string{"service", "sweep", "status"}),
	}
}

// ServiceName возвращает имя сервиса, с которым зарегистрированы метрики
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// IncAppointmentCreated инкрементирует счётчик созданных записей
func (m *Metrics) IncAppointmentCreated() {
	m.AppointmentsCreatedTotal.WithLabelValues(m.serviceName).Inc()
}

// IncAppointmentCancelled инкрементирует счётчик отмен с указанием инициатора
func (m *Metrics) IncAppointmentCancelled(by string) {
	m.AppointmentsCancelledTotal.WithLabelValues(m.serviceName, by).Inc()
}

// IncTransition инкрементирует счётчик переходов статусов
func (m *Metrics) IncTransition(from, to string) {
	m.TransitionsTotal.WithLabelValues(m.serviceName, from, to).Inc()
}

// IncWaitlistPromotion инкрементирует счётчик продвижений листа ожидания
func (m *Metrics) IncWaitlistPromotion(result string) {
	m.WaitlistPromotionsTotal.WithLabelValues(m.serviceName, result).Inc()
}

// IncSweep инкрементирует счётчик фоновых зачисток
func (m *Metrics) IncSweep(sweep, status string) {
	m.SweepsTotal.WithLabelValues(m.serviceName, sweep, status).Inc()
}

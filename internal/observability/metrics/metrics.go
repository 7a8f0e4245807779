package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking dialogue.
type BookingMetrics struct {
	turnsTotal     *prometheus.CounterVec
	completedTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siteapi",
			Subsystem: "booking",
			Name:      "turns_total",
			Help:      "Booking dialogue turns by stage and outcome",
		}, []string{"stage", "outcome"}),
		completedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siteapi",
			Subsystem: "booking",
			Name:      "completed_total",
			Help:      "Bookings completed by service",
		}, []string{"service"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.completedTotal)
	return m
}

// ObserveTurn counts one dialogue turn. advanced is false when the stage
// re-prompted.
func (m *BookingMetrics) ObserveTurn(stage string, advanced bool) {
	if m == nil {
		return
	}
	outcome := "reprompt"
	if advanced {
		outcome = "captured"
	}
	m.turnsTotal.WithLabelValues(stage, outcome).Inc()
}

func (m *BookingMetrics) ObserveCompleted(service string) {
	if m == nil {
		return
	}
	m.completedTotal.WithLabelValues(service).Inc()
}

// FormMetrics counts public form submissions (contact, newsletter).
type FormMetrics struct {
	submissionsTotal *prometheus.CounterVec
}

func NewFormMetrics(reg prometheus.Registerer) *FormMetrics {
	m := &FormMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siteapi",
			Subsystem: "forms",
			Name:      "submissions_total",
			Help:      "Form submissions by form and result status",
		}, []string{"form", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal)
	return m
}

func (m *FormMetrics) ObserveSubmission(form, status string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(form, status).Inc()
}

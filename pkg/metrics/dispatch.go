package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics counts the business events of the reconciliation flow.
type DispatchMetrics struct {
	transitions *prometheus.CounterVec
	returns     *prometheus.CounterVec
	payments    *prometheus.CounterVec
	paidAmount  *prometheus.CounterVec
	validations *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_order_transitions_total",
		Help: "Dispatch order status transitions.",
	}, []string{"from", "to"})
	returns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_order_returned_units_total",
		Help: "Units returned against dispatch orders.",
	}, []string{"phase"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "party_payment_submissions_total",
		Help: "Payment sub-submissions by method and outcome.",
	}, []string{"entity_model", "method", "outcome"})
	paidAmount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "party_payment_amount_total",
		Help: "Sum of persisted payment amounts in party currency.",
	}, []string{"entity_model", "method"})
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_order_confirm_violations_total",
		Help: "Confirmation gate violations by rule.",
	}, []string{"rule"})
	reg.MustRegister(transitions, returns, payments, paidAmount, validations)
	return &DispatchMetrics{
		transitions: transitions,
		returns:     returns,
		payments:    payments,
		paidAmount:  paidAmount,
		validations: validations,
	}
}

func (m *DispatchMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// AddReturnedUnits records returned units; phase is "draft" or "confirmed".
func (m *DispatchMetrics) AddReturnedUnits(phase string, units int) {
	if m == nil || m.returns == nil || units <= 0 {
		return
	}
	m.returns.WithLabelValues(normalizeLabel(phase)).Add(float64(units))
}

func (m *DispatchMetrics) IncPayment(entityModel, method, outcome string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(entityModel), normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

func (m *DispatchMetrics) AddPaidAmount(entityModel, method string, amount float64) {
	if m == nil || m.paidAmount == nil || amount <= 0 {
		return
	}
	m.paidAmount.WithLabelValues(normalizeLabel(entityModel), normalizeLabel(method)).Add(amount)
}

func (m *DispatchMetrics) IncViolation(rule string) {
	if m == nil || m.validations == nil {
		return
	}
	m.validations.WithLabelValues(normalizeLabel(rule)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// VoucherMetrics tracks journal voucher lifecycle activity.
type VoucherMetrics struct {
	printed           *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	allocationRetries prometheus.Counter
	allocationFailed  prometheus.Counter
}

// NewVoucherMetrics registers voucher metrics on the provided registerer.
func NewVoucherMetrics(reg prometheus.Registerer) *VoucherMetrics {
	if reg == nil {
		return &VoucherMetrics{}
	}
	printed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voucher_printed_total",
		Help: "Vouchers that reached the printed state.",
	}, []string{"branch"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voucher_transitions_total",
		Help: "Lifecycle transitions applied to vouchers.",
	}, []string{"transition"})
	allocationRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "or_allocation_retries_total",
		Help: "Receipt number allocations retried after lock contention.",
	})
	allocationFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "or_allocation_failures_total",
		Help: "Receipt number allocations that failed permanently.",
	})
	reg.MustRegister(printed, transitions, allocationRetries, allocationFailed)
	return &VoucherMetrics{
		printed:           printed,
		transitions:       transitions,
		allocationRetries: allocationRetries,
		allocationFailed:  allocationFailed,
	}
}

// IncPrinted increments the printed counter for the given branch.
func (m *VoucherMetrics) IncPrinted(branch string) {
	if m == nil || m.printed == nil {
		return
	}
	m.printed.WithLabelValues(normalizeLabel(branch)).Inc()
}

// IncTransition increments the transition counter for the named transition.
func (m *VoucherMetrics) IncTransition(transition string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncAllocationRetry records a retried counter allocation.
func (m *VoucherMetrics) IncAllocationRetry() {
	if m == nil || m.allocationRetries == nil {
		return
	}
	m.allocationRetries.Inc()
}

// IncAllocationFailure records a permanently failed allocation.
func (m *VoucherMetrics) IncAllocationFailure() {
	if m == nil || m.allocationFailed == nil {
		return
	}
	m.allocationFailed.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

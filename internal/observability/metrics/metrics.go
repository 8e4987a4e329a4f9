package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the qualification flow.
type ConversationMetrics struct {
	inboundTotal      *prometheus.CounterVec
	stageTransitions  *prometheus.CounterVec
	crmDispatchTotal  *prometheus.CounterVec
	processingLatency *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "inbound_total",
			Help:      "Total inbound SMS messages by reply source",
		}, []string{"source"}),
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "stage_transitions_total",
			Help:      "Total stage transitions",
		}, []string{"from", "to"}),
		crmDispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "crm_dispatch_total",
			Help:      "Total CRM webhook dispatches",
		}, []string{"status"}),
		processingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "processing_seconds",
			Help:      "Latency of inbound message processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.stageTransitions, m.crmDispatchTotal, m.processingLatency)
	return m
}

func (m *ConversationMetrics) ObserveInbound(source string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(source).Inc()
}

func (m *ConversationMetrics) ObserveStageTransition(from, to string) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(from, to).Inc()
}

func (m *ConversationMetrics) ObserveCRMDispatch(status string) {
	if m == nil {
		return
	}
	m.crmDispatchTotal.WithLabelValues(status).Inc()
}

func (m *ConversationMetrics) ObserveProcessingLatency(source string, seconds float64) {
	if m == nil {
		return
	}
	m.processingLatency.WithLabelValues(source).Observe(seconds)
}

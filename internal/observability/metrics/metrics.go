package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatbotMetrics exposes counters/histograms for the chatbot intent engine.
type ChatbotMetrics struct {
	messagesTotal    *prometheus.CounterVec
	endpointAttempts *prometheus.CounterVec
	aiFallbacks      *prometheus.CounterVec
	aiLatency        *prometheus.HistogramVec
}

func NewChatbotMetrics(reg prometheus.Registerer) *ChatbotMetrics {
	m := &ChatbotMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "chatbot",
			Name:      "messages_total",
			Help:      "Total chatbot messages by resolution path and response type",
		}, []string{"path", "response_type"}),
		endpointAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "chatbot",
			Name:      "ai_endpoint_attempts_total",
			Help:      "Total generative endpoint attempts by model and outcome",
		}, []string{"model", "outcome"}),
		aiFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "chatbot",
			Name:      "ai_fallback_total",
			Help:      "Messages that fell back to keyword rules",
		}, []string{"reason"}),
		aiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dental",
			Subsystem: "chatbot",
			Name:      "ai_latency_seconds",
			Help:      "Latency of generative intent classification",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.endpointAttempts, m.aiFallbacks, m.aiLatency)
	return m
}

func (m *ChatbotMetrics) ObserveMessage(path, responseType string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(path, responseType).Inc()
}

func (m *ChatbotMetrics) ObserveEndpointAttempt(model, outcome string) {
	if m == nil {
		return
	}
	m.endpointAttempts.WithLabelValues(model, outcome).Inc()
}

func (m *ChatbotMetrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.aiFallbacks.WithLabelValues(reason).Inc()
}

func (m *ChatbotMetrics) ObserveAILatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.aiLatency.WithLabelValues(status).Observe(seconds)
}

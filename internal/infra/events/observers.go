package events

import (
	"context"
	"strings"

	"github.com/ariachat/server/internal/utils/metrics"
	"go.uber.org/zap"
)

// MetricsHandler turns domain events into Prometheus counters.
type MetricsHandler struct {
	metrics *metrics.Metrics
}

// NewMetricsHandler creates a MetricsHandler.
func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// Handles returns the list of event types this handler can process.
func (h *MetricsHandler) Handles() []string {
	return []string{
		TypeAccountRegistered,
		TypeUsageRecorded,
		TypeQuotaExhausted,
		TypePremiumGranted,
		TypePremiumExpired,
		TypePremiumRevoked,
		TypeOrderCreated,
		TypeOrderPaid,
		TypeOrderFailed,
	}
}

// Handle processes the given event.
func (h *MetricsHandler) Handle(_ context.Context, event Event) error {
	switch e := event.(type) {
	case *AccountRegisteredEvent:
		h.metrics.RecordAccountRegistered()
	case *UsageRecordedEvent:
		h.metrics.RecordUsage(e.Usage.SecondsConsumed, e.Unlimited)
	case *QuotaExhaustedEvent:
		h.metrics.RecordQuotaRejection()
	case *PremiumEvent:
		h.metrics.RecordPremiumChange(premiumChange(e.EventType()), e.Source)
	case *OrderEvent:
		h.metrics.RecordOrder(e.Provider, e.Status.String())
	}
	return nil
}

func premiumChange(eventType string) string {
	return strings.ToLower(strings.TrimPrefix(eventType, "Premium"))
}

// AuditHandler logs entitlement and payment changes.
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{logger: logger.Named("audit")}
}

// Handles returns the list of event types this handler can process.
func (h *AuditHandler) Handles() []string {
	return []string{
		TypePremiumGranted,
		TypePremiumExpired,
		TypePremiumRevoked,
		TypeOrderPaid,
		TypeOrderFailed,
	}
}

// Handle processes the given event.
func (h *AuditHandler) Handle(_ context.Context, event Event) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("account_id", event.AccountID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case *PremiumEvent:
		fields = append(fields, zap.String("source", e.Source), zap.Int("duration_months", e.DurationMonths))
		if e.PremiumExpiry != nil {
			fields = append(fields, zap.Time("premium_expiry", *e.PremiumExpiry))
		}
	case *OrderEvent:
		fields = append(fields,
			zap.String("order_id", e.OrderID),
			zap.String("provider", e.Provider),
			zap.Int64("amount", e.Amount),
		)
		if e.Reason != "" {
			fields = append(fields, zap.String("reason", e.Reason))
		}
	}
	h.logger.Info("entitlement event", fields...)
	return nil
}

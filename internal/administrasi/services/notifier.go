package services

import "github.com/rs/zerolog"

// Event yang dikirim ke dashboard lewat websocket.
const (
	EventBillingUpdate = "billing_update"
	EventAntrianUpdate = "antrian_update"
)

// Notifier dipenuhi oleh ws.Hub. Publish tidak boleh memblokir.
type Notifier interface {
	Publish(eventType string, data any) error
}

// NopNotifier dipakai bila realtime tidak dibutuhkan (CLI, test).
type NopNotifier struct{}

func (NopNotifier) Publish(string, any) error { return nil }

func publish(n Notifier, logger zerolog.Logger, eventType string, data any) {
	if n == nil {
		return
	}
	if err := n.Publish(eventType, data); err != nil {
		logger.Warn().Err(err).Str("event", eventType).Msg("publish realtime event failed")
	}
}

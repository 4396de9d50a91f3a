package worker

import (
	"go.uber.org/zap"

	"github.com/courtline/court-booking/internal/config"
	"github.com/courtline/court-booking/internal/events"
	"github.com/courtline/court-booking/internal/service"
)

// StartNotificationWorker wires booking notifications onto the dispatcher.
// Events go to Kafka when brokers are configured and are only logged otherwise.
// Delivery runs on a background goroutine; the returned function drains
// pending events and closes the sink.
func StartNotificationWorker(cfg config.EventsConfig, dispatcher events.Dispatcher, logger *zap.Logger) func() error {
	if dispatcher == nil {
		return func() error { return nil }
	}

	var sink events.Sink
	if len(cfg.KafkaBrokers) > 0 {
		sink = events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("booking events forwarded to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	notifications := service.NewNotificationService(dispatcher, sink, logger)
	notifications.RegisterHandlers()
	notifications.Start()

	return func() error {
		notifications.Stop()
		if sink == nil {
			return nil
		}
		return sink.Close()
	}
}

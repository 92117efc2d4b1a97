package worker

import (
	"context"

	"estimate-service/internal/broker"
	"estimate-service/internal/mailer"
	"estimate-service/internal/models"
	"estimate-service/internal/util"

	"go.uber.org/zap"
)

// MessageSource is the part of broker.Consumer the worker needs
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// NotificationWorker delivers queued notification emails
type NotificationWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	mailer       mailer.Mailer
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker.
// consumer may be nil when the worker is only used through Notify.
func NewNotificationWorker(consumer MessageSource, m mailer.Mailer) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		mailer:   m,
		logger:   util.GetLogger(),
	}

	w.eventHandler = broker.NewEventHandler()
	w.eventHandler.OnNotification(w.handleNotification)
	return w
}

// Start consumes the notification queue until ctx is done
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker...")
	if w.consumer == nil {
		return nil
	}
	return w.consumer.Close()
}

// Notify sends an email right away, bypassing the queue.
// Used as the service Notifier when no broker is configured.
func (w *NotificationWorker) Notify(ctx context.Context, kind, recipient string, data map[string]string) error {
	return w.deliver(ctx, kind, recipient, data)
}

func (w *NotificationWorker) handleNotification(ctx context.Context, event *models.NotificationRequestedEvent) error {
	if err := w.deliver(ctx, event.Kind, event.Recipient, event.Data); err != nil {
		// an undeliverable email is dropped rather than retried forever
		w.logger.Error("Dropping notification",
			zap.String("event_id", event.EventID),
			zap.String("kind", event.Kind),
			zap.Error(err))
	}
	return nil
}

func (w *NotificationWorker) deliver(ctx context.Context, kind, recipient string, data map[string]string) error {
	if err := w.mailer.Send(ctx, kind, recipient, data); err != nil {
		util.NotificationsTotal.WithLabelValues(kind, "send_failed").Inc()
		return err
	}
	util.NotificationsTotal.WithLabelValues(kind, "sent").Inc()
	return nil
}

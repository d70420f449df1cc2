package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// FunnelSendHandler processes one queued funnel send.
type FunnelSendHandler interface {
	Execute(ctx context.Context, payload usecase.FunnelSendPayload) error
}

type consumer interface {
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	channel consumer
	handler FunnelSendHandler
	logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, handler FunnelSendHandler, logger *zap.Logger) *Worker {
	return &Worker{
		channel: ch,
		handler: handler,
		logger:  logger.Named("funnel_worker"),
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.channel.ConsumeWithContext(ctx,
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.logger.Info("worker waiting for messages", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queueName)
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks processed sends. Malformed bodies and failed sends are rejected
// without requeue so they land in the dead letter queue. A failed send has
// already put its enrollment back on the schedule.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var payload usecase.FunnelSendPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		w.logger.Error("invalid message body", zap.Error(err), zap.String("message_id", d.MessageId))
		_ = d.Nack(false, false)
		return
	}

	log := w.logger.With(zap.String("enrollment_id", payload.EnrollmentID), zap.Int("phase", payload.Phase))
	if err := w.handler.Execute(ctx, payload); err != nil {
		log.Error("funnel send failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	log.Debug("funnel send processed")
	_ = d.Ack(false)
}

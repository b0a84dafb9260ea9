package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/livestockhub/marketplace-api/internal/model"
)

// Notifier delivers notification events to users. Delivery is best effort:
// a failed notification never fails the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event model.NotificationEvent)
}

// AMQPNotifier publishes events to the notifications queue for the
// notification worker to persist.
type AMQPNotifier struct {
	ch    *amqp.Channel
	queue string
	log   *slog.Logger
}

func NewAMQPNotifier(ch *amqp.Channel, queue string, log *slog.Logger) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, queue: queue, log: log}
}

func (n *AMQPNotifier) Notify(ctx context.Context, event model.NotificationEvent) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.log.Error("marshal notification event", "type", event.Type, "error", err)
		return
	}
	err = n.ch.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		n.log.Error("publish notification event",
			"type", event.Type, "user_id", event.UserID, "error", err)
	}
}

var orderEventTitles = map[string]string{
	model.NotifyOrderPlaced:     "Order placed",
	model.NotifyOrderConfirmed:  "Order confirmed",
	model.NotifyOrderProcessing: "Order processing",
	model.NotifyOrderShipped:    "Order shipped",
	model.NotifyOrderDelivered:  "Order delivered",
	model.NotifyOrderCancelled:  "Order cancelled",
}

func placedEvent(userID, orderID uuid.UUID, orderNumber string) model.NotificationEvent {
	return model.NotificationEvent{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    model.NotifyOrderPlaced,
		Title:   orderEventTitles[model.NotifyOrderPlaced],
		Message: fmt.Sprintf("Order %s has been placed", orderNumber),
		OrderID: &orderID,
	}
}

func statusEvent(userID, orderID uuid.UUID, orderNumber string, from, to model.OrderStatus) model.NotificationEvent {
	typ := statusNotifyType(to)
	return model.NotificationEvent{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    typ,
		Title:   orderEventTitles[typ],
		Message: fmt.Sprintf("Order %s moved from %s to %s", orderNumber, from, to),
		OrderID: &orderID,
	}
}

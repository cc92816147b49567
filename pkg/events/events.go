package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "publishing event", "subject", subject, "bytes", len(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NopBus satisfies EventBus when eventing is disabled (dev mode).
type NopBus struct{}

func (NopBus) Publish(context.Context, string, interface{}) error          { return nil }
func (NopBus) Subscribe(string, func(msg *Message)) error                  { return nil }
func (NopBus) QueueSubscribe(string, string, func(msg *Message)) error     { return nil }
func (NopBus) Close() error                                                { return nil }

// Subjects.
const (
	BookingConfirmed = "booking.confirmed"
	BookingAbandoned = "booking.abandoned"
	NotifySend       = "notify.send"
)

// Event payloads.
type BookingConfirmedEvent struct {
	BookingID      string    `json:"booking_id"`
	UserID         *int64    `json:"user_id,omitempty"`
	RouteName      string    `json:"route_name"`
	SeatLabel      string    `json:"seat_label"`
	DepartsAt      time.Time `json:"departs_at"`
	TotalAmount    int64     `json:"total_amount"`
	DoorstepPickup bool      `json:"doorstep_pickup"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

type BookingAbandonedEvent struct {
	SessionToken string    `json:"session_token"`
	AbandonedAt  time.Time `json:"abandoned_at"`
}

type NotificationEvent struct {
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Template  string                 `json:"template"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

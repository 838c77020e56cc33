// Package eventsrepo publishes reservation lifecycle events to RabbitMQ.
// Publish failures are logged by callers and never interrupt the request
// that produced the event.
package eventsrepo

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue reservation events are delivered to.
const QueueName = "reservation.events"

const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationApproved  = "reservation.approved"
	TypeReservationRejected  = "reservation.rejected"
	TypeReservationCancelled = "reservation.cancelled"
	TypePaymentRecorded      = "payment.recorded"
)

// Event carries enough information for downstream consumers to notify
// guests and hosts without querying the primary database.
type Event struct {
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	ListingID     int64     `json:"listing_id"`
	ListingTitle  string    `json:"listing_title"`
	GuestID       int64     `json:"guest_id"`
	GuestEmail    string    `json:"guest_email,omitempty"`
	HostID        int64     `json:"host_id"`
	HostEmail     string    `json:"host_email,omitempty"`
	CheckInDate   string    `json:"check_in_date"`
	CheckOutDate  string    `json:"check_out_date"`
	TotalPrice    float64   `json:"total_price"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Repo interface {
	Publish(ctx context.Context, ev Event) error
}

type amqpRepo struct{ url string }

// NewAMQP returns a publisher that dials per publish. Connections are
// short-lived on purpose: publishes are rare relative to HTTP traffic.
func NewAMQP(url string) Repo { return &amqpRepo{url: url} }

func (r *amqpRepo) Publish(ctx context.Context, ev Event) error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

type noopRepo struct{}

// NewNoop returns a publisher that drops events. Used when no broker is
// configured.
func NewNoop() Repo { return noopRepo{} }

func (noopRepo) Publish(context.Context, Event) error { return nil }

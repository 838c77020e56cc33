// Package notifysvc is the background consumer that drains the
// reservation.events queue and turns each event into an email to the
// affected guest or host.
package notifysvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	eventsrepo "stayin/repository/events"
	mailrepo "stayin/repository/mail"
)

type Consumer struct {
	url  string
	mail mailrepo.Repo
	log  *slog.Logger
}

func NewConsumer(url string, mail mailrepo.Repo, log *slog.Logger) *Consumer {
	return &Consumer{url: url, mail: mail, log: log}
}

// Run consumes until the context is cancelled, reconnecting with backoff
// when the broker drops. Failed messages are rejected without requeue so a
// poison message cannot spin the loop.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Error("notify: dial broker failed", "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			c.log.Error("notify: consume loop ended", "error", err)
		}
		_ = conn.Close()
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(eventsrepo.QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(eventsrepo.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.log.Error("notify: handle event failed", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev eventsrepo.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	msg, ok := compose(ev)
	if !ok {
		c.log.Warn("notify: event skipped", "type", ev.Type, "reservation_id", ev.ReservationID)
		return nil
	}
	if msg.To == "" {
		c.log.Warn("notify: no recipient", "type", ev.Type, "reservation_id", ev.ReservationID)
		return nil
	}

	if err := c.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	c.log.Info("notify: mail sent", "type", ev.Type, "reservation_id", ev.ReservationID, "to", msg.To)
	return nil
}

// compose picks recipient and wording per event type. Host hears about new
// requests, cancellations and money; the guest hears the host's answer.
func compose(ev eventsrepo.Event) (mailrepo.Message, bool) {
	stay := fmt.Sprintf("%q, %s to %s", ev.ListingTitle, ev.CheckInDate, ev.CheckOutDate)

	switch ev.Type {
	case eventsrepo.TypeReservationCreated:
		return mailrepo.Message{
			To:      ev.HostEmail,
			Subject: "New reservation request",
			Body:    fmt.Sprintf("You have a new reservation request for %s, total %.2f.", stay, ev.TotalPrice),
		}, true
	case eventsrepo.TypeReservationApproved:
		return mailrepo.Message{
			To:      ev.GuestEmail,
			Subject: "Reservation approved",
			Body:    fmt.Sprintf("Your reservation for %s was approved. You can now pay %.2f.", stay, ev.TotalPrice),
		}, true
	case eventsrepo.TypeReservationRejected:
		return mailrepo.Message{
			To:      ev.GuestEmail,
			Subject: "Reservation declined",
			Body:    fmt.Sprintf("Your reservation request for %s was declined.", stay),
		}, true
	case eventsrepo.TypeReservationCancelled:
		return mailrepo.Message{
			To:      ev.HostEmail,
			Subject: "Reservation cancelled",
			Body:    fmt.Sprintf("The reservation for %s was cancelled by the guest.", stay),
		}, true
	case eventsrepo.TypePaymentRecorded:
		return mailrepo.Message{
			To:      ev.HostEmail,
			Subject: "Payment received",
			Body:    fmt.Sprintf("Payment of %.2f was recorded for %s.", ev.TotalPrice, stay),
		}, true
	}
	return mailrepo.Message{}, false
}

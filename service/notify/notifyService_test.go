package notifysvc

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	eventsrepo "stayin/repository/events"
	mailrepo "stayin/repository/mail"
)

type mockMail struct{ sent []mailrepo.Message }

func (m *mockMail) Send(_ context.Context, msg mailrepo.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func marshal(t *testing.T, ev eventsrepo.Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestHandle_RoutesByType(t *testing.T) {
	ev := eventsrepo.Event{
		ReservationID: 9,
		ListingTitle:  "Canal House",
		GuestEmail:    "guest@example.com",
		HostEmail:     "host@example.com",
		CheckInDate:   "2026-06-10",
		CheckOutDate:  "2026-06-13",
		TotalPrice:    3000,
	}

	cases := []struct {
		typ string
		to  string
	}{
		{eventsrepo.TypeReservationCreated, "host@example.com"},
		{eventsrepo.TypeReservationApproved, "guest@example.com"},
		{eventsrepo.TypeReservationRejected, "guest@example.com"},
		{eventsrepo.TypeReservationCancelled, "host@example.com"},
		{eventsrepo.TypePaymentRecorded, "host@example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.typ, func(t *testing.T) {
			mail := &mockMail{}
			c := NewConsumer("amqp://unused", mail, slog.Default())

			ev.Type = tc.typ
			require.NoError(t, c.handle(context.Background(), marshal(t, ev)))
			require.Len(t, mail.sent, 1)
			require.Equal(t, tc.to, mail.sent[0].To)
			require.Contains(t, mail.sent[0].Body, "Canal House")
		})
	}
}

func TestHandle_UnknownTypeSkipped(t *testing.T) {
	mail := &mockMail{}
	c := NewConsumer("amqp://unused", mail, slog.Default())

	ev := eventsrepo.Event{Type: "something.else", HostEmail: "host@example.com"}
	require.NoError(t, c.handle(context.Background(), marshal(t, ev)))
	require.Empty(t, mail.sent)
}

func TestHandle_BadPayload(t *testing.T) {
	c := NewConsumer("amqp://unused", &mockMail{}, slog.Default())
	require.Error(t, c.handle(context.Background(), []byte("not json")))
}

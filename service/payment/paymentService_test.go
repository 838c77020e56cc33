package paymentsvc

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	eventsrepo "stayin/repository/events"
	"stayin/model"
)

type mockRepo struct {
	insertFn        func(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	byReservationFn func(ctx context.Context, reservationID int64) (*model.Payment, error)
	listByGuestFn   func(ctx context.Context, guestID int64) ([]HistoryRow, error)
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	if m.insertFn == nil {
		p.ID = 1
		return nil
	}
	return m.insertFn(ctx, tx, p)
}

func (m *mockRepo) ByReservation(ctx context.Context, reservationID int64) (*model.Payment, error) {
	return m.byReservationFn(ctx, reservationID)
}

func (m *mockRepo) ListByGuest(ctx context.Context, guestID int64) ([]HistoryRow, error) {
	return m.listByGuestFn(ctx, guestID)
}

type mockReservations struct {
	byIDFn     func(ctx context.Context, id int64) (*model.Reservation, error)
	markPaidFn func(ctx context.Context, tx *sql.Tx, id int64, paidAt time.Time, transactionID string) error
}

var _ Reservations = (*mockReservations)(nil)

func (m *mockReservations) ByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return m.byIDFn(ctx, id)
}

func (m *mockReservations) MarkPaid(ctx context.Context, tx *sql.Tx, id int64, paidAt time.Time, transactionID string) error {
	if m.markPaidFn == nil {
		return nil
	}
	return m.markPaidFn(ctx, tx, id, paidAt, transactionID)
}

func (m *mockReservations) ListingTitle(ctx context.Context, listingID int64) (string, error) {
	return "Canal House", nil
}

type mockUsers struct{}

func (mockUsers) ByID(ctx context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id, Email: "user@example.com"}, nil
}

type mockEvents struct{ published []eventsrepo.Event }

func (m *mockEvents) Publish(_ context.Context, ev eventsrepo.Event) error {
	m.published = append(m.published, ev)
	return nil
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 8; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	return db
}

func approvedReservation() *model.Reservation {
	return &model.Reservation{
		ID:           9,
		ListingID:    7,
		GuestID:      5,
		HostID:       3,
		CheckInDate:  time.Now().AddDate(0, 0, 10),
		CheckOutDate: time.Now().AddDate(0, 0, 13),
		TotalPrice:   3000,
		Status:       model.ReservationApproved,
	}
}

func goodCard() CardInput {
	return CardInput{
		CardNumber:  "4111 1111 1111 1234",
		CardHolder:  "Jane Guest",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 1,
		CVV:         "123",
		Amount:      3000,
	}
}

func newSvc(t *testing.T, resv *mockReservations, ev *mockEvents) Service {
	t.Helper()
	return New(newTestDB(t), &mockRepo{}, resv, mockUsers{}, ev)
}

// --- tests ---

func TestProcess_Success(t *testing.T) {
	ev := &mockEvents{}
	var markedTxn string
	resv := &mockReservations{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return approvedReservation(), nil
		},
		markPaidFn: func(ctx context.Context, tx *sql.Tx, id int64, paidAt time.Time, transactionID string) error {
			markedTxn = transactionID
			return nil
		},
	}
	svc := newSvc(t, resv, ev)

	p, err := svc.Process(context.Background(), 5, 9, goodCard())
	require.NoError(t, err)
	require.Equal(t, "1234", p.CardLastFour)
	require.True(t, strings.HasPrefix(p.TransactionID, "TXN-"))
	require.Len(t, p.TransactionID, len("TXN-")+8)
	require.Equal(t, strings.ToUpper(p.TransactionID), p.TransactionID)
	require.Equal(t, p.TransactionID, markedTxn)

	require.Len(t, ev.published, 1)
	require.Equal(t, eventsrepo.TypePaymentRecorded, ev.published[0].Type)
}

func TestProcess_NotGuest(t *testing.T) {
	resv := &mockReservations{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return approvedReservation(), nil
		},
	}
	svc := newSvc(t, resv, &mockEvents{})

	_, err := svc.Process(context.Background(), 3, 9, goodCard()) // the host tries
	require.Equal(t, ErrNotGuest, Code(err))
}

func TestProcess_NotApproved(t *testing.T) {
	for _, st := range []model.ReservationStatus{
		model.ReservationPending, model.ReservationRejected, model.ReservationCancelled,
	} {
		resv := &mockReservations{
			byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
				r := approvedReservation()
				r.Status = st
				return r, nil
			},
		}
		svc := newSvc(t, resv, &mockEvents{})

		_, err := svc.Process(context.Background(), 5, 9, goodCard())
		require.Equal(t, ErrNotApproved, Code(err), "status %s", st)
	}
}

func TestProcess_AlreadyPaid(t *testing.T) {
	resv := &mockReservations{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			r := approvedReservation()
			r.IsPaid = true
			return r, nil
		},
	}
	svc := newSvc(t, resv, &mockEvents{})

	_, err := svc.Process(context.Background(), 5, 9, goodCard())
	require.Equal(t, ErrAlreadyPaid, Code(err))
}

func TestProcess_AmountMismatch(t *testing.T) {
	resv := &mockReservations{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return approvedReservation(), nil
		},
	}
	svc := newSvc(t, resv, &mockEvents{})

	for _, amount := range []float64{2999.99, 3000.01, 0} {
		in := goodCard()
		in.Amount = amount
		_, err := svc.Process(context.Background(), 5, 9, in)
		require.Equal(t, ErrAmountMismatch, Code(err), "amount %v", amount)
	}
}

func TestProcess_CardValidation(t *testing.T) {
	resv := &mockReservations{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return approvedReservation(), nil
		},
	}
	svc := newSvc(t, resv, &mockEvents{})

	mutate := map[string]func(*CardInput){
		"short number":     func(c *CardInput) { c.CardNumber = "4111 1111 1111" },
		"long number":      func(c *CardInput) { c.CardNumber = "41111111111112345" },
		"letters in number": func(c *CardInput) { c.CardNumber = "4111 1111 1111 12ab" },
		"short cvv":        func(c *CardInput) { c.CVV = "12" },
		"long cvv":         func(c *CardInput) { c.CVV = "12345" },
		"cvv letters":      func(c *CardInput) { c.CVV = "12a" },
		"month zero":       func(c *CardInput) { c.ExpiryMonth = 0 },
		"month thirteen":   func(c *CardInput) { c.ExpiryMonth = 13 },
		"expired year":     func(c *CardInput) { c.ExpiryYear = time.Now().Year() - 1 },
	}
	for name, fn := range mutate {
		in := goodCard()
		fn(&in)
		_, err := svc.Process(context.Background(), 5, 9, in)
		require.Equal(t, ErrBadCard, Code(err), name)
	}

	// spaces in the number are fine
	in := goodCard()
	in.CardNumber = "4111111111111234"
	_, err := svc.Process(context.Background(), 5, 9, in)
	require.NoError(t, err)
}

func TestProcess_CVVFourDigits(t *testing.T) {
	resv := &mockReservations{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return approvedReservation(), nil
		},
	}
	svc := newSvc(t, resv, &mockEvents{})

	in := goodCard()
	in.CVV = "1234"
	_, err := svc.Process(context.Background(), 5, 9, in)
	require.NoError(t, err)
}

func TestByReservation_Access(t *testing.T) {
	resv := &mockReservations{
		byIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return approvedReservation(), nil
		},
	}
	r := &mockRepo{
		byReservationFn: func(ctx context.Context, reservationID int64) (*model.Payment, error) {
			return &model.Payment{ReservationID: reservationID, CardLastFour: "1234"}, nil
		},
	}
	svc := New(newTestDB(t), r, resv, mockUsers{}, &mockEvents{})

	for _, userID := range []int64{5, 3} { // guest, then host
		p, err := svc.ByReservation(context.Background(), userID, 9)
		require.NoError(t, err)
		require.Equal(t, "1234", p.CardLastFour)
	}

	_, err := svc.ByReservation(context.Background(), 99, 9)
	require.Equal(t, ErrNoAccess, Code(err))
}

func TestMasked(t *testing.T) {
	require.Equal(t, "**** **** **** 1234", Masked("1234"))
}

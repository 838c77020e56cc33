package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	eventsrepo "stayin/repository/events"
	prepo "stayin/repository/payment"

	"stayin/model"
)

type ErrCode string

const (
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrNotGuest       ErrCode = "NOT_GUEST"
	ErrNotApproved    ErrCode = "NOT_APPROVED"
	ErrAlreadyPaid    ErrCode = "ALREADY_PAID"
	ErrAmountMismatch ErrCode = "AMOUNT_MISMATCH"
	ErrBadCard        ErrCode = "BAD_CARD"
	ErrNoAccess       ErrCode = "NO_ACCESS"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type HistoryRow = prepo.HistoryRow

// CardInput is the simulated card form. Nothing here ever reaches a real
// processor and only the last four digits are persisted.
type CardInput struct {
	CardNumber  string
	CardHolder  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	Amount      float64
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	ByReservation(ctx context.Context, reservationID int64) (*model.Payment, error)
	ListByGuest(ctx context.Context, guestID int64) ([]HistoryRow, error)
}

// Reservations is the slice of the reservation repository payments need.
type Reservations interface {
	ByID(ctx context.Context, id int64) (*model.Reservation, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, id int64, paidAt time.Time, transactionID string) error
	ListingTitle(ctx context.Context, listingID int64) (string, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Service interface {
	// Process validates the card, records the payment and marks the
	// reservation paid, all in one transaction.
	Process(ctx context.Context, guestID, reservationID int64, in CardInput) (*model.Payment, error)

	// ByReservation returns the payment for a reservation; guest or host only.
	ByReservation(ctx context.Context, userID, reservationID int64) (*model.Payment, error)

	MyPayments(ctx context.Context, guestID int64) ([]HistoryRow, error)
}

type service struct {
	db   *sql.DB
	r    Repo
	resv Reservations
	u    Users
	ev   eventsrepo.Repo
}

func New(db *sql.DB, r Repo, resv Reservations, u Users, ev eventsrepo.Repo) Service {
	return &service{db: db, r: r, resv: resv, u: u, ev: ev}
}

// Masked renders a card number for display from its stored last four digits.
func Masked(lastFour string) string { return "**** **** **** " + lastFour }

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func validateCard(in CardInput) error {
	number := strings.ReplaceAll(in.CardNumber, " ", "")
	if len(number) != 16 || !digits(number) {
		return makeErr(ErrBadCard)
	}
	if l := len(in.CVV); l < 3 || l > 4 || !digits(in.CVV) {
		return makeErr(ErrBadCard)
	}
	if in.ExpiryMonth < 1 || in.ExpiryMonth > 12 {
		return makeErr(ErrBadCard)
	}
	if in.ExpiryYear < time.Now().Year() {
		return makeErr(ErrBadCard)
	}
	return nil
}

func (s *service) Process(ctx context.Context, guestID, reservationID int64, in CardInput) (p *model.Payment, err error) {
	res, err := s.resv.ByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if res.GuestID != guestID {
		return nil, makeErr(ErrNotGuest)
	}
	if res.Status != model.ReservationApproved {
		return nil, makeErr(ErrNotApproved)
	}
	if res.IsPaid {
		return nil, makeErr(ErrAlreadyPaid)
	}
	if in.Amount != res.TotalPrice {
		return nil, makeErr(ErrAmountMismatch)
	}
	if err = validateCard(in); err != nil {
		return nil, err
	}

	number := strings.ReplaceAll(in.CardNumber, " ", "")
	now := time.Now().UTC()
	txnID := "TXN-" + strings.ToUpper(uuid.NewString()[:8])

	p = &model.Payment{
		ReservationID: reservationID,
		Amount:        in.Amount,
		TransactionID: txnID,
		CardLastFour:  number[12:],
		CardHolder:    in.CardHolder,
		ExpiryMonth:   strconv.Itoa(in.ExpiryMonth),
		ExpiryYear:    strconv.Itoa(in.ExpiryYear),
		PaymentDate:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.r.Insert(ctx, tx, p); err != nil {
		return nil, err
	}
	if err = s.resv.MarkPaid(ctx, tx, reservationID, now, txnID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, res, now)
	return p, nil
}

func (s *service) ByReservation(ctx context.Context, userID, reservationID int64) (*model.Payment, error) {
	res, err := s.resv.ByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if res.GuestID != userID && res.HostID != userID {
		return nil, makeErr(ErrNoAccess)
	}

	p, err := s.r.ByReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *service) MyPayments(ctx context.Context, guestID int64) ([]HistoryRow, error) {
	return s.r.ListByGuest(ctx, guestID)
}

func (s *service) publish(ctx context.Context, res *model.Reservation, paidAt time.Time) {
	title, err := s.resv.ListingTitle(ctx, res.ListingID)
	if err != nil {
		title = ""
	}
	ev := eventsrepo.Event{
		Type:          eventsrepo.TypePaymentRecorded,
		ReservationID: res.ID,
		ListingID:     res.ListingID,
		ListingTitle:  title,
		GuestID:       res.GuestID,
		HostID:        res.HostID,
		CheckInDate:   res.CheckInDate.Format("2006-01-02"),
		CheckOutDate:  res.CheckOutDate.Format("2006-01-02"),
		TotalPrice:    res.TotalPrice,
		OccurredAt:    paidAt,
	}
	if g, err := s.u.ByID(ctx, res.GuestID); err == nil {
		ev.GuestEmail = g.Email
	}
	if h, err := s.u.ByID(ctx, res.HostID); err == nil {
		ev.HostEmail = h.Email
	}
	_ = s.ev.Publish(ctx, ev)
}

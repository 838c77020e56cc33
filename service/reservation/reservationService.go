package reservationsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	eventsrepo "stayin/repository/events"
	rrepo "stayin/repository/reservation"

	"stayin/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrListingNotFound  ErrCode = "LISTING_NOT_FOUND"
	ErrSelfBooking      ErrCode = "SELF_BOOKING"
	ErrDuplicateActive  ErrCode = "DUPLICATE_ACTIVE"
	ErrDateConflict     ErrCode = "DATE_CONFLICT"
	ErrInvalidDates     ErrCode = "INVALID_DATES"
	ErrPastCheckIn      ErrCode = "PAST_CHECK_IN"
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrNotHost          ErrCode = "NOT_HOST"
	ErrNotGuest         ErrCode = "NOT_GUEST"
	ErrAlreadyResponded ErrCode = "ALREADY_RESPONDED"
	ErrAlreadyCancelled ErrCode = "ALREADY_CANCELLED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// row shapes come straight from the repository
type (
	GuestRow = rrepo.GuestRow
	HostRow  = rrepo.HostRow
	Span     = rrepo.Span
)

type Repo interface {
	ListingForBooking(ctx context.Context, tx *sql.Tx, listingID int64) (ownerID *int64, price float64, title string, err error)
	HasActiveForGuestTx(ctx context.Context, tx *sql.Tx, guestID, listingID int64) (bool, error)
	ApprovedSpans(ctx context.Context, tx *sql.Tx, listingID int64) ([]Span, error)
	Insert(ctx context.Context, tx *sql.Tx, res *model.Reservation) error

	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error)
	SetStatus(ctx context.Context, tx *sql.Tx, id int64, status model.ReservationStatus, respondedAt *time.Time) error

	ListingTitle(ctx context.Context, listingID int64) (string, error)
	HasActiveForGuest(ctx context.Context, guestID, listingID int64) (bool, error)
	ListByGuest(ctx context.Context, guestID int64) ([]GuestRow, error)
	ListByHost(ctx context.Context, hostID int64) ([]HostRow, error)
}

// Users resolves guest/host emails for lifecycle events.
type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Service interface {
	// Create validates and persists a new Pending reservation request.
	Create(ctx context.Context, guestID, listingID int64, checkIn, checkOut time.Time, guests int) (*model.Reservation, error)

	// Approve / Reject act on Pending requests, host only.
	Approve(ctx context.Context, hostID, id int64) error
	Reject(ctx context.Context, hostID, id int64) error

	// Cancel is guest-only and also allowed on Approved reservations.
	Cancel(ctx context.Context, guestID, id int64) error

	MyReservations(ctx context.Context, guestID int64) ([]GuestRow, error)
	IncomingRequests(ctx context.Context, hostID int64) ([]HostRow, error)

	// CheckExisting reports whether the guest holds an active
	// (Pending or Approved) reservation on the listing. UI gating only;
	// Create re-checks.
	CheckExisting(ctx context.Context, guestID, listingID int64) (bool, error)
}

// ----- Service implementation -----

type service struct {
	db *sql.DB
	r  Repo
	u  Users
	ev eventsrepo.Repo
}

func New(db *sql.DB, r Repo, u Users, ev eventsrepo.Repo) Service {
	return &service{db: db, r: r, u: u, ev: ev}
}

// day truncates a timestamp to its UTC calendar date. Reservations are
// date-granular; times on the wire are ignored.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// overlaps reports whether [aIn,aOut) and [bIn,bOut) intersect.
// Half-open on check-out: back-to-back stays do not conflict.
func overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

func (s *service) Create(ctx context.Context, guestID, listingID int64, checkIn, checkOut time.Time, guests int) (res *model.Reservation, err error) {
	checkIn = day(checkIn)
	checkOut = day(checkOut)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ownerID, price, title, err := s.r.ListingForBooking(ctx, tx, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrListingNotFound)
		}
		return nil, err
	}

	if ownerID != nil && *ownerID == guestID {
		return nil, makeErr(ErrSelfBooking)
	}

	active, err := s.r.HasActiveForGuestTx(ctx, tx, guestID, listingID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, makeErr(ErrDuplicateActive)
	}

	// Only Approved reservations block dates. The check and the insert
	// share a transaction but no serialization, so two concurrent
	// requests for the same span can both pass.
	spans, err := s.r.ApprovedSpans(ctx, tx, listingID)
	if err != nil {
		return nil, err
	}
	for _, sp := range spans {
		if overlaps(checkIn, checkOut, day(sp.CheckIn), day(sp.CheckOut)) {
			return nil, makeErr(ErrDateConflict)
		}
	}

	if !checkIn.Before(checkOut) {
		return nil, makeErr(ErrInvalidDates)
	}
	if checkIn.Before(day(time.Now())) {
		return nil, makeErr(ErrPastCheckIn)
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	var hostID int64
	if ownerID != nil {
		hostID = *ownerID
	}
	res = &model.Reservation{
		ListingID:    listingID,
		GuestID:      guestID,
		HostID:       hostID, // snapshot: later ownership changes don't move the request
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Guests:       guests,
		TotalPrice:   float64(nights) * price,
		Status:       model.ReservationPending,
	}
	if err = s.r.Insert(ctx, tx, res); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, eventsrepo.TypeReservationCreated, res, title)
	return res, nil
}

// respond handles the shared host-side Approve/Reject transition.
func (s *service) respond(ctx context.Context, hostID, id int64, status model.ReservationStatus, evType string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := s.r.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if res.HostID != hostID {
		return makeErr(ErrNotHost)
	}
	if res.Status != model.ReservationPending {
		return makeErr(ErrAlreadyResponded)
	}

	now := time.Now().UTC()
	if err = s.r.SetStatus(ctx, tx, id, status, &now); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	res.Status = status
	res.RespondedAt = &now
	s.publishByID(ctx, evType, res)
	return nil
}

func (s *service) Approve(ctx context.Context, hostID, id int64) error {
	return s.respond(ctx, hostID, id, model.ReservationApproved, eventsrepo.TypeReservationApproved)
}

func (s *service) Reject(ctx context.Context, hostID, id int64) error {
	return s.respond(ctx, hostID, id, model.ReservationRejected, eventsrepo.TypeReservationRejected)
}

func (s *service) Cancel(ctx context.Context, guestID, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := s.r.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if res.GuestID != guestID {
		return makeErr(ErrNotGuest)
	}
	if res.Status == model.ReservationCancelled {
		return makeErr(ErrAlreadyCancelled)
	}

	// No responded_at update on cancel; it records the host's answer.
	if err = s.r.SetStatus(ctx, tx, id, model.ReservationCancelled, nil); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	res.Status = model.ReservationCancelled
	s.publishByID(ctx, eventsrepo.TypeReservationCancelled, res)
	return nil
}

func (s *service) MyReservations(ctx context.Context, guestID int64) ([]GuestRow, error) {
	return s.r.ListByGuest(ctx, guestID)
}

func (s *service) IncomingRequests(ctx context.Context, hostID int64) ([]HostRow, error) {
	return s.r.ListByHost(ctx, hostID)
}

func (s *service) CheckExisting(ctx context.Context, guestID, listingID int64) (bool, error) {
	return s.r.HasActiveForGuest(ctx, guestID, listingID)
}

// publishByID resolves the listing title before publishing.
func (s *service) publishByID(ctx context.Context, evType string, res *model.Reservation) {
	title, err := s.r.ListingTitle(ctx, res.ListingID)
	if err != nil {
		title = ""
	}
	s.publish(ctx, evType, res, title)
}

// publish emits a lifecycle event. Best effort: notification loss must not
// fail the booking that already committed.
func (s *service) publish(ctx context.Context, evType string, res *model.Reservation, title string) {
	ev := eventsrepo.Event{
		Type:          evType,
		ReservationID: res.ID,
		ListingID:     res.ListingID,
		ListingTitle:  title,
		GuestID:       res.GuestID,
		HostID:        res.HostID,
		CheckInDate:   res.CheckInDate.Format("2006-01-02"),
		CheckOutDate:  res.CheckOutDate.Format("2006-01-02"),
		TotalPrice:    res.TotalPrice,
		OccurredAt:    time.Now().UTC(),
	}
	if g, err := s.u.ByID(ctx, res.GuestID); err == nil {
		ev.GuestEmail = g.Email
	}
	if h, err := s.u.ByID(ctx, res.HostID); err == nil {
		ev.HostEmail = h.Email
	}
	_ = s.ev.Publish(ctx, ev)
}

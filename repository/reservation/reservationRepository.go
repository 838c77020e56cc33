package reservationrepo

import (
	"context"
	"database/sql"
	"time"

	"stayin/model"
)

// Span is an approved booking interval on a listing. Check-out is
// exclusive: [CheckIn, CheckOut).
type Span struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// GuestRow is a reservation as shown to the guest who made it.
type GuestRow struct {
	ID              int64                   `json:"id"`
	ListingID       int64                   `json:"listing_id"`
	ListingTitle    string                  `json:"listing_title"`
	ListingPhotoURL *string                 `json:"listing_photo_url,omitempty"`
	HostName        string                  `json:"host_name"`
	CheckInDate     time.Time               `json:"check_in_date"`
	CheckOutDate    time.Time               `json:"check_out_date"`
	Guests          int                     `json:"guests"`
	TotalPrice      float64                 `json:"total_price"`
	Status          model.ReservationStatus `json:"status"`
	CreatedAt       time.Time               `json:"created_at"`
	RespondedAt     *time.Time              `json:"responded_at,omitempty"`
	IsPaid          bool                    `json:"is_paid"`
	PaymentDate     *time.Time              `json:"payment_date,omitempty"`
}

// HostRow is an incoming reservation request as shown to the host.
type HostRow struct {
	ID              int64                   `json:"id"`
	ListingID       int64                   `json:"listing_id"`
	ListingTitle    string                  `json:"listing_title"`
	ListingPhotoURL *string                 `json:"listing_photo_url,omitempty"`
	GuestName       string                  `json:"guest_name"`
	GuestEmail      string                  `json:"guest_email"`
	CheckInDate     time.Time               `json:"check_in_date"`
	CheckOutDate    time.Time               `json:"check_out_date"`
	Guests          int                     `json:"guests"`
	TotalPrice      float64                 `json:"total_price"`
	Status          model.ReservationStatus `json:"status"`
	CreatedAt       time.Time               `json:"created_at"`
	RespondedAt     *time.Time              `json:"responded_at,omitempty"`
	IsPaid          bool                    `json:"is_paid"`
	PaymentDate     *time.Time              `json:"payment_date,omitempty"`
}

type Repo interface {
	// Listing lookups used while booking
	ListingForBooking(ctx context.Context, tx *sql.Tx, listingID int64) (ownerID *int64, price float64, title string, err error)
	ListingTitle(ctx context.Context, listingID int64) (string, error)

	// Booking
	HasActiveForGuestTx(ctx context.Context, tx *sql.Tx, guestID, listingID int64) (bool, error)
	ApprovedSpans(ctx context.Context, tx *sql.Tx, listingID int64) ([]Span, error)
	Insert(ctx context.Context, tx *sql.Tx, res *model.Reservation) error

	// Transitions
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error)
	SetStatus(ctx context.Context, tx *sql.Tx, id int64, status model.ReservationStatus, respondedAt *time.Time) error
	MarkPaid(ctx context.Context, tx *sql.Tx, id int64, paidAt time.Time, transactionID string) error

	// Reads
	ByID(ctx context.Context, id int64) (*model.Reservation, error)
	HasActiveForGuest(ctx context.Context, guestID, listingID int64) (bool, error)
	ListByGuest(ctx context.Context, guestID int64) ([]GuestRow, error)
	ListByHost(ctx context.Context, hostID int64) ([]HostRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) ListingForBooking(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
	const q = `
		SELECT user_id, price, title
		FROM listings
		WHERE id = $1`
	var ownerID *int64
	var price float64
	var title string
	err := tx.QueryRowContext(ctx, q, listingID).Scan(&ownerID, &price, &title)
	if err != nil {
		return nil, 0, "", err
	}
	return ownerID, price, title, nil
}

func (r *repo) ListingTitle(ctx context.Context, listingID int64) (string, error) {
	var title string
	err := r.db.QueryRowContext(ctx, `SELECT title FROM listings WHERE id = $1`, listingID).Scan(&title)
	return title, err
}

const activeQ = `
	SELECT EXISTS(
		SELECT 1 FROM reservations
		WHERE guest_id = $1
		AND listing_id = $2
		AND status IN ('Pending','Approved'))`

func (r *repo) HasActiveForGuestTx(ctx context.Context, tx *sql.Tx, guestID, listingID int64) (bool, error) {
	var ok bool
	err := tx.QueryRowContext(ctx, activeQ, guestID, listingID).Scan(&ok)
	return ok, err
}

func (r *repo) HasActiveForGuest(ctx context.Context, guestID, listingID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, activeQ, guestID, listingID).Scan(&ok)
	return ok, err
}

func (r *repo) ApprovedSpans(ctx context.Context, tx *sql.Tx, listingID int64) ([]Span, error) {
	const q = `
		SELECT check_in_date, check_out_date
		FROM reservations
		WHERE listing_id = $1
		AND status = 'Approved'
		ORDER BY check_in_date`
	rows, err := tx.QueryContext(ctx, q, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Span
	for rows.Next() {
		var s Span
		if err := rows.Scan(&s.CheckIn, &s.CheckOut); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `
		INSERT INTO reservations (listing_id, guest_id, host_id, check_in_date, check_out_date, guests, total_price, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		res.ListingID, res.GuestID, res.HostID,
		res.CheckInDate, res.CheckOutDate, res.Guests, res.TotalPrice, res.Status,
	).Scan(&res.ID, &res.CreatedAt)
}

const reservationCols = `
	id, listing_id, guest_id, host_id, check_in_date, check_out_date, guests,
	total_price, status, created_at, responded_at, is_paid, payment_date, transaction_id`

func scanReservation(sc interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	err := sc.Scan(
		&res.ID, &res.ListingID, &res.GuestID, &res.HostID,
		&res.CheckInDate, &res.CheckOutDate, &res.Guests,
		&res.TotalPrice, &res.Status, &res.CreatedAt, &res.RespondedAt,
		&res.IsPaid, &res.PaymentDate, &res.TransactionID,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+reservationCols+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
	return scanReservation(row)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationCols+` FROM reservations WHERE id = $1`, id)
	return scanReservation(row)
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, id int64, status model.ReservationStatus, respondedAt *time.Time) error {
	const q = `
		UPDATE reservations
		SET status = $2,
			responded_at = COALESCE($3, responded_at)
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, status, respondedAt)
	return err
}

func (r *repo) MarkPaid(ctx context.Context, tx *sql.Tx, id int64, paidAt time.Time, transactionID string) error {
	const q = `
		UPDATE reservations
		SET is_paid = TRUE,
			payment_date = $2,
			transaction_id = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, paidAt, transactionID)
	return err
}

func (r *repo) ListByGuest(ctx context.Context, guestID int64) ([]GuestRow, error) {
	const q = `
		SELECT r.id, r.listing_id, l.title, l.photo_urls->>0,
			h.full_name,
			r.check_in_date, r.check_out_date, r.guests, r.total_price,
			r.status, r.created_at, r.responded_at, r.is_paid, r.payment_date
		FROM reservations r
		JOIN listings l ON l.id = r.listing_id
		JOIN users h ON h.id = r.host_id
		WHERE r.guest_id = $1
		ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GuestRow, 0)
	for rows.Next() {
		var g GuestRow
		if err := rows.Scan(
			&g.ID, &g.ListingID, &g.ListingTitle, &g.ListingPhotoURL,
			&g.HostName,
			&g.CheckInDate, &g.CheckOutDate, &g.Guests, &g.TotalPrice,
			&g.Status, &g.CreatedAt, &g.RespondedAt, &g.IsPaid, &g.PaymentDate,
		); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *repo) ListByHost(ctx context.Context, hostID int64) ([]HostRow, error) {
	const q = `
		SELECT r.id, r.listing_id, l.title, l.photo_urls->>0,
			g.full_name, g.email,
			r.check_in_date, r.check_out_date, r.guests, r.total_price,
			r.status, r.created_at, r.responded_at, r.is_paid, r.payment_date
		FROM reservations r
		JOIN listings l ON l.id = r.listing_id
		JOIN users g ON g.id = r.guest_id
		WHERE r.host_id = $1
		ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HostRow, 0)
	for rows.Next() {
		var h HostRow
		if err := rows.Scan(
			&h.ID, &h.ListingID, &h.ListingTitle, &h.ListingPhotoURL,
			&h.GuestName, &h.GuestEmail,
			&h.CheckInDate, &h.CheckOutDate, &h.Guests, &h.TotalPrice,
			&h.Status, &h.CreatedAt, &h.RespondedAt, &h.IsPaid, &h.PaymentDate,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

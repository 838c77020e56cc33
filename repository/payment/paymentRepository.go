// repository/payment/paymentRepository.go
package paymentrepo

import (
	"context"
	"database/sql"
	"time"

	"stayin/model"
)

// HistoryRow is a payment as listed on the guest's payment history.
type HistoryRow struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	ListingTitle  string    `json:"listing_title"`
	CardLastFour  string    `json:"-"`
	CardHolder    string    `json:"card_holder"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	TransactionID string    `json:"transaction_id"`
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	ByReservation(ctx context.Context, reservationID int64) (*model.Payment, error)
	ListByGuest(ctx context.Context, guestID int64) ([]HistoryRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `
		INSERT INTO payments (reservation_id, card_last_four, card_holder, expiry_month, expiry_year, amount, payment_date, transaction_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`
	return tx.QueryRowContext(ctx, q,
		p.ReservationID, p.CardLastFour, p.CardHolder, p.ExpiryMonth, p.ExpiryYear,
		p.Amount, p.PaymentDate, p.TransactionID,
	).Scan(&p.ID)
}

func (r *repo) ByReservation(ctx context.Context, reservationID int64) (*model.Payment, error) {
	const q = `
		SELECT id, reservation_id, card_last_four, card_holder, expiry_month, expiry_year, amount, payment_date, transaction_id
		FROM payments
		WHERE reservation_id = $1`
	p := &model.Payment{}
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&p.ID, &p.ReservationID, &p.CardLastFour, &p.CardHolder,
		&p.ExpiryMonth, &p.ExpiryYear, &p.Amount, &p.PaymentDate, &p.TransactionID,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) ListByGuest(ctx context.Context, guestID int64) ([]HistoryRow, error) {
	const q = `
		SELECT p.id, p.reservation_id, l.title, p.card_last_four, p.card_holder,
			p.amount, p.payment_date, p.transaction_id
		FROM payments p
		JOIN reservations r ON r.id = p.reservation_id
		JOIN listings l ON l.id = r.listing_id
		WHERE r.guest_id = $1
		ORDER BY p.payment_date DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryRow, 0)
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.ID, &h.ReservationID, &h.ListingTitle, &h.CardLastFour, &h.CardHolder,
			&h.Amount, &h.PaymentDate, &h.TransactionID,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

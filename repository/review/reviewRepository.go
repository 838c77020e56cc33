// repository/review/reviewRepository.go
package reviewrepo

import (
	"context"
	"database/sql"
	"time"

	"stayin/model"
)

// ListingRow is a review as shown on a listing's public review feed.
type ListingRow struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	GuestID   int64     `json:"guest_id"`
	GuestName string    `json:"guest_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// MineRow is a review as listed on the author's own review history.
type MineRow struct {
	ID            int64     `json:"id"`
	ListingID     int64     `json:"listing_id"`
	ListingTitle  string    `json:"listing_title"`
	ReservationID int64     `json:"reservation_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

type Repo interface {
	Insert(ctx context.Context, rev *model.Review) error
	ByID(ctx context.Context, id int64) (*model.Review, error)
	ExistsForReservation(ctx context.Context, reservationID int64) (bool, error)
	ListByListing(ctx context.Context, listingID int64) ([]ListingRow, error)
	ListByGuest(ctx context.Context, guestID int64) ([]MineRow, error)
	Update(ctx context.Context, id int64, rating int, comment string) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, rev *model.Review) error {
	const q = `
		INSERT INTO reviews (listing_id, guest_id, reservation_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		rev.ListingID, rev.GuestID, rev.ReservationID, rev.Rating, rev.Comment,
	).Scan(&rev.ID, &rev.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Review, error) {
	const q = `
		SELECT id, listing_id, guest_id, reservation_id, rating, comment, created_at
		FROM reviews
		WHERE id = $1`
	rev := &model.Review{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rev.ID, &rev.ListingID, &rev.GuestID, &rev.ReservationID,
		&rev.Rating, &rev.Comment, &rev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *repo) ExistsForReservation(ctx context.Context, reservationID int64) (bool, error) {
	const q = `
		SELECT EXISTS(
			SELECT 1 FROM reviews
			WHERE reservation_id = $1)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(&ok)
	return ok, err
}

func (r *repo) ListByListing(ctx context.Context, listingID int64) ([]ListingRow, error) {
	const q = `
		SELECT v.id, v.listing_id, v.guest_id, g.full_name, v.rating, v.comment, v.created_at
		FROM reviews v
		JOIN users g ON g.id = v.guest_id
		WHERE v.listing_id = $1
		ORDER BY v.created_at DESC, v.id DESC`
	rows, err := r.db.QueryContext(ctx, q, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ListingRow, 0)
	for rows.Next() {
		var row ListingRow
		if err := rows.Scan(
			&row.ID, &row.ListingID, &row.GuestID, &row.GuestName,
			&row.Rating, &row.Comment, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) ListByGuest(ctx context.Context, guestID int64) ([]MineRow, error) {
	const q = `
		SELECT v.id, v.listing_id, l.title, v.reservation_id, v.rating, v.comment, v.created_at
		FROM reviews v
		JOIN listings l ON l.id = v.listing_id
		WHERE v.guest_id = $1
		ORDER BY v.created_at DESC, v.id DESC`
	rows, err := r.db.QueryContext(ctx, q, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MineRow, 0)
	for rows.Next() {
		var row MineRow
		if err := rows.Scan(
			&row.ID, &row.ListingID, &row.ListingTitle, &row.ReservationID,
			&row.Rating, &row.Comment, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, id int64, rating int, comment string) error {
	const q = `
		UPDATE reviews
		SET rating = $2,
			comment = $3
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, rating, comment)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `
		DELETE FROM reviews
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// repository/favorite/favoriteRepository.go
package favoriterepo

import (
	"context"
	"database/sql"
	"encoding/json"

	"stayin/model"
)

// Favorites live in a user_favorites(user_id, listing_id) association table
// with a composite primary key.
type Repo interface {
	Add(ctx context.Context, userID, listingID int64) error
	Remove(ctx context.Context, userID, listingID int64) (bool, error)
	Exists(ctx context.Context, userID, listingID int64) (bool, error)
	ListListings(ctx context.Context, userID int64) ([]model.Listing, error)
	ListIDs(ctx context.Context, userID int64) ([]int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Add(ctx context.Context, userID, listingID int64) error {
	const q = `
		INSERT INTO user_favorites (user_id, listing_id)
		VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, q, userID, listingID)
	return err
}

func (r *repo) Remove(ctx context.Context, userID, listingID int64) (bool, error) {
	const q = `
		DELETE FROM user_favorites
		WHERE user_id = $1 AND listing_id = $2`
	res, err := r.db.ExecContext(ctx, q, userID, listingID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Exists(ctx context.Context, userID, listingID int64) (bool, error) {
	const q = `
		SELECT EXISTS(
			SELECT 1 FROM user_favorites
			WHERE user_id = $1 AND listing_id = $2)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, userID, listingID).Scan(&ok)
	return ok, err
}

func (r *repo) ListListings(ctx context.Context, userID int64) ([]model.Listing, error) {
	const q = `
		SELECT l.id, l.user_id, l.place_type, l.accommodation_type, l.guests, l.bedrooms, l.beds, l.bathrooms,
			l.title, l.description, l.price,
			l.address_country, l.address_city, l.address_district, l.address_street,
			l.address_building, l.address_postal_code, l.address_region,
			l.amenities, l.photo_urls, l.latitude, l.longitude, l.is_archived, l.created_at
		FROM user_favorites f
		JOIN listings l ON l.id = f.listing_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanListing(sc interface{ Scan(...any) error }) (*model.Listing, error) {
	var l model.Listing
	var amenities, photos []byte
	err := sc.Scan(
		&l.ID, &l.UserID, &l.PlaceType, &l.AccommodationType, &l.Guests, &l.Bedrooms, &l.Beds, &l.Bathrooms,
		&l.Title, &l.Description, &l.Price,
		&l.Address.Country, &l.Address.City, &l.Address.District, &l.Address.Street,
		&l.Address.Building, &l.Address.PostalCode, &l.Address.Region,
		&amenities, &photos, &l.Latitude, &l.Longitude, &l.IsArchived, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &l.Amenities); err != nil {
			return nil, err
		}
	}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &l.PhotoURLs); err != nil {
			return nil, err
		}
	}
	return &l, nil
}

func (r *repo) ListIDs(ctx context.Context, userID int64) ([]int64, error) {
	const q = `
		SELECT listing_id
		FROM user_favorites
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

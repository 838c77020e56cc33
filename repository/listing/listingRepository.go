// repository/listing/listingRepository.go
package listingrepo

import (
	"context"
	"database/sql"
	"encoding/json"

	"stayin/model"
)

type Repo interface {
	Create(ctx context.Context, l *model.Listing) error
	Update(ctx context.Context, l *model.Listing) error
	ByID(ctx context.Context, id int64) (*model.Listing, error)
	ListPublic(ctx context.Context) ([]model.Listing, error)
	ListByOwner(ctx context.Context, userID int64, archived bool) ([]model.Listing, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const listingCols = `
	id, user_id, place_type, accommodation_type, guests, bedrooms, beds, bathrooms,
	title, description, price,
	address_country, address_city, address_district, address_street,
	address_building, address_postal_code, address_region,
	amenities, photo_urls, latitude, longitude, is_archived, created_at`

func (r *repo) Create(ctx context.Context, l *model.Listing) error {
	amenities, err := json.Marshal(l.Amenities)
	if err != nil {
		return err
	}
	photos, err := json.Marshal(l.PhotoURLs)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO listings (
			user_id, place_type, accommodation_type, guests, bedrooms, beds, bathrooms,
			title, description, price,
			address_country, address_city, address_district, address_street,
			address_building, address_postal_code, address_region,
			amenities, photo_urls, latitude, longitude
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING id, is_archived, created_at`,
		l.UserID, l.PlaceType, l.AccommodationType, l.Guests, l.Bedrooms, l.Beds, l.Bathrooms,
		l.Title, l.Description, l.Price,
		l.Address.Country, l.Address.City, l.Address.District, l.Address.Street,
		l.Address.Building, l.Address.PostalCode, l.Address.Region,
		amenities, photos, l.Latitude, l.Longitude,
	).Scan(&l.ID, &l.IsArchived, &l.CreatedAt)
}

func (r *repo) Update(ctx context.Context, l *model.Listing) error {
	amenities, err := json.Marshal(l.Amenities)
	if err != nil {
		return err
	}
	photos, err := json.Marshal(l.PhotoURLs)
	if err != nil {
		return err
	}
	const q = `
		UPDATE listings
		SET place_type=$2, accommodation_type=$3, guests=$4, bedrooms=$5, beds=$6, bathrooms=$7,
			title=$8, description=$9, price=$10,
			address_country=$11, address_city=$12, address_district=$13, address_street=$14,
			address_building=$15, address_postal_code=$16, address_region=$17,
			amenities=$18, photo_urls=$19, latitude=$20, longitude=$21
		WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q,
		l.ID, l.PlaceType, l.AccommodationType, l.Guests, l.Bedrooms, l.Beds, l.Bathrooms,
		l.Title, l.Description, l.Price,
		l.Address.Country, l.Address.City, l.Address.District, l.Address.Street,
		l.Address.Building, l.Address.PostalCode, l.Address.Region,
		amenities, photos, l.Latitude, l.Longitude,
	)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
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

func (r *repo) ByID(ctx context.Context, id int64) (*model.Listing, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+listingCols+` FROM listings WHERE id = $1`, id)
	return scanListing(row)
}

func (r *repo) ListPublic(ctx context.Context) ([]model.Listing, error) {
	const q = `SELECT ` + listingCols + `
		FROM listings
		WHERE NOT is_archived
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q)
}

func (r *repo) ListByOwner(ctx context.Context, userID int64, archived bool) ([]model.Listing, error) {
	const q = `SELECT ` + listingCols + `
		FROM listings
		WHERE user_id = $1 AND is_archived = $2
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID, archived)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
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

func (r *repo) SetArchived(ctx context.Context, id int64, archived bool) error {
	const q = `
		UPDATE listings
		SET is_archived = $2
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, archived)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

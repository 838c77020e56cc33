package reviewsvc

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	reviewrepo "stayin/repository/review"

	"stayin/model"
)

type ErrCode string

const (
	ErrBadRating          ErrCode = "BAD_RATING"
	ErrEmptyComment       ErrCode = "EMPTY_COMMENT"
	ErrReservationMissing ErrCode = "RESERVATION_NOT_FOUND"
	ErrNotGuest           ErrCode = "NOT_GUEST"
	ErrNotApproved        ErrCode = "NOT_APPROVED"
	ErrStayNotOver        ErrCode = "STAY_NOT_OVER"
	ErrAlreadyReviewed    ErrCode = "ALREADY_REVIEWED"
	ErrListingNotFound    ErrCode = "LISTING_NOT_FOUND"
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrNotAuthor          ErrCode = "NOT_AUTHOR"
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

type (
	ListingRow = reviewrepo.ListingRow
	MineRow    = reviewrepo.MineRow
)

// Summary is the public review feed of a listing.
type Summary struct {
	Count         int          `json:"count"`
	AverageRating float64      `json:"average_rating"`
	Reviews       []ListingRow `json:"reviews"`
}

// Reservations is the reservation lookup reviews gate on.
type Reservations interface {
	ByID(ctx context.Context, id int64) (*model.Reservation, error)
}

type Listings interface {
	ByID(ctx context.Context, id int64) (*model.Listing, error)
}

type Service interface {
	// Create accepts one review per reservation, once the approved stay
	// is over.
	Create(ctx context.Context, guestID, reservationID int64, rating int, comment string) (*model.Review, error)

	ForListing(ctx context.Context, listingID int64) (*Summary, error)
	Mine(ctx context.Context, guestID int64) ([]MineRow, error)
	Update(ctx context.Context, guestID, id int64, rating int, comment string) (*model.Review, error)
	Delete(ctx context.Context, guestID, id int64) error
}

type service struct {
	r    reviewrepo.Repo
	resv Reservations
	ls   Listings
}

func New(r reviewrepo.Repo, resv Reservations, ls Listings) Service {
	return &service{r: r, resv: resv, ls: ls}
}

func validateContent(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return makeErr(ErrBadRating)
	}
	if strings.TrimSpace(comment) == "" {
		return makeErr(ErrEmptyComment)
	}
	return nil
}

func (s *service) Create(ctx context.Context, guestID, reservationID int64, rating int, comment string) (*model.Review, error) {
	if err := validateContent(rating, comment); err != nil {
		return nil, err
	}

	res, err := s.resv.ByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrReservationMissing)
		}
		return nil, err
	}
	if res.GuestID != guestID {
		return nil, makeErr(ErrNotGuest)
	}
	if res.Status != model.ReservationApproved {
		return nil, makeErr(ErrNotApproved)
	}
	if !res.CheckOutDate.Before(time.Now()) {
		return nil, makeErr(ErrStayNotOver)
	}

	exists, err := s.r.ExistsForReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, makeErr(ErrAlreadyReviewed)
	}

	rev := &model.Review{
		ListingID:     res.ListingID,
		GuestID:       guestID,
		ReservationID: reservationID,
		Rating:        rating,
		Comment:       strings.TrimSpace(comment),
	}
	if err := s.r.Insert(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *service) ForListing(ctx context.Context, listingID int64) (*Summary, error) {
	if _, err := s.ls.ByID(ctx, listingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrListingNotFound)
		}
		return nil, err
	}

	rows, err := s.r.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Count: len(rows), Reviews: rows}
	if len(rows) > 0 {
		total := 0
		for _, r := range rows {
			total += r.Rating
		}
		avg := float64(total) / float64(len(rows))
		sum.AverageRating = math.Round(avg*10) / 10
	}
	return sum, nil
}

func (s *service) Mine(ctx context.Context, guestID int64) ([]MineRow, error) {
	return s.r.ListByGuest(ctx, guestID)
}

// authored fetches a review and enforces authorship.
func (s *service) authored(ctx context.Context, guestID, id int64) (*model.Review, error) {
	rev, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if rev.GuestID != guestID {
		return nil, makeErr(ErrNotAuthor)
	}
	return rev, nil
}

func (s *service) Update(ctx context.Context, guestID, id int64, rating int, comment string) (*model.Review, error) {
	rev, err := s.authored(ctx, guestID, id)
	if err != nil {
		return nil, err
	}
	if err := validateContent(rating, comment); err != nil {
		return nil, err
	}
	if err := s.r.Update(ctx, id, rating, strings.TrimSpace(comment)); err != nil {
		return nil, err
	}
	rev.Rating = rating
	rev.Comment = strings.TrimSpace(comment)
	return rev, nil
}

func (s *service) Delete(ctx context.Context, guestID, id int64) error {
	if _, err := s.authored(ctx, guestID, id); err != nil {
		return err
	}
	return s.r.Delete(ctx, id)
}

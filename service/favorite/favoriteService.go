package favoritesvc

import (
	"context"
	"database/sql"
	"errors"

	favoriterepo "stayin/repository/favorite"

	"stayin/model"
)

type ErrCode string

const (
	ErrListingNotFound ErrCode = "LISTING_NOT_FOUND"
	ErrAlreadyFavorite ErrCode = "ALREADY_FAVORITE"
	ErrNotFavorite     ErrCode = "NOT_FAVORITE"
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

// Listings is the listing lookup favorites need before adding.
type Listings interface {
	ByID(ctx context.Context, id int64) (*model.Listing, error)
}

type Service interface {
	List(ctx context.Context, userID int64) ([]model.Listing, error)
	ListIDs(ctx context.Context, userID int64) ([]int64, error)
	Add(ctx context.Context, userID, listingID int64) error
	Remove(ctx context.Context, userID, listingID int64) error
}

type service struct {
	r  favoriterepo.Repo
	ls Listings
}

func New(r favoriterepo.Repo, ls Listings) Service { return &service{r: r, ls: ls} }

func (s *service) List(ctx context.Context, userID int64) ([]model.Listing, error) {
	return s.r.ListListings(ctx, userID)
}

func (s *service) ListIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.r.ListIDs(ctx, userID)
}

func (s *service) Add(ctx context.Context, userID, listingID int64) error {
	if _, err := s.ls.ByID(ctx, listingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrListingNotFound)
		}
		return err
	}

	exists, err := s.r.Exists(ctx, userID, listingID)
	if err != nil {
		return err
	}
	if exists {
		return makeErr(ErrAlreadyFavorite)
	}
	return s.r.Add(ctx, userID, listingID)
}

func (s *service) Remove(ctx context.Context, userID, listingID int64) error {
	removed, err := s.r.Remove(ctx, userID, listingID)
	if err != nil {
		return err
	}
	if !removed {
		return makeErr(ErrNotFavorite)
	}
	return nil
}

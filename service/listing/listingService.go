package listingsvc

import (
	"context"
	"database/sql"
	"errors"

	listingrepo "stayin/repository/listing"

	"stayin/model"
)

type ErrCode string

const (
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrNotOwner    ErrCode = "NOT_OWNER"
	ErrNotArchived ErrCode = "NOT_ARCHIVED"
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

type Service interface {
	// Public catalog, archived listings excluded.
	List(ctx context.Context) ([]model.Listing, error)
	Detail(ctx context.Context, id int64) (*model.Listing, error)

	// Owner surface. Every mutation checks ownership first.
	Mine(ctx context.Context, userID int64) ([]model.Listing, error)
	Archived(ctx context.Context, userID int64) ([]model.Listing, error)
	Create(ctx context.Context, userID int64, l *model.Listing) error
	Update(ctx context.Context, userID, id int64, l *model.Listing) error

	// Delete archives; nothing is ever hard-deleted so reservation and
	// review history stays intact.
	Delete(ctx context.Context, userID, id int64) error
	Archive(ctx context.Context, userID, id int64) (archived bool, err error)
	Unarchive(ctx context.Context, userID, id int64) error
}

type service struct{ r listingrepo.Repo }

func New(r listingrepo.Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context) ([]model.Listing, error) {
	return s.r.ListPublic(ctx)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Listing, error) {
	l, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return l, nil
}

func (s *service) Mine(ctx context.Context, userID int64) ([]model.Listing, error) {
	return s.r.ListByOwner(ctx, userID, false)
}

func (s *service) Archived(ctx context.Context, userID int64) ([]model.Listing, error) {
	return s.r.ListByOwner(ctx, userID, true)
}

func (s *service) Create(ctx context.Context, userID int64, l *model.Listing) error {
	l.UserID = &userID
	return s.r.Create(ctx, l)
}

// owned fetches a listing and enforces ownership.
func (s *service) owned(ctx context.Context, userID, id int64) (*model.Listing, error) {
	l, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if l.UserID == nil || *l.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	return l, nil
}

func (s *service) Update(ctx context.Context, userID, id int64, l *model.Listing) error {
	cur, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	l.ID = id
	l.UserID = cur.UserID
	return s.r.Update(ctx, l)
}

func (s *service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.r.SetArchived(ctx, id, true)
}

func (s *service) Archive(ctx context.Context, userID, id int64) (bool, error) {
	l, err := s.owned(ctx, userID, id)
	if err != nil {
		return false, err
	}
	next := !l.IsArchived
	if err := s.r.SetArchived(ctx, id, next); err != nil {
		return false, err
	}
	return next, nil
}

func (s *service) Unarchive(ctx context.Context, userID, id int64) error {
	l, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if !l.IsArchived {
		return makeErr(ErrNotArchived)
	}
	return s.r.SetArchived(ctx, id, false)
}

package usersvc

import (
	"context"
	"database/sql"
	"errors"

	userrepo "stayin/repository/user"
)

var ErrNotFound = errors.New("user not found")

// Profile is the public shape of a user.
type Profile struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type Service interface {
	Profile(ctx context.Context, id int64) (*Profile, error)
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur} }

func (s *service) Profile(ctx context.Context, id int64) (*Profile, error) {
	u, err := s.ur.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Profile{ID: u.ID, FullName: u.FullName, Email: u.Email}, nil
}

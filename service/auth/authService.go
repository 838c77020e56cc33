package authsvc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"stayin/model"
	mailrepo "stayin/repository/mail"
	userrepo "stayin/repository/user"
	verificationrepo "stayin/repository/verification"
	"stayin/util/hash"
	jwtutil "stayin/util/jwt"
)

var (
	ErrBadInput         = errors.New("bad input")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email already registered")
	ErrInvalidCreds     = errors.New("invalid credentials")
	ErrEmailUnknown     = errors.New("email not registered")
	ErrCodeInvalid      = errors.New("invalid code")
	ErrCodeExpired      = errors.New("code expired")
)

// CodeFunc produces a 6-digit reset code. Injected so tests can pin the
// code; DefaultCodeFunc is fine in production, the codes are not secrets
// with cryptographic weight.
type CodeFunc func() string

func DefaultCodeFunc() CodeFunc {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Sprintf("%06d", 100000+rng.Intn(900000))
	}
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)

	// Three-step reset: request a code, verify it, then set the new
	// password. The code lives 10 minutes and is deleted on use.
	ForgotPassword(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, req model.ResetPasswordReq) error
}

type service struct {
	ur     userrepo.Repo
	vr     verificationrepo.Repo
	mr     mailrepo.Repo
	secret string
	code   CodeFunc
}

func New(ur userrepo.Repo, vr verificationrepo.Repo, mr mailrepo.Repo, secret string, code CodeFunc) Service {
	if code == nil {
		code = DefaultCodeFunc()
	}
	return &service{ur: ur, vr: vr, mr: mr, secret: secret, code: code}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.FullName) == "" || req.Password == "" {
		return nil, "", ErrBadInput
	}
	if req.Password != req.PasswordConfirm {
		return nil, "", ErrPasswordMismatch
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hashed,
		Role:         model.RoleUser,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		if strings.Contains(cn, "users_email") || strings.Contains(strings.ToLower(pgErr.Message), "email") {
			return ErrEmailTaken
		}
		return ErrBadInput
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", ErrBadInput
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}

	token, err := jwtutil.Issue(s.secret, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrBadInput
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return ErrEmailUnknown
	}

	code := s.code()
	if err := s.vr.Store(ctx, email, code); err != nil {
		return err
	}

	return s.mr.Send(ctx, mailrepo.Message{
		To:      u.Email,
		Subject: "Your password reset code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
	})
}

// checkCode validates a stored reset code. An absent entry means the code
// expired or was already used; redis TTL keeps the distinction from us.
func (s *service) checkCode(ctx context.Context, email, code string) error {
	stored, err := s.vr.Get(ctx, email)
	if err != nil {
		return err
	}
	if stored == "" {
		return ErrCodeExpired
	}
	if stored != code {
		return ErrCodeInvalid
	}
	return nil
}

func (s *service) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return ErrBadInput
	}
	return s.checkCode(ctx, email, code)
}

func (s *service) ResetPassword(ctx context.Context, req model.ResetPasswordReq) error {
	email := normalizeEmail(req.Email)
	if email == "" || req.Code == "" {
		return ErrBadInput
	}
	if req.NewPassword == "" || req.NewPasswordConfirm == "" {
		return ErrBadInput
	}
	if req.NewPassword != req.NewPasswordConfirm {
		return ErrPasswordMismatch
	}

	if err := s.checkCode(ctx, email, req.Code); err != nil {
		return err
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return ErrEmailUnknown
	}

	hashed, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.ur.UpdatePassword(ctx, u.ID, hashed); err != nil {
		return err
	}

	// single-use
	return s.vr.Delete(ctx, email)
}

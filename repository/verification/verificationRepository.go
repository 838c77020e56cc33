// repository/verification/verificationRepository.go
package verificationrepo

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeTTL is how long a password-reset code stays valid.
const CodeTTL = 10 * time.Minute

// Repo stores single-use password-reset codes keyed by email. Expiry is
// enforced by the store's TTL, so an expired code simply disappears.
type Repo interface {
	Store(ctx context.Context, email, code string) error
	Get(ctx context.Context, email string) (string, error) // "" when absent or expired
	Delete(ctx context.Context, email string) error
}

type repo struct{ rdb *redis.Client }

func New(rdb *redis.Client) Repo { return &repo{rdb: rdb} }

func key(email string) string { return "pwreset:" + strings.ToLower(strings.TrimSpace(email)) }

func (r *repo) Store(ctx context.Context, email, code string) error {
	return r.rdb.Set(ctx, key(email), code, CodeTTL).Err()
}

func (r *repo) Get(ctx context.Context, email string) (string, error) {
	v, err := r.rdb.Get(ctx, key(email)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *repo) Delete(ctx context.Context, email string) error {
	return r.rdb.Del(ctx, key(email)).Err()
}

package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuke0908/quantauth/domain"
)

// consumeScript marks a refresh token spent as one atomic check-and-set.
// Two concurrent rotations of the same token cannot both pass: the script
// runs single-threaded inside Redis, so exactly one caller sees OK and the
// other sees REUSED.
var consumeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 'NOTFOUND'
end
if redis.call('HEXISTS', KEYS[1], 'consumed_at') == 1 then
  return 'REUSED'
end
redis.call('HSET', KEYS[1], 'consumed_at', ARGV[1])
return 'OK'
`)

// RefreshTokenRepositoryImpl implements domain.RefreshTokenRepository
// using Redis hashes, one per token JTI, plus a per-user index set for
// revoke-all.
type RefreshTokenRepositoryImpl struct {
	client *redis.Client
	prefix string
	index  string
	ttl    time.Duration
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(client *redis.Client, ttl time.Duration) *RefreshTokenRepositoryImpl {
	return &RefreshTokenRepositoryImpl{
		client: client,
		prefix: "refresh:",
		index:  "refreshidx:",
		ttl:    ttl,
	}
}

func (r *RefreshTokenRepositoryImpl) key(jti string) string {
	return r.prefix + jti
}

func (r *RefreshTokenRepositoryImpl) indexKey(userID string) string {
	return r.index + userID
}

// Create implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) Create(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	key := r.key(rec.JTI)
	fields := map[string]interface{}{
		"user_id":    rec.UserID,
		"generation": rec.Generation,
		"expires_at": rec.ExpiresAt.Unix(),
		"created_at": rec.CreatedAt.Unix(),
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, r.ttl)
	pipe.SAdd(ctx, r.indexKey(rec.UserID), rec.JTI)
	pipe.Expire(ctx, r.indexKey(rec.UserID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Find implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) Find(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error) {
	fields, err := r.client.HGetAll(ctx, r.key(jti)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrTokenNotFound
	}
	return r.fieldsToRecord(jti, fields)
}

// Consume implements domain.RefreshTokenRepository. The consumed record
// stays in Redis until its natural TTL so a replay of the rotated-out
// token is still recognizable as reuse.
func (r *RefreshTokenRepositoryImpl) Consume(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error) {
	now := time.Now().UTC()
	status, err := consumeScript.Run(ctx, r.client, []string{r.key(jti)}, now.Unix()).Text()
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	switch status {
	case "NOTFOUND":
		return nil, domain.ErrTokenNotFound
	case "REUSED":
		return nil, domain.ErrTokenReused
	}

	rec, err := r.Find(ctx, jti)
	if err != nil {
		return nil, err
	}
	rec.ConsumedAt = &now
	return rec, nil
}

// Delete implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) Delete(ctx context.Context, jti string) error {
	return r.client.Del(ctx, r.key(jti)).Err()
}

// RevokeAll implements domain.RefreshTokenRepository
func (r *RefreshTokenRepositoryImpl) RevokeAll(ctx context.Context, userID string) error {
	idx := r.indexKey(userID)
	jtis, err := r.client.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, r.key(jti))
	}
	keys = append(keys, idx)
	return r.client.Del(ctx, keys...).Err()
}

func (r *RefreshTokenRepositoryImpl) fieldsToRecord(jti string, fields map[string]string) (*domain.RefreshTokenRecord, error) {
	generation, err := strconv.ParseInt(fields["generation"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token record %s: %w", jti, err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token record %s: %w", jti, err)
	}
	createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)

	rec := &domain.RefreshTokenRecord{
		JTI:        jti,
		UserID:     fields["user_id"],
		Generation: generation,
		ExpiresAt:  time.Unix(expiresAt, 0).UTC(),
		CreatedAt:  time.Unix(createdAt, 0).UTC(),
	}
	if raw, ok := fields["consumed_at"]; ok {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			consumed := time.Unix(ts, 0).UTC()
			rec.ConsumedAt = &consumed
		}
	}
	return rec, nil
}

// Compile-time interface compliance verification
var _ domain.RefreshTokenRepository = (*RefreshTokenRepositoryImpl)(nil)

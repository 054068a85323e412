package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	createStatusCreated   int64 = 0
	createStatusCollision int64 = 1
	createStatusDuplicate int64 = 2
)

const createTokenScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 1
end
if redis.call("EXISTS", KEYS[2]) == 1 then
  return 2
end
redis.call("SET", KEYS[1], ARGV[2])
redis.call("SET", KEYS[2], ARGV[1])
redis.call("SET", KEYS[3], ARGV[1])
redis.call("SADD", KEYS[4], ARGV[1])
redis.call("SADD", KEYS[5], ARGV[1])
return 0
`

var createTokenLua = redis.NewScript(createTokenScript)

const deleteTokenScript = `
local existed = redis.call("DEL", KEYS[1])
redis.call("DEL", KEYS[2])
redis.call("DEL", KEYS[3])
redis.call("SREM", KEYS[4], ARGV[1])
redis.call("SREM", KEYS[5], ARGV[1])
return existed
`

var deleteTokenLua = redis.NewScript(deleteTokenScript)

// Store is the Redis-backed persistence layer for clients and tokens.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a [Store] on the given Redis client. prefix namespaces all
// keys; empty means the default "tg".
func New(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "tg"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) tokenKey(token string) string {
	return s.prefix + "t:" + token
}

func (s *Store) pairKey(userID, client string) string {
	return s.prefix + "p:" + userID + ":" + client
}

func (s *Store) idKey(id string) string {
	return s.prefix + "i:" + id
}

func (s *Store) userKey(userID string) string {
	return s.prefix + "u:" + userID
}

func (s *Store) clientTokensKey(client string) string {
	return s.prefix + "k:" + client
}

func (s *Store) clientKey(name string) string {
	return s.prefix + "c:" + name
}

func (s *Store) clientNamesKey() string {
	return s.prefix + "cl"
}

// CreateToken persists the token record. Uniqueness of both the token
// string and the (user, client) pair is checked and the record written in
// one Lua script, so concurrent creations for the same pair resolve
// inside Redis: exactly one wins, the rest get [ErrDuplicatePair] and
// re-read the winner's token.
func (s *Store) CreateToken(ctx context.Context, token *AuthToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	status, err := createTokenLua.Run(
		ctx,
		s.redis,
		[]string{
			s.tokenKey(token.Token),
			s.pairKey(token.UserID, token.Client),
			s.idKey(token.ID),
			s.userKey(token.UserID),
			s.clientTokensKey(token.Client),
		},
		token.Token,
		data,
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch status {
	case createStatusCreated:
		return nil
	case createStatusCollision:
		return ErrTokenCollision
	case createStatusDuplicate:
		return ErrDuplicatePair
	default:
		return fmt.Errorf("%w: unknown create script status %d", ErrRedisUnavailable, status)
	}
}

// GetByToken looks up a token record by its exact token string.
//
//	Performance: 1 Redis GET — the hot path of every authenticated request.
func (s *Store) GetByToken(ctx context.Context, token string) (*AuthToken, error) {
	data, err := s.redis.Get(ctx, s.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return decodeToken(data)
}

// GetByUserClient returns the token owned by the (user, client) pair.
func (s *Store) GetByUserClient(ctx context.Context, userID, client string) (*AuthToken, error) {
	token, err := s.redis.Get(ctx, s.pairKey(userID, client)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.GetByToken(ctx, token)
}

// GetByID returns the token record with the given record ID.
func (s *Store) GetByID(ctx context.Context, id string) (*AuthToken, error) {
	token, err := s.redis.Get(ctx, s.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.GetByToken(ctx, token)
}

// UpdateExpiry rewrites the record with a new expiry, keeping every other
// field. Used by renewal.
func (s *Store) UpdateExpiry(ctx context.Context, token string, expiry time.Time) (*AuthToken, error) {
	record, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	record.Expiry = expiry
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, s.tokenKey(token), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return record, nil
}

// Delete removes a token record and all of its index entries. Deleting a
// missing token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	record, err := s.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		return err
	}

	return s.deleteRecord(ctx, record)
}

func (s *Store) deleteRecord(ctx context.Context, record *AuthToken) error {
	_, err := deleteTokenLua.Run(
		ctx,
		s.redis,
		[]string{
			s.tokenKey(record.Token),
			s.pairKey(record.UserID, record.Client),
			s.idKey(record.ID),
			s.userKey(record.UserID),
			s.clientTokensKey(record.Client),
		},
		record.Token,
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// DeleteAllForUser removes every token owned by the user.
//
// ATOMICITY NOTE: this reads the user's token set, then deletes each
// record. A token created between the read and the deletes is not
// captured; that stray token expires naturally or is caught by the next
// call. This matches the accepted race model for logout-all.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	records, err := s.ListForUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, record := range records {
		if err := s.deleteRecord(ctx, record); err != nil {
			return err
		}
	}

	if err := s.redis.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// ListForUser returns the user's token records. Index entries whose
// record disappeared mid-read are skipped.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]*AuthToken, error) {
	tokens, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*AuthToken{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.getMany(ctx, tokens)
}

func (s *Store) getMany(ctx context.Context, tokens []string) ([]*AuthToken, error) {
	if len(tokens) == 0 {
		return []*AuthToken{}, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(tokens))
	for i, token := range tokens {
		cmds[i] = pipe.Get(ctx, s.tokenKey(token))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	records := make([]*AuthToken, 0, len(tokens))
	for _, cmd := range cmds {
		data, cmdErr := cmd.Bytes()
		if cmdErr != nil {
			if errors.Is(cmdErr, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, cmdErr)
		}

		record, decErr := decodeToken(data)
		if decErr != nil {
			return nil, decErr
		}
		records = append(records, record)
	}

	return records, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func decodeToken(data []byte) (*AuthToken, error) {
	var record AuthToken
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt token record: %w", err)
	}
	return &record, nil
}

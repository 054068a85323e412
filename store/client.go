package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tokengate/tokengate/internal/rate"
)

// SaveClient creates or updates a client record. The throttle rate is
// validated here, at save time, so an unparseable rate can never reach
// the request path.
func (s *Store) SaveClient(ctx context.Context, client *Client) error {
	if client.Name == "" {
		return errors.New("client name required")
	}
	if client.ThrottleRate != "" {
		if _, err := rate.Parse(client.ThrottleRate); err != nil {
			return err
		}
	}

	data, err := json.Marshal(client)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.clientKey(client.Name), data, 0)
		pipe.SAdd(ctx, s.clientNamesKey(), client.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// GetClient returns the client record with the given name.
func (s *Store) GetClient(ctx context.Context, name string) (*Client, error) {
	data, err := s.redis.Get(ctx, s.clientKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var client Client
	if err := json.Unmarshal(data, &client); err != nil {
		return nil, fmt.Errorf("corrupt client record: %w", err)
	}
	return &client, nil
}

// ListClients returns every registered client, for administrative use.
func (s *Store) ListClients(ctx context.Context) ([]*Client, error) {
	names, err := s.redis.SMembers(ctx, s.clientNamesKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*Client{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	clients := make([]*Client, 0, len(names))
	for _, name := range names {
		client, err := s.GetClient(ctx, name)
		if err != nil {
			if errors.Is(err, ErrClientNotFound) {
				continue
			}
			return nil, err
		}
		clients = append(clients, client)
	}

	return clients, nil
}

// DeleteClient removes the client record and cascades to every token it
// issued. Deleting an unknown client is not an error.
func (s *Store) DeleteClient(ctx context.Context, name string) error {
	tokens, err := s.redis.SMembers(ctx, s.clientTokensKey(name)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	records, err := s.getMany(ctx, tokens)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := s.deleteRecord(ctx, record); err != nil {
			return err
		}
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.clientTokensKey(name))
		pipe.Del(ctx, s.clientKey(name))
		pipe.SRem(ctx, s.clientNamesKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

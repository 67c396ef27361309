package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bow-app/intake-bridge-go/internal/model"
	"github.com/bow-app/intake-bridge-go/internal/redis"
)

// RedisStore keeps conversation state in redis so multiple instances can
// share it and it survives restarts. Get/Update are not atomic against each
// other; the intake service's per-conversation lock provides the sequencing,
// which holds only within one instance. Cross-instance races on the same
// conversation remain possible, same as the in-memory original.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, conversationID string) (*model.ConversationState, error) {
	key := redis.ConversationKey(conversationID)

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		state := model.NewConversationState(conversationID)
		if err := s.set(ctx, key, state); err != nil {
			return nil, err
		}
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation state: %w", err)
	}

	var state model.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode conversation state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Update(ctx context.Context, conversationID string, mutate func(*model.ConversationState)) error {
	state, err := s.Get(ctx, conversationID)
	if err != nil {
		return err
	}

	mutate(state)
	state.LastSeenAt = time.Now().UTC()
	return s.set(ctx, redis.ConversationKey(conversationID), state)
}

func (s *RedisStore) set(ctx context.Context, key string, state *model.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode conversation state: %w", err)
	}

	// No TTL: intake state has no expiry.
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set conversation state: %w", err)
	}
	return nil
}

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// RedisOptions configures RedisStore.
type RedisOptions struct {
	Prefix   string        // key prefix, default "chatbot:session"
	MaxTurns int           // default MaxTurns
	TTL      time.Duration // idle expiry, zero keeps sessions forever
}

// RedisStore keeps each history as a capped Redis list of JSON turns,
// so sessions survive restarts and are shared between replicas.
type RedisStore struct {
	client *redis.Client
	opts   RedisOptions
}

// Connect creates a client and checks the server answers PING.
func Connect(ctx context.Context, addr string, password string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: timeout,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, helper.NewError("redis ping", err)
	}
	if pong != "PONG" {
		client.Close()
		return nil, helper.NewError("redis ping", fmt.Errorf("expected PONG, got %s", pong))
	}

	return client, nil
}

// NewRedisStore creates a store on top of an existing client.
func NewRedisStore(client *redis.Client, opts RedisOptions) *RedisStore {
	if opts.Prefix == "" {
		opts.Prefix = "chatbot:session"
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = MaxTurns
	}
	return &RedisStore{client: client, opts: opts}
}

func (s *RedisStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s:turns", s.opts.Prefix, sessionID)
}

func (s *RedisStore) History(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	values, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, helper.NewError("lrange", err)
	}

	turns := make([]model.ConversationTurn, 0, len(values))
	for _, v := range values {
		var turn model.ConversationTurn
		if err := json.Unmarshal([]byte(v), &turn); err != nil {
			return nil, helper.NewError("decode turn", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, turns ...model.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return helper.NewError("encode turn", err)
		}
		values = append(values, data)
	}

	key := s.key(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, int64(-s.opts.MaxTurns), -1)
		if s.opts.TTL > 0 {
			pipe.Expire(ctx, key, s.opts.TTL)
		}
		return nil
	})
	if err != nil {
		return helper.NewError("append turns", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return helper.NewError("del", err)
	}
	return nil
}

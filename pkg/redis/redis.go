package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var NilError = goredis.Nil

type Options = goredis.UniversalOptions

// StreamMessage represents a message in a Redis Stream.
type StreamMessage struct {
	ID     string
	Values map[string]interface{}
}

// RedisAdapter is the slice of the redis surface the notification queue
// needs: stream operations plus a couple of KV helpers.
type RedisAdapter interface {
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
	Del(key string) error
	Client() goredis.UniversalClient

	XAdd(key string, values map[string]interface{}) (string, error)
	XReadGroup(group, consumer, key, id string, count int64, block time.Duration) ([]StreamMessage, error)
	XAck(key, group string, ids ...string) error
	XGroupCreateMkStream(key, group, start string) error
	XLen(key string) (int64, error)
	XDel(key string, ids ...string) error
	XTrimApprox(key string, maxLen int64) error
	XPendingExt(key, group string, start, end string, count int64) ([]goredis.XPendingExt, error)
	XClaim(key, group, consumer string, minIdle time.Duration, ids ...string) ([]StreamMessage, error)
}

type redisAdapter struct {
	name   string
	prefix string
	client goredis.UniversalClient
	ctx    context.Context
}

var (
	mu       sync.Mutex
	adapters = map[string]*redisAdapter{}
)

func NewRedisAdapter(name, keyPrefix string, opts *Options) (RedisAdapter, error) {
	mu.Lock()
	defer mu.Unlock()

	if a, ok := adapters[name]; ok {
		return a, nil
	}

	client := goredis.NewUniversalClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	a := &redisAdapter{name: name, prefix: keyPrefix, client: client, ctx: ctx}
	adapters[name] = a
	return a, nil
}

func (r *redisAdapter) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *redisAdapter) Client() goredis.UniversalClient { return r.client }

func (r *redisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	return r.client.Set(r.ctx, r.key(key), value, ttl).Err()
}

func (r *redisAdapter) Get(key string) ([]byte, error) {
	return r.client.Get(r.ctx, r.key(key)).Bytes()
}

func (r *redisAdapter) Del(key string) error {
	return r.client.Del(r.ctx, r.key(key)).Err()
}

func (r *redisAdapter) XAdd(key string, values map[string]interface{}) (string, error) {
	return r.client.XAdd(r.ctx, &goredis.XAddArgs{
		Stream: r.key(key),
		Values: values,
	}).Result()
}

func (r *redisAdapter) XReadGroup(group, consumer, key, id string, count int64, block time.Duration) ([]StreamMessage, error) {
	res, err := r.client.XReadGroup(r.ctx, &goredis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{r.key(key), id},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		return nil, err
	}
	var msgs []StreamMessage
	for _, stream := range res {
		for _, m := range stream.Messages {
			msgs = append(msgs, StreamMessage{ID: m.ID, Values: m.Values})
		}
	}
	return msgs, nil
}

func (r *redisAdapter) XAck(key, group string, ids ...string) error {
	return r.client.XAck(r.ctx, r.key(key), group, ids...).Err()
}

func (r *redisAdapter) XGroupCreateMkStream(key, group, start string) error {
	return r.client.XGroupCreateMkStream(r.ctx, r.key(key), group, start).Err()
}

func (r *redisAdapter) XLen(key string) (int64, error) {
	return r.client.XLen(r.ctx, r.key(key)).Result()
}

func (r *redisAdapter) XDel(key string, ids ...string) error {
	return r.client.XDel(r.ctx, r.key(key), ids...).Err()
}

func (r *redisAdapter) XTrimApprox(key string, maxLen int64) error {
	return r.client.XTrimMaxLenApprox(r.ctx, r.key(key), maxLen, 0).Err()
}

func (r *redisAdapter) XPendingExt(key, group string, start, end string, count int64) ([]goredis.XPendingExt, error) {
	return r.client.XPendingExt(r.ctx, &goredis.XPendingExtArgs{
		Stream: r.key(key),
		Group:  group,
		Start:  start,
		End:    end,
		Count:  count,
	}).Result()
}

func (r *redisAdapter) XClaim(key, group, consumer string, minIdle time.Duration, ids ...string) ([]StreamMessage, error) {
	res, err := r.client.XClaim(r.ctx, &goredis.XClaimArgs{
		Stream:   r.key(key),
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return nil, err
	}
	msgs := make([]StreamMessage, 0, len(res))
	for _, m := range res {
		msgs = append(msgs, StreamMessage{ID: m.ID, Values: m.Values})
	}
	return msgs, nil
}

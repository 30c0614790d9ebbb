package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/realhub/condo-api/pkg/logger"
	"github.com/realhub/condo-api/pkg/redis"
)

const dataField = "data"

type Config struct {
	Name              string
	Group             string
	Consumer          string
	MaxRetries        int
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	BatchSize         int64
	MaxLen            int64
	EnableDLQ         bool
}

func (c *Config) applyDefaults() {
	if c.Consumer == "" {
		c.Consumer = fmt.Sprintf("%s-consumer-%d", c.Group, time.Now().UnixNano())
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.VisibilityTimeout <= 0 {
		c.VisibilityTimeout = 30 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 16
	}
}

// Message is one stream entry handed to a consumer handler.
type Message struct {
	ID       string
	Data     []byte
	Attempts int
}

type Handler func(ctx context.Context, msg Message) error

// Queue is a redis-streams backed work queue with consumer groups. Unacked
// messages are reclaimed after the visibility timeout and parked on a dead
// letter stream once retries are exhausted.
type Queue struct {
	adapter redis.RedisAdapter
	cfg     Config

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

func New(adapter redis.RedisAdapter, cfg Config) (*Queue, error) {
	if cfg.Name == "" || cfg.Group == "" {
		return nil, errors.New("queue name and group are required")
	}
	cfg.applyDefaults()

	if err := adapter.XGroupCreateMkStream(cfg.Name, cfg.Group, "0"); err != nil {
		if !strings.Contains(err.Error(), "BUSYGROUP") {
			return nil, fmt.Errorf("create consumer group: %w", err)
		}
	}

	return &Queue{
		adapter: adapter,
		cfg:     cfg,
		closed:  make(chan struct{}),
	}, nil
}

func (q *Queue) dlqName() string { return q.cfg.Name + ":dlq" }

// PublishJSON appends a JSON-encoded entry to the stream and returns its id.
func (q *Queue) PublishJSON(_ context.Context, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}

	id, err := q.adapter.XAdd(q.cfg.Name, map[string]interface{}{dataField: b})
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", q.cfg.Name, err)
	}

	if q.cfg.MaxLen > 0 {
		if err := q.adapter.XTrimApprox(q.cfg.Name, q.cfg.MaxLen); err != nil {
			logger.Warn("queue: trim failed", "stream", q.cfg.Name, "error", err)
		}
	}
	return id, nil
}

// Len reports the current stream length.
func (q *Queue) Len() (int64, error) {
	return q.adapter.XLen(q.cfg.Name)
}

// StartConsumer runs the read and reclaim loops until Close. A handler error
// leaves the message pending so the reclaim loop retries it after the
// visibility timeout.
func (q *Queue) StartConsumer(handler Handler) {
	q.wg.Add(2)
	go q.readLoop(handler)
	go q.reclaimLoop(handler)
}

func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
	q.wg.Wait()
}

func (q *Queue) readLoop(handler Handler) {
	defer q.wg.Done()
	for {
		select {
		case <-q.closed:
			return
		default:
		}

		msgs, err := q.adapter.XReadGroup(q.cfg.Group, q.cfg.Consumer, q.cfg.Name, ">", q.cfg.BatchSize, q.cfg.PollInterval)
		if err != nil {
			if !errors.Is(err, redis.NilError) {
				logger.Error("queue: read failed", "stream", q.cfg.Name, "error", err)
				time.Sleep(q.cfg.PollInterval)
			}
			continue
		}

		for _, m := range msgs {
			q.dispatch(handler, m, 1)
		}
	}
}

func (q *Queue) reclaimLoop(handler Handler) {
	defer q.wg.Done()
	ticker := time.NewTicker(q.cfg.VisibilityTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-q.closed:
			return
		case <-ticker.C:
		}

		pending, err := q.adapter.XPendingExt(q.cfg.Name, q.cfg.Group, "-", "+", q.cfg.BatchSize)
		if err != nil {
			if !errors.Is(err, redis.NilError) {
				logger.Error("queue: pending scan failed", "stream", q.cfg.Name, "error", err)
			}
			continue
		}

		for _, p := range pending {
			if p.Idle < q.cfg.VisibilityTimeout {
				continue
			}

			if int(p.RetryCount) > q.cfg.MaxRetries {
				q.deadLetter(p.ID)
				continue
			}

			claimed, err := q.adapter.XClaim(q.cfg.Name, q.cfg.Group, q.cfg.Consumer, q.cfg.VisibilityTimeout, p.ID)
			if err != nil && !errors.Is(err, redis.NilError) {
				logger.Error("queue: claim failed", "stream", q.cfg.Name, "id", p.ID, "error", err)
				continue
			}
			for _, m := range claimed {
				q.dispatch(handler, m, int(p.RetryCount))
			}
		}
	}
}

func (q *Queue) dispatch(handler Handler, m redis.StreamMessage, attempts int) {
	msg := Message{ID: m.ID, Attempts: attempts}
	if raw, ok := m.Values[dataField]; ok {
		switch v := raw.(type) {
		case string:
			msg.Data = []byte(v)
		case []byte:
			msg.Data = v
		}
	}

	if err := handler(context.Background(), msg); err != nil {
		logger.Warn("queue: handler failed, message stays pending",
			"stream", q.cfg.Name, "id", m.ID, "attempts", attempts, "error", err)
		return
	}

	if err := q.adapter.XAck(q.cfg.Name, q.cfg.Group, m.ID); err != nil {
		logger.Error("queue: ack failed", "stream", q.cfg.Name, "id", m.ID, "error", err)
	}
}

// deadLetter moves a poisoned message out of the work stream.
func (q *Queue) deadLetter(id string) {
	if q.cfg.EnableDLQ {
		claimed, err := q.adapter.XClaim(q.cfg.Name, q.cfg.Group, q.cfg.Consumer, 0, id)
		if err != nil && !errors.Is(err, redis.NilError) {
			logger.Error("queue: dlq claim failed", "stream", q.cfg.Name, "id", id, "error", err)
			return
		}
		for _, m := range claimed {
			if _, err := q.adapter.XAdd(q.dlqName(), m.Values); err != nil {
				logger.Error("queue: dlq publish failed", "stream", q.dlqName(), "id", id, "error", err)
				return
			}
		}
	}

	if err := q.adapter.XAck(q.cfg.Name, q.cfg.Group, id); err != nil {
		logger.Error("queue: dlq ack failed", "stream", q.cfg.Name, "id", id, "error", err)
		return
	}
	if err := q.adapter.XDel(q.cfg.Name, id); err != nil {
		logger.Error("queue: dlq delete failed", "stream", q.cfg.Name, "id", id, "error", err)
	}
	logger.Warn("queue: message dead-lettered", "stream", q.cfg.Name, "id", id)
}

// DecodeJSON unmarshals a message payload.
func DecodeJSON(msg Message, v any) error {
	if len(msg.Data) == 0 {
		return errors.New("empty message payload")
	}
	return json.Unmarshal(msg.Data, v)
}

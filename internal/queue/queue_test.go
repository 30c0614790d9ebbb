package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/realhub/condo-api/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func setupQueue(t *testing.T, cfg Config) (*Queue, *miniredis.Miniredis) {
	s := miniredis.RunT(t)

	adapter, err := redis.NewRedisAdapter(t.Name(), "", &redis.Options{
		Addrs: []string{s.Addr()},
	})
	require.NoError(t, err)

	q, err := New(adapter, cfg)
	require.NoError(t, err)
	return q, s
}

func TestQueue_PublishJSON(t *testing.T) {
	q, _ := setupQueue(t, Config{Name: "events", Group: "workers"})

	id, err := q.PublishJSON(context.Background(), testEvent{Title: "hi", Body: "there"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestQueue_ConsumeAcks(t *testing.T) {
	q, _ := setupQueue(t, Config{
		Name:         "events",
		Group:        "workers",
		Consumer:     "c1",
		PollInterval: 50 * time.Millisecond,
	})

	_, err := q.PublishJSON(context.Background(), testEvent{Title: "hello"})
	require.NoError(t, err)

	received := make(chan testEvent, 1)
	q.StartConsumer(func(ctx context.Context, msg Message) error {
		var ev testEvent
		if err := DecodeJSON(msg, &ev); err != nil {
			return err
		}
		received <- ev
		return nil
	})
	defer q.Close()

	select {
	case ev := <-received:
		assert.Equal(t, "hello", ev.Title)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestQueue_GroupCreationIsIdempotent(t *testing.T) {
	q, s := setupQueue(t, Config{Name: "events", Group: "workers"})
	require.NotNil(t, q)

	adapter, err := redis.NewRedisAdapter(t.Name()+"-second", "", &redis.Options{
		Addrs: []string{s.Addr()},
	})
	require.NoError(t, err)

	// second New against the same stream/group must not fail on BUSYGROUP
	_, err = New(adapter, Config{Name: "events", Group: "workers"})
	require.NoError(t, err)
}

func TestQueue_RequiresNameAndGroup(t *testing.T) {
	s := miniredis.RunT(t)
	adapter, err := redis.NewRedisAdapter(t.Name(), "", &redis.Options{
		Addrs: []string{s.Addr()},
	})
	require.NoError(t, err)

	_, err = New(adapter, Config{Name: "", Group: "workers"})
	assert.Error(t, err)

	_, err = New(adapter, Config{Name: "events", Group: ""})
	assert.Error(t, err)
}

func TestDecodeJSON_EmptyPayload(t *testing.T) {
	err := DecodeJSON(Message{ID: "1-0"}, &testEvent{})
	assert.Error(t, err)
}

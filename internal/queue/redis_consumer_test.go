package queue

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosijchuk/vision-camera-ocr/internal/logging"
)

const testQueue = "ocr:frames"

func newTestRedisConsumer(t *testing.T, proc *fakeProcessor) (*miniredis.Miniredis, *redis.Client, *RedisConsumer) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c, err := NewRedisConsumer(&RedisConsumerConfig{
		Client:      client,
		QueueName:   testQueue,
		Processor:   proc,
		PollTimeout: time.Second,
		Logger:      logging.NewNopLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.cancel() })
	return mr, client, c
}

func storedOutcome(t *testing.T, mr *miniredis.Miniredis, frameID string) map[string]interface{} {
	t.Helper()
	raw := mr.HGet(testQueue+":results", frameID)
	require.NotEmpty(t, raw, "no outcome stored for %s", frameID)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestProcessNextFrameStoresResult(t *testing.T) {
	proc := &fakeProcessor{}
	mr, client, c := newTestRedisConsumer(t, proc)
	ctx := context.Background()

	sub := client.Subscribe(ctx, testQueue+":events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	mr.HSet(testQueue+":data", "f1", `{"width":1,"height":1,"format":"rgba","pixels":"AQIDBA=="}`)
	_, err = mr.Lpush(testQueue, "f1")
	require.NoError(t, err)

	require.NoError(t, c.processNextFrame())

	require.Len(t, proc.frames, 1)
	assert.Equal(t, "f1", proc.frames[0].ID)

	m := storedOutcome(t, mr, "f1")
	assert.Contains(t, m, "result")
	assert.NotContains(t, m, "error")

	done, err := mr.IsMember(testQueue+":completed", "f1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Empty(t, mr.HGet(testQueue+":data", "f1"))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"frame:completed"`)
		assert.Contains(t, msg.Payload, `"f1"`)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestProcessNextFrameMissingPayload(t *testing.T) {
	proc := &fakeProcessor{}
	mr, _, c := newTestRedisConsumer(t, proc)

	_, err := mr.Lpush(testQueue, "lost")
	require.NoError(t, err)

	require.NoError(t, c.processNextFrame())
	assert.Empty(t, proc.frames)

	m := storedOutcome(t, mr, "lost")
	assert.NotContains(t, m, "result")
	msg, ok := m["error"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(msg, "Failed to get image buffer: "))

	failed, err := mr.IsMember(testQueue+":failed", "lost")
	require.NoError(t, err)
	assert.True(t, failed)
}

func TestProcessNextFrameInvalidPayload(t *testing.T) {
	proc := &fakeProcessor{}
	mr, _, c := newTestRedisConsumer(t, proc)

	mr.HSet(testQueue+":data", "bad", `{"pixels":42}`)
	_, err := mr.Lpush(testQueue, "bad")
	require.NoError(t, err)

	require.NoError(t, c.processNextFrame())
	assert.Empty(t, proc.frames)

	m := storedOutcome(t, mr, "bad")
	assert.Contains(t, m, "error")
	assert.NotContains(t, m, "result")
}

func TestRedisConsumerStats(t *testing.T) {
	proc := &fakeProcessor{fail: true}
	mr, _, c := newTestRedisConsumer(t, proc)

	mr.HSet(testQueue+":data", "f2", `{"width":1,"height":1,"format":"gray","pixels":"AQ=="}`)
	_, err := mr.Lpush(testQueue, "f2")
	require.NoError(t, err)
	_, err = mr.Lpush(testQueue, "f3")
	require.NoError(t, err)

	require.NoError(t, c.processNextFrame())

	stats, err := c.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["waiting"])
	assert.Equal(t, int64(1), stats["failed"])
	assert.Equal(t, int64(0), stats["completed"])
}

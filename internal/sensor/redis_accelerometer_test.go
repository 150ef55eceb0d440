package sensor

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosijchuk/vision-camera-ocr/internal/orientation"
)

func TestParseSample(t *testing.T) {
	s, err := ParseSample([]byte(`{"x":9.8,"y":-0.1,"z":0.25}`))
	require.NoError(t, err)
	assert.Equal(t, orientation.Sample{X: 9.8, Y: -0.1, Z: 0.25}, s)
	assert.Equal(t, orientation.LandscapeRight, orientation.Classify(s))
}

func TestParseSampleErrors(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"x":1,"y":2}`,
		`{}`,
		`[1,2,3]`,
	} {
		_, err := ParseSample([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestNewRedisAccelerometer(t *testing.T) {
	_, err := NewRedisAccelerometer(nil)
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	src, err := NewRedisAccelerometer(&RedisAccelerometerConfig{Client: client})
	require.NoError(t, err)
	assert.Equal(t, DefaultKey, src.Key())
}

func newTestAccelerometer(t *testing.T) (*miniredis.Miniredis, *RedisAccelerometer) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	src, err := NewRedisAccelerometer(&RedisAccelerometerConfig{Client: client})
	require.NoError(t, err)
	return mr, src
}

func TestReadConsumesNewestSample(t *testing.T) {
	mr, src := newTestAccelerometer(t)
	ctx := context.Background()

	_, err := mr.Lpush(DefaultKey, `{"x":0,"y":9.8,"z":0}`)
	require.NoError(t, err)
	_, err = mr.Lpush(DefaultKey, `{"x":-9.8,"y":0,"z":0}`)
	require.NoError(t, err)

	s, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, orientation.LandscapeLeft, orientation.Classify(s))
	assert.False(t, mr.Exists(DefaultKey))

	_, err = src.Read(ctx)
	assert.True(t, errors.Is(err, orientation.ErrNoSample))

	_, err = mr.Lpush(DefaultKey, `{"x":9.8,"y":0,"z":0}`)
	require.NoError(t, err)
	s, err = src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, orientation.LandscapeRight, orientation.Classify(s))
}

func TestReadEmptyListIsNoSample(t *testing.T) {
	_, src := newTestAccelerometer(t)

	_, err := src.Read(context.Background())
	assert.ErrorIs(t, err, orientation.ErrNoSample)
}

func TestReadMalformedSample(t *testing.T) {
	mr, src := newTestAccelerometer(t)

	_, err := mr.Lpush(DefaultKey, `{"x":1}`)
	require.NoError(t, err)

	_, err = src.Read(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, orientation.ErrNoSample))
	assert.False(t, mr.Exists(DefaultKey))
}

func TestReadUnavailableRedis(t *testing.T) {
	mr, src := newTestAccelerometer(t)
	mr.Close()

	_, err := src.Read(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, orientation.ErrNoSample))
}

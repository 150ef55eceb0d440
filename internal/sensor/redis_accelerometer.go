/**
 * Redis accelerometer source
 *
 * The host app pushes accelerometer readings onto a Redis list (LPUSH, newest
 * first). Each poll takes the newest entry and clears the list in one
 * transaction, so a sample is served at most once and the list stays bounded.
 * When the host stops pushing, Read reports orientation.ErrNoSample.
 */

package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mosijchuk/vision-camera-ocr/internal/orientation"
)

// DefaultKey is the list holding accelerometer samples.
const DefaultKey = "ocr:accelerometer"

// RedisAccelerometer implements orientation.Source over a Redis list
type RedisAccelerometer struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// RedisAccelerometerConfig holds source configuration
type RedisAccelerometerConfig struct {
	Client  *redis.Client
	Key     string
	Timeout time.Duration
}

// NewRedisAccelerometer creates a new Redis-backed accelerometer source
func NewRedisAccelerometer(cfg *RedisAccelerometerConfig) (*RedisAccelerometer, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}
	return &RedisAccelerometer{
		client:  cfg.Client,
		key:     key,
		timeout: timeout,
	}, nil
}

// Read consumes the newest sample and discards older ones. An empty list
// yields orientation.ErrNoSample so the classifier keeps its orientation.
func (r *RedisAccelerometer) Read(ctx context.Context) (orientation.Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	newest := pipe.LIndex(ctx, r.key, 0)
	pipe.Del(ctx, r.key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return orientation.Sample{}, fmt.Errorf("failed to read sample: %w", err)
	}

	raw, err := newest.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return orientation.Sample{}, orientation.ErrNoSample
		}
		return orientation.Sample{}, fmt.Errorf("failed to read sample: %w", err)
	}

	return ParseSample(raw)
}

// Key returns the list name.
func (r *RedisAccelerometer) Key() string {
	return r.key
}

// ParseSample decodes {"x":..,"y":..,"z":..}. All three axes are required
// and must be finite.
func ParseSample(raw []byte) (orientation.Sample, error) {
	var aux struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
		Z *float64 `json:"z"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return orientation.Sample{}, fmt.Errorf("failed to unmarshal sample: %w", err)
	}
	if aux.X == nil || aux.Y == nil || aux.Z == nil {
		return orientation.Sample{}, fmt.Errorf("sample must contain x, y and z")
	}
	s := orientation.Sample{X: *aux.X, Y: *aux.Y, Z: *aux.Z}
	for _, v := range []float64{s.X, s.Y, s.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return orientation.Sample{}, fmt.Errorf("sample contains non-finite value")
		}
	}
	return s, nil
}

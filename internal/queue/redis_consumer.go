/**
 * Direct Redis Queue Consumer for frame intake
 *
 * Uses simple Redis LIST operations so any host can submit frames:
 *   HSET <queue>:data <frameId> <payload>; LPUSH <queue> <frameId>
 * Outcomes are written to <queue>:results and announced on <queue>:events.
 * Frames are never retried: a failed frame is recorded as an error outcome.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mosijchuk/vision-camera-ocr/internal/errors"
	"github.com/mosijchuk/vision-camera-ocr/internal/logging"
	"github.com/mosijchuk/vision-camera-ocr/internal/processor"
)

// errNoFrames is returned by processNextFrame when the poll timed out.
var errNoFrames = fmt.Errorf("no frames available")

// RedisConsumer handles frame consumption from a Redis list
type RedisConsumer struct {
	client  *redis.Client
	handler *frameHandler
	config  *RedisConsumerConfig
	logger  *logging.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// RedisConsumerConfig holds consumer configuration
type RedisConsumerConfig struct {
	Client      *redis.Client
	QueueName   string
	Concurrency int
	Processor   processor.FrameProcessorInterface
	Archiver    FrameArchiver
	PollTimeout time.Duration
	Logger      *logging.Logger
}

// NewRedisConsumer creates a new Redis-based frame consumer
func NewRedisConsumer(cfg *RedisConsumerConfig) (*RedisConsumer, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("Redis client is required")
	}

	if cfg.QueueName == "" {
		cfg.QueueName = "ocr:frames"
	}

	if cfg.Processor == nil {
		return nil, fmt.Errorf("Processor is required")
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("queue")
	}

	consumerCtx, cancel := context.WithCancel(context.Background())

	return &RedisConsumer{
		client: cfg.Client,
		handler: &frameHandler{
			processor: cfg.Processor,
			archiver:  cfg.Archiver,
			logger:    logger,
		},
		config: cfg,
		logger: logger,
		ctx:    consumerCtx,
		cancel: cancel,
	}, nil
}

// Start begins processing frames from the queue
func (c *RedisConsumer) Start() error {
	if err := c.client.Ping(c.ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.logger.Info("Starting Redis frame consumer",
		"concurrency", c.config.Concurrency,
		"queue", c.config.QueueName)

	for i := 0; i < c.config.Concurrency; i++ {
		c.wg.Add(1)
		go c.worker(i)
	}

	return nil
}

// Stop gracefully stops the consumer. The Redis client is owned by the caller.
func (c *RedisConsumer) Stop() error {
	c.logger.Info("Stopping Redis frame consumer")
	c.cancel()
	c.wg.Wait()
	return nil
}

// worker is a goroutine that processes frames
func (c *RedisConsumer) worker(id int) {
	defer c.wg.Done()
	c.logger.Debug("Worker started", "worker", id)

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Debug("Worker stopping", "worker", id)
			return
		default:
			if err := c.processNextFrame(); err != nil {
				if err == errNoFrames || c.ctx.Err() != nil {
					continue
				}
				c.logger.Error("Worker error", "worker", id, "error", err)
				// Small delay before trying again
				select {
				case <-c.ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// processNextFrame fetches and processes the next frame from the queue
func (c *RedisConsumer) processNextFrame() error {
	result, err := c.client.BRPop(c.ctx, c.config.PollTimeout, c.config.QueueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errNoFrames
		}
		return fmt.Errorf("failed to fetch frame: %w", err)
	}

	if len(result) < 2 {
		return fmt.Errorf("invalid frame result")
	}

	frameID := result[1]
	dataKey := c.key("data")

	// The ID is already off the list, so every path below publishes an outcome.
	raw, err := c.client.HGet(c.ctx, dataKey, frameID).Bytes()
	if err != nil {
		cause := err
		if errors.Is(err, redis.Nil) {
			cause = fmt.Errorf("no payload stored for frame")
		}
		ferr := errors.NewBufferAccessError(frameID, cause)
		c.publishOutcome(frameID, &processor.Outcome{
			FrameID: frameID,
			Error:   ferr.Description(),
			Err:     ferr,
		})
		if errors.Is(err, redis.Nil) {
			c.logger.Warn("Frame payload missing", "frame", frameID)
			return nil
		}
		return fmt.Errorf("failed to get frame data for %s: %w", frameID, err)
	}
	c.client.HDel(c.ctx, dataKey, frameID)

	var payload FramePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.publishOutcome(frameID, &processor.Outcome{
			FrameID: frameID,
			Error:   fmt.Sprintf("Invalid frame payload: %v", err),
		})
		return nil
	}
	if payload.FrameID == "" {
		payload.FrameID = frameID
	}

	outcome := c.handler.handle(c.ctx, &payload)
	c.publishOutcome(frameID, outcome)
	return nil
}

// publishOutcome stores the outcome and announces it
func (c *RedisConsumer) publishOutcome(frameID string, outcome *processor.Outcome) {
	data, err := json.Marshal(outcome)
	if err != nil {
		c.logger.Error("Failed to marshal outcome", "frame", frameID, "error", err)
		return
	}

	status := "completed"
	if !outcome.OK() {
		status = "failed"
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(c.ctx, c.key("results"), frameID, data)
	pipe.SAdd(c.ctx, c.key(status), frameID)

	event := map[string]interface{}{
		"event":     fmt.Sprintf("frame:%s", status),
		"frameId":   frameID,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	eventData, _ := json.Marshal(event)
	pipe.Publish(c.ctx, c.key("events"), eventData)

	if _, err := pipe.Exec(c.ctx); err != nil {
		c.logger.Error("Failed to publish outcome", "frame", frameID, "error", err)
	}
}

func (c *RedisConsumer) key(suffix string) string {
	return fmt.Sprintf("%s:%s", c.config.QueueName, suffix)
}

// GetStats returns queue statistics
func (c *RedisConsumer) GetStats(ctx context.Context) (map[string]int64, error) {
	waiting, err := c.client.LLen(ctx, c.config.QueueName).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read queue length: %w", err)
	}
	completed, _ := c.client.SCard(ctx, c.key("completed")).Result()
	failed, _ := c.client.SCard(ctx, c.key("failed")).Result()

	return map[string]int64{
		"waiting":   waiting,
		"completed": completed,
		"failed":    failed,
	}, nil
}

/**
 * Asynq Task Consumer for frame intake
 *
 * Alternative to the plain Redis list consumer for hosts that already speak
 * Asynq. Each frame is a "scan-frame" task; the outcome is written to the
 * task result. Frame failures are outcomes, not task failures, and tasks are
 * never retried.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/mosijchuk/vision-camera-ocr/internal/logging"
	"github.com/mosijchuk/vision-camera-ocr/internal/processor"
)

// TypeScanFrame is the Asynq task type for a camera frame
const TypeScanFrame = "scan-frame"

// Consumer handles frame tasks from an Asynq queue
type Consumer struct {
	client  *asynq.Client
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler *frameHandler
	config  *ConsumerConfig
	logger  *logging.Logger
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	RedisURL    string
	QueueName   string
	Concurrency int
	Processor   processor.FrameProcessorInterface
	Archiver    FrameArchiver
	Logger      *logging.Logger
}

// NewConsumer creates a new Asynq frame consumer
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}

	if cfg.QueueName == "" {
		return nil, fmt.Errorf("QueueName is required")
	}

	if cfg.Processor == nil {
		return nil, fmt.Errorf("Processor is required")
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("queue")
	}

	// Parse Redis connection options
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				cfg.QueueName: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task processing error", "type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()

	consumer := &Consumer{
		client: client,
		server: server,
		mux:    mux,
		handler: &frameHandler{
			processor: cfg.Processor,
			archiver:  cfg.Archiver,
			logger:    logger,
		},
		config: cfg,
		logger: logger,
	}

	mux.HandleFunc(TypeScanFrame, consumer.handleScanFrame)

	return consumer, nil
}

// Start starts the queue consumer
func (c *Consumer) Start() error {
	c.logger.Info("Starting Asynq frame consumer",
		"concurrency", c.config.Concurrency,
		"queue", c.config.QueueName)

	if err := c.server.Start(c.mux); err != nil {
		return fmt.Errorf("failed to start asynq server: %w", err)
	}
	return nil
}

// Stop stops the queue consumer gracefully
func (c *Consumer) Stop() error {
	c.logger.Info("Stopping Asynq frame consumer")

	c.server.Shutdown()

	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close client: %w", err)
	}
	return nil
}

// Enqueue submits a frame as a task
func (c *Consumer) Enqueue(ctx context.Context, payload *FramePayload) (string, error) {
	task, err := NewScanFrameTask(payload)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.config.QueueName))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue frame: %w", err)
	}
	return info.ID, nil
}

// NewScanFrameTask builds a scan-frame task that is never retried
func NewScanFrameTask(payload *FramePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frame payload: %w", err)
	}
	return asynq.NewTask(TypeScanFrame, data, asynq.MaxRetry(0)), nil
}

// handleScanFrame processes a scan-frame task
func (c *Consumer) handleScanFrame(ctx context.Context, task *asynq.Task) error {
	var payload FramePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal frame payload: %v: %w", err, asynq.SkipRetry)
	}

	outcome := c.handler.handle(ctx, &payload)

	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %v: %w", err, asynq.SkipRetry)
	}

	if rw := task.ResultWriter(); rw != nil {
		if _, err := rw.Write(data); err != nil {
			c.logger.Warn("Failed to write task result", "frame", outcome.FrameID, "error", err)
		}
	}

	return nil
}

// GetStatistics returns consumer statistics
func (c *Consumer) GetStatistics() map[string]interface{} {
	return map[string]interface{}{
		"concurrency": c.config.Concurrency,
		"queue":       c.config.QueueName,
	}
}

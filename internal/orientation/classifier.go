package orientation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mosijchuk/vision-camera-ocr/internal/errors"
	"github.com/mosijchuk/vision-camera-ocr/internal/logging"
)

// DefaultInterval is the 5 Hz sampling cadence.
const DefaultInterval = 200 * time.Millisecond

// ChangeFunc is called when the classified orientation differs from the
// previous one. Calls never overlap.
type ChangeFunc func(previous, current Orientation)

// ClassifierConfig holds classifier configuration
type ClassifierConfig struct {
	Source   Source
	Interval time.Duration
	Logger   *logging.Logger
	OnChange ChangeFunc
}

// Classifier keeps the latest physical orientation, written by a single
// background sampler and read lock-free by the frame path.
type Classifier struct {
	source   Source
	interval time.Duration
	logger   *logging.Logger
	onChange ChangeFunc

	current atomic.Int32

	// writeMu serializes writers of current so that change detection and
	// onChange see one ordered stream of samples. Readers never take it.
	writeMu sync.Mutex

	// mu guards the sampler lifecycle, not the orientation value.
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClassifier creates a classifier. It does not start sampling.
func NewClassifier(cfg *ClassifierConfig) *Classifier {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Classifier{
		source:   cfg.Source,
		interval: interval,
		logger:   logger,
		onChange: cfg.OnChange,
	}
}

// Current returns the last classified orientation, Portrait before any sample.
func (c *Classifier) Current() Orientation {
	return Orientation(c.current.Load())
}

// Interval returns the sampling cadence.
func (c *Classifier) Interval() time.Duration {
	return c.interval
}

// Start begins sampling. Calling Start on a running classifier restarts it.
func (c *Classifier) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	if c.source == nil {
		c.logger.Warn("No accelerometer source configured, orientation stays fixed",
			"orientation", c.Current())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go c.run(ctx, done)
	c.logger.Info("Orientation sampling started", "interval", c.interval)
}

// Stop halts sampling and waits for the sampler to exit. Safe when not started.
func (c *Classifier) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopLocked() {
		c.logger.Info("Orientation sampling stopped")
	}
}

// Running reports whether a sampler goroutine is active.
func (c *Classifier) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Classifier) stopLocked() bool {
	if c.cancel == nil {
		return false
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
	return true
}

func (c *Classifier) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sample(ctx)
		}
	}
}

func (c *Classifier) sample(ctx context.Context) {
	s, err := c.source.Read(ctx)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, ErrNoSample) {
			return
		}
		c.logger.Warn("Discarding accelerometer sample",
			"error", errors.NewSensorReadError("accelerometer", err),
			"orientation", c.Current())
		return
	}
	c.Observe(s)
}

// Observe classifies a sample and stores the result unconditionally.
// It returns the new orientation. Push-style sources call it directly; it is
// serialized with the background sampler, so a classifier started with a
// Source should normally not be fed through Observe as well.
func (c *Classifier) Observe(s Sample) Orientation {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	next := Classify(s)
	previous := Orientation(c.current.Swap(int32(next)))
	if previous != next {
		c.logger.Debug("Orientation changed", "from", previous, "to", next)
		if c.onChange != nil {
			c.onChange(previous, next)
		}
	}
	return next
}

/**
 * Frame Processor
 *
 * Runs the per-frame pipeline on the caller's goroutine:
 *   1. Read the live physical orientation from the classifier
 *   2. Correct the frame geometry (mirror, engine orientation tag)
 *   3. Recognize text with the shared engine instance
 *   4. Build the normalized document
 *
 * Every failure is frame-scoped and reported as an error outcome.
 * The processor owns the classifier's sampling goroutine and the engine:
 * both are released by Close.
 */

package processor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mosijchuk/vision-camera-ocr/internal/errors"
	"github.com/mosijchuk/vision-camera-ocr/internal/geometry"
	"github.com/mosijchuk/vision-camera-ocr/internal/logging"
	"github.com/mosijchuk/vision-camera-ocr/internal/ocrresult"
	"github.com/mosijchuk/vision-camera-ocr/internal/orientation"
	"github.com/mosijchuk/vision-camera-ocr/internal/recognizer"
)

// FrameProcessorInterface defines the interface for frame processing
type FrameProcessorInterface interface {
	Process(ctx context.Context, frame *Frame) *Outcome
}

// ProcessorConfig holds processor configuration
type ProcessorConfig struct {
	Recognizer       recognizer.TextRecognizer
	Accelerometer    orientation.Source
	SamplingInterval time.Duration
	Logger           *logging.Logger
}

// Frame is one camera frame as delivered by the camera pipeline.
type Frame struct {
	ID       string
	Buffer   geometry.PixelBuffer
	Mirrored bool
}

// FrameProcessor handles frame processing
type FrameProcessor struct {
	recognizer recognizer.TextRecognizer
	classifier *orientation.Classifier
	corrector  *geometry.Corrector
	logger     *logging.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewFrameProcessor creates a frame processor and starts orientation sampling
func NewFrameProcessor(cfg *ProcessorConfig) (*FrameProcessor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.Recognizer == nil {
		return nil, fmt.Errorf("text recognizer is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("processor")
	}

	classifier := orientation.NewClassifier(&orientation.ClassifierConfig{
		Source:   cfg.Accelerometer,
		Interval: cfg.SamplingInterval,
		Logger:   logger.Named("orientation"),
	})
	classifier.Start()

	logger.Info("Frame processor initialized",
		"engine", cfg.Recognizer.Name(),
		"samplingInterval", classifier.Interval())

	return &FrameProcessor{
		recognizer: cfg.Recognizer,
		classifier: classifier,
		corrector:  geometry.NewCorrector(),
		logger:     logger,
	}, nil
}

// Orientation returns the classifier's current physical orientation.
func (p *FrameProcessor) Orientation() orientation.Orientation {
	return p.classifier.Current()
}

// Classifier exposes the orientation classifier, mainly for push-style
// sensor integrations that call Observe directly. Observe is serialized with
// the background sampler.
func (p *FrameProcessor) Classifier() *orientation.Classifier {
	return p.classifier
}

// Process runs the pipeline for one frame. It never returns nil and never
// panics on frame-level failures.
func (p *FrameProcessor) Process(ctx context.Context, frame *Frame) *Outcome {
	startTime := time.Now()

	if frame == nil {
		frame = &Frame{}
	}
	frameID := frame.ID
	if frameID == "" {
		frameID = uuid.New().String()
	}

	current := p.classifier.Current()
	outcome := &Outcome{
		FrameID:     frameID,
		Orientation: current,
	}

	corrected, err := p.corrector.Correct(frame.Buffer, frame.Mirrored, current)
	if err != nil {
		return p.fail(outcome, err, startTime)
	}
	outcome.EngineOrientation = corrected.Orientation

	res, err := p.recognizer.Recognize(ctx, corrected.Image, corrected.Orientation)
	if err != nil {
		if !errors.IsCode(err, errors.ErrorImageConversion) && !errors.IsCode(err, errors.ErrorBufferAccess) {
			err = errors.NewRecognitionError(frameID, p.recognizer.Name(), err)
		}
		return p.fail(outcome, err, startTime)
	}

	outcome.Result = ocrresult.Build(res)
	outcome.Duration = time.Since(startTime)

	blocks, lines, elements := outcome.Result.Counts()
	p.logger.Debug("Frame processed",
		"frame", frameID,
		"orientation", current,
		"engineOrientation", corrected.Orientation,
		"mirrored", frame.Mirrored,
		"blocks", blocks,
		"lines", lines,
		"elements", elements,
		"duration", outcome.Duration)

	return outcome
}

func (p *FrameProcessor) fail(outcome *Outcome, err error, startTime time.Time) *Outcome {
	var fe *errors.FrameError
	if errors.As(err, &fe) {
		fe.WithFrameID(outcome.FrameID)
	}

	outcome.Err = err
	outcome.Error = errors.Describe(err)
	outcome.Duration = time.Since(startTime)

	p.logger.Warn("Frame skipped",
		"frame", outcome.FrameID,
		"orientation", outcome.Orientation,
		"error", err)

	return outcome
}

// Close stops orientation sampling and releases the engine. Safe to call
// more than once.
func (p *FrameProcessor) Close() error {
	p.closeOnce.Do(func() {
		p.classifier.Stop()
		if closer, ok := p.recognizer.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				p.closeErr = fmt.Errorf("failed to close recognizer: %w", err)
			}
		}
		p.logger.Info("Frame processor closed")
	})
	return p.closeErr
}

package queue

import (
	"context"
	"time"

	"github.com/mosijchuk/vision-camera-ocr/internal/logging"
	"github.com/mosijchuk/vision-camera-ocr/internal/processor"
	"github.com/mosijchuk/vision-camera-ocr/internal/storage"
)

// FrameArchiver persists frame outcomes
type FrameArchiver interface {
	ArchiveFrame(ctx context.Context, record *storage.FrameRecord) (string, error)
}

// frameHandler runs one payload through the processor and archives it.
type frameHandler struct {
	processor processor.FrameProcessorInterface
	archiver  FrameArchiver
	logger    *logging.Logger
}

func (h *frameHandler) handle(ctx context.Context, payload *FramePayload) *processor.Outcome {
	startTime := time.Now()
	outcome := h.processor.Process(ctx, payload.Frame())

	if outcome.FrameID == "" {
		outcome.FrameID = payload.FrameID
	}

	if h.archiver != nil {
		record := &storage.FrameRecord{
			FrameID:           outcome.FrameID,
			Orientation:       outcome.Orientation.String(),
			EngineOrientation: outcome.EngineOrientation.String(),
			Mirrored:          payload.Mirrored,
			Outcome:           outcome,
			ErrorMessage:      outcome.Error,
			ProcessingTime:    outcome.Duration,
		}
		if !outcome.OK() {
			record.EngineOrientation = ""
		}
		if _, err := h.archiver.ArchiveFrame(ctx, record); err != nil {
			h.logger.Warn("Failed to archive frame", "frame", outcome.FrameID, "error", err)
		}
	}

	h.logger.Info("Frame handled",
		"frame", outcome.FrameID,
		"ok", outcome.OK(),
		"orientation", outcome.Orientation,
		"duration", time.Since(startTime))

	return outcome
}

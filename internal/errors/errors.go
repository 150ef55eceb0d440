package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

/**
 * Error types for the frame OCR pipeline
 *
 * Every failure is frame-scoped: it is converted into an error outcome for
 * that frame and never stops the pipeline.
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Frame errors
	ErrorBufferAccess    ErrorCode = "BUFFER_ACCESS_FAILED"
	ErrorImageConversion ErrorCode = "IMAGE_CONVERSION_FAILED"
	ErrorRecognition     ErrorCode = "RECOGNITION_FAILED"

	// Sensor errors (recovered inside the classifier)
	ErrorSensorRead ErrorCode = "SENSOR_READ_FAILED"
)

// FrameError represents a structured per-frame error
type FrameError struct {
	Code      ErrorCode
	Message   string
	FrameID   string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *FrameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FrameError) Unwrap() error {
	return e.Cause
}

// Description is the caller-facing text placed in an error outcome.
func (e *FrameError) Description() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Factory functions for common errors

func NewBufferAccessError(frameID string, cause error) *FrameError {
	return &FrameError{
		Code:      ErrorBufferAccess,
		Message:   "Failed to get image buffer",
		FrameID:   frameID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewImageConversionError(frameID string, cause error) *FrameError {
	return &FrameError{
		Code:      ErrorImageConversion,
		Message:   "Failed to convert image for recognition",
		FrameID:   frameID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewRecognitionError(frameID string, engine string, cause error) *FrameError {
	return &FrameError{
		Code:      ErrorRecognition,
		Message:   "Text recognition failed",
		FrameID:   frameID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"engine": engine,
		},
		Cause: cause,
	}
}

func NewSensorReadError(source string, cause error) *FrameError {
	return &FrameError{
		Code:      ErrorSensorRead,
		Message:   fmt.Sprintf("Failed to read accelerometer sample from %s", source),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"source": source,
		},
		Cause: cause,
	}
}

// WithFrameID stamps the frame ID on a FrameError created before the frame
// was known (for example inside a pixel buffer).
func (e *FrameError) WithFrameID(frameID string) *FrameError {
	if e.FrameID == "" {
		e.FrameID = frameID
	}
	return e
}

// As and Is forward to the standard library so callers importing this
// package under the name errors keep both.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

func Is(err, target error) bool { return stderrors.Is(err, target) }

// IsCode reports whether err wraps a FrameError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var fe *FrameError
	if stderrors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// Describe converts any error into the caller-facing description.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var fe *FrameError
	if stderrors.As(err, &fe) {
		return fe.Description()
	}
	return err.Error()
}

// ToMap converts error to map for result storage
func (e *FrameError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	if e.FrameID != "" {
		result["frame_id"] = e.FrameID
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}

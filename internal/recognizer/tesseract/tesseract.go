/**
 * Tesseract text recognizer
 *
 * Offline recognition through gosseract. A single client is created at
 * construction and reused for every frame, guarded by a mutex since the
 * underlying API handle is not safe for concurrent use.
 *
 * Tesseract takes no orientation hint, so the image is rotated upright
 * before recognition and the returned geometry is in upright image space.
 */

package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/mosijchuk/vision-camera-ocr/internal/errors"
	"github.com/mosijchuk/vision-camera-ocr/internal/geometry"
	"github.com/mosijchuk/vision-camera-ocr/internal/recognizer"
)

// Engine implements recognizer.TextRecognizer with Tesseract
type Engine struct {
	mu        sync.Mutex
	client    *gosseract.Client
	languages []string
	closed    bool
}

// Config holds Tesseract configuration
type Config struct {
	Languages      []string
	TessdataPrefix string
	PageSegMode    int
}

// New creates the shared Tesseract client
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"eng"}
	}

	client := gosseract.NewClient()

	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}

	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set languages %v: %w", languages, err)
	}

	if cfg.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set page segmentation mode %d: %w", cfg.PageSegMode, err)
		}
	}

	return &Engine{
		client:    client,
		languages: languages,
	}, nil
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on one corrected frame
func (e *Engine) Recognize(ctx context.Context, img image.Image, tag geometry.EngineOrientation) (*recognizer.Result, error) {
	data, err := encodePNG(geometry.Upright(img, tag))
	if err != nil {
		return nil, errors.NewImageConversionError("", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("tesseract engine is closed")
	}

	if err := e.client.SetImageFromBytes(data); err != nil {
		return nil, errors.NewImageConversionError("", fmt.Errorf("failed to set image: %w", err))
	}

	text, err := e.client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("tesseract layout extraction failed: %w", err)
	}

	words := make([]recognizer.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, recognizer.Word{
			Text:      b.Word,
			Box:       b.Box,
			Block:     b.BlockNum,
			Paragraph: b.ParNum,
			Line:      b.LineNum,
		})
	}

	return recognizer.AssembleWords(strings.TrimSpace(text), words, e.languages), nil
}

// Close releases the Tesseract API handle
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.client.Close()
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

package queue

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mosijchuk/vision-camera-ocr/internal/geometry"
	"github.com/mosijchuk/vision-camera-ocr/internal/processor"
)

// FramePayload is a camera frame submitted by the host app
type FramePayload struct {
	FrameID  string `json:"frameId"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Stride   int    `json:"stride,omitempty"`
	Format   string `json:"format,omitempty"`
	Pixels   []byte `json:"-"` // Set by custom UnmarshalJSON
	Encoded  []byte `json:"-"` // Set by custom UnmarshalJSON
	Mirrored bool   `json:"mirrored"`
}

// UnmarshalJSON handles both base64 strings and Node.js Buffer objects
// ({"type":"Buffer","data":[...]}) for the pixels and encoded fields.
func (p *FramePayload) UnmarshalJSON(data []byte) error {
	// Create alias type to avoid recursion
	type Alias FramePayload
	aux := &struct {
		Pixels  interface{} `json:"pixels,omitempty"`
		Encoded interface{} `json:"encoded,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(p),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to unmarshal FramePayload: %w", err)
	}

	var err error
	if p.Pixels, err = decodeBuffer("pixels", aux.Pixels); err != nil {
		return err
	}
	if p.Encoded, err = decodeBuffer("encoded", aux.Encoded); err != nil {
		return err
	}
	return nil
}

// MarshalJSON writes buffers as base64 strings.
func (p FramePayload) MarshalJSON() ([]byte, error) {
	type Alias FramePayload
	return json.Marshal(&struct {
		Pixels  []byte `json:"pixels,omitempty"`
		Encoded []byte `json:"encoded,omitempty"`
		Alias
	}{
		Pixels:  p.Pixels,
		Encoded: p.Encoded,
		Alias:   Alias(p),
	})
}

func decodeBuffer(field string, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil

	case string:
		// Base64 string format
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 %s: %w", field, err)
		}
		return decoded, nil

	case map[string]interface{}:
		// Node.js Buffer object format
		bufferType, ok := v["type"].(string)
		if !ok || bufferType != "Buffer" {
			return nil, fmt.Errorf("invalid Buffer object format for %s (missing or incorrect 'type' field)", field)
		}
		dataArray, ok := v["data"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("Buffer object for %s missing 'data' array", field)
		}
		out := make([]byte, len(dataArray))
		for i, val := range dataArray {
			byteVal, ok := val.(float64)
			if !ok || byteVal < 0 || byteVal > 255 {
				return nil, fmt.Errorf("invalid byte value in %s data array at index %d", field, i)
			}
			out[i] = byte(byteVal)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%s must be either base64 string or Buffer object, got %T", field, v)
	}
}

// Frame converts the payload into a processor frame. Encoded data wins over
// raw pixels when both are present.
func (p *FramePayload) Frame() *processor.Frame {
	frame := &processor.Frame{
		ID:       p.FrameID,
		Mirrored: p.Mirrored,
	}

	switch {
	case len(p.Encoded) > 0:
		frame.Buffer = &geometry.EncodedBuffer{Data: p.Encoded}
	case len(p.Pixels) > 0:
		format := geometry.PixelFormat(p.Format)
		if format == "" {
			format = geometry.FormatBGRA
		}
		frame.Buffer = &geometry.RawBuffer{
			Width:  p.Width,
			Height: p.Height,
			Stride: p.Stride,
			Format: format,
			Data:   p.Pixels,
		}
	}

	return frame
}

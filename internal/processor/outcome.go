package processor

import (
	"encoding/json"
	"time"

	"github.com/mosijchuk/vision-camera-ocr/internal/geometry"
	"github.com/mosijchuk/vision-camera-ocr/internal/ocrresult"
	"github.com/mosijchuk/vision-camera-ocr/internal/orientation"
)

// Outcome is the tagged per-frame result: exactly one of Result and Error is
// set. Only those two fields cross the boundary; the rest is diagnostics.
type Outcome struct {
	Result *ocrresult.Document `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`

	FrameID           string                     `json:"-"`
	Orientation       orientation.Orientation    `json:"-"`
	EngineOrientation geometry.EngineOrientation `json:"-"`
	Duration          time.Duration              `json:"-"`
	Err               error                      `json:"-"`
}

// OK reports whether the frame produced a document.
func (o *Outcome) OK() bool {
	return o.Error == "" && o.Result != nil
}

// ToMap converts the outcome into the host-boundary shape:
// {"result": {...}} or {"error": "..."}.
func (o *Outcome) ToMap() (map[string]interface{}, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

package upscale

import (
	"math"
	"strconv"
	"strings"
)

// Output is always square: BaseSize × effective scale on each side.
const (
	BaseSize     = 1024
	MinScale     = 1.0
	MaxScale     = 4.0
	DefaultScale = 2.0
)

// Request is an upscale job as received by the gateway
type Request struct {
	// ImageURL is a data: URL or an http(s) URL
	ImageURL string
	// Scale is the raw requested scale: a number, a numeric string or nil
	Scale interface{}
}

// Result is the upscaled image encoded as a data URL
type Result struct {
	URL    string
	Scale  float64
	Width  int
	Height int
	Bytes  int
}

// NormalizeScale turns a raw scale value into the effective multiplier.
// Anything non-numeric, zero or missing becomes DefaultScale; the result is
// clamped into [MinScale, MaxScale].
func NormalizeScale(raw interface{}) float64 {
	var s float64
	switch v := raw.(type) {
	case float64:
		s = v
	case float32:
		s = float64(v)
	case int:
		s = float64(v)
	case int64:
		s = float64(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			break
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			s = f
		}
	case bool:
		if v {
			s = 1
		}
	}

	if s == 0 || math.IsNaN(s) {
		s = DefaultScale
	}
	return math.Min(math.Max(s, MinScale), MaxScale)
}

// TargetSize returns the output edge length in pixels for an effective scale,
// rounded to a whole pixel
func TargetSize(scale float64) int {
	return int(math.Round(BaseSize * scale))
}

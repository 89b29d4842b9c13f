// Package device measures the viewing device: network throughput, hardware,
// graphics capability, display metrics and power state. The product is an
// immutable Snapshot that the scoring engine consumes.
package device

import (
	"math"
	"time"

	"github.com/adaptik3d/adaptik/pkg/quality"
)

// ConnectionClass is the coarse connection bucket derived from measured
// throughput, mirroring the Network Information API's effectiveType values.
type ConnectionClass string

const (
	ClassSlow2G ConnectionClass = "slow-2g"
	Class2G     ConnectionClass = "2g"
	Class3G     ConnectionClass = "3g"
	Class4G     ConnectionClass = "4g"
)

// ClassForThroughput buckets a measured downlink into a ConnectionClass.
func ClassForThroughput(mbps float64) ConnectionClass {
	switch {
	case mbps < 0.05:
		return ClassSlow2G
	case mbps < 0.1:
		return Class2G
	case mbps < 1:
		return Class3G
	default:
		return Class4G
	}
}

// ShaderPrecision is the best floating point precision the device's shaders
// support.
type ShaderPrecision string

const (
	PrecisionLow    ShaderPrecision = "low"
	PrecisionMedium ShaderPrecision = "medium"
	PrecisionHigh   ShaderPrecision = "high"
)

// NetworkInfo holds the network sub-probe result.
type NetworkInfo struct {
	DownlinkMbps float64         `json:"downlinkMbps"`
	RTTMillis    float64         `json:"rttMillis"`
	Class        ConnectionClass `json:"class"`
	SaveData     bool            `json:"saveData"`
	Measured     bool            `json:"measured"` // false when hints/defaults were used
}

// HardwareInfo holds the hardware sub-probe result.
type HardwareInfo struct {
	MemoryGB float64 `json:"memoryGB"`
	Cores    int     `json:"cores"`
}

// GraphicsInfo holds the graphics sub-probe result. Vendor and Renderer are
// informational only and never feed scoring directly.
type GraphicsInfo struct {
	Tier            quality.GraphicsTier `json:"tier"`
	Vendor          string               `json:"vendor"`
	Renderer        string               `json:"renderer"`
	APIVersion      int                  `json:"apiVersion"` // 0 when no context is available
	SupportsV1      bool                 `json:"supportsV1"`
	SupportsV2      bool                 `json:"supportsV2"`
	NextGenAPI      bool                 `json:"nextGenAPI"`
	MaxTextureSize  int                  `json:"maxTextureSize"`
	MaxViewportDims [2]int               `json:"maxViewportDims"`
	ShaderPrecision ShaderPrecision      `json:"shaderPrecision"`
}

// DisplayInfo holds the display sub-probe result.
type DisplayInfo struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	PixelRatio float64 `json:"pixelRatio"`
	ColorDepth int     `json:"colorDepth"`
}

// BatteryState is present only on devices that report a battery. A nil
// BatteryState means "no battery constraint": treat the device as charging.
type BatteryState struct {
	Level    float64 `json:"level"` // 0..1
	Charging bool    `json:"charging"`
}

// EffectivelyCharging reports whether battery pressure can be ignored.
func (b *BatteryState) EffectivelyCharging() bool {
	return b == nil || b.Charging
}

// Snapshot is an immutable record of the device's capabilities at one point
// in time. It is superseded by the next probe, never mutated.
type Snapshot struct {
	Network  NetworkInfo   `json:"network"`
	Hardware HardwareInfo  `json:"hardware"`
	Graphics GraphicsInfo  `json:"graphics"`
	Display  DisplayInfo   `json:"display"`
	Battery  *BatteryState `json:"battery,omitempty"`
	Mobile   bool          `json:"mobile"`

	CapturedAt time.Time `json:"capturedAt"`

	// Derived fields, filled by finalize.
	Score           int          `json:"score"` // 0-100
	RecommendedTier quality.Tier `json:"recommendedTier"`
}

// Overall score blend weights.
const (
	scoreWeightNetwork  = 0.30
	scoreWeightMemory   = 0.25
	scoreWeightGraphics = 0.30
	scoreWeightDisplay  = 0.15
)

// finalize computes the derived overall score and recommended tier. Every
// sub-score is clamped to [0,100] before weighting, and the blend is clamped
// again so the invariant holds no matter what the sub-probes produced.
func (s *Snapshot) finalize() {
	network := clamp01Hundred(s.Network.DownlinkMbps * 2)
	memory := clamp01Hundred(s.Hardware.MemoryGB / 16 * 100)
	graphics := clamp01Hundred(graphicsTierScore(s.Graphics.Tier))
	display := clamp01Hundred(float64(s.Display.Width*s.Display.Height) / float64(3840*2160) * 100)

	blend := network*scoreWeightNetwork +
		memory*scoreWeightMemory +
		graphics*scoreWeightGraphics +
		display*scoreWeightDisplay

	s.Score = int(math.Round(clamp01Hundred(blend)))
	s.RecommendedTier = TierForScore(s.Score)
}

func graphicsTierScore(t quality.GraphicsTier) float64 {
	switch t {
	case quality.GraphicsHigh:
		return 90
	case quality.GraphicsMedium:
		return 60
	case quality.GraphicsLow:
		return 30
	default:
		return 60
	}
}

// TierForScore maps an overall score to the recommended quality tier.
func TierForScore(score int) quality.Tier {
	switch {
	case score >= 80:
		return quality.Ultra
	case score >= 60:
		return quality.High
	case score >= 40:
		return quality.Medium
	default:
		return quality.Low
	}
}

func clamp01Hundred(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

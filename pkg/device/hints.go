package device

import (
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// HintsEnvVar optionally carries a host-reported hints document: either
// inline JSON or, when prefixed with '@', a path to a JSON file.
const HintsEnvVar = "ADAPTIK_DEVICE_HINTS"

// Hints is a host-reported capability document: the values a browser (or any
// embedding application) already knows about the device, handed to the
// prober as best-effort input. All accessors are optional; the second return
// value reports whether the field was present.
//
// Expected shape:
//
//	{
//	  "userAgent": "...",
//	  "network": {"downlink": 10, "rtt": 50, "effectiveType": "4g", "saveData": false},
//	  "memory": 8, "cores": 8,
//	  "gpu": {"v1": true, "v2": true, "nextGen": false, "vendor": "...",
//	          "renderer": "...", "maxTextureSize": 16384,
//	          "maxViewport": [16384, 16384], "precision": "high"},
//	  "screen": {"width": 2560, "height": 1440, "pixelRatio": 2, "colorDepth": 24},
//	  "battery": {"level": 0.8, "charging": true}
//	}
type Hints struct {
	raw string
}

// LoadHints reads hints from the environment. Returns an empty (usable)
// Hints when nothing is configured or the source is unreadable.
func LoadHints() *Hints {
	v := strings.TrimSpace(os.Getenv(HintsEnvVar))
	if v == "" {
		return &Hints{}
	}
	if strings.HasPrefix(v, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(v, "@"))
		if err != nil {
			return &Hints{}
		}
		return HintsFromJSON(string(data))
	}
	return HintsFromJSON(v)
}

// HintsFromJSON wraps a raw JSON document. Invalid JSON yields empty hints.
func HintsFromJSON(doc string) *Hints {
	if !gjson.Valid(doc) {
		return &Hints{}
	}
	return &Hints{raw: doc}
}

func (h *Hints) float(path string) (float64, bool) {
	if h == nil || h.raw == "" {
		return 0, false
	}
	r := gjson.Get(h.raw, path)
	if !r.Exists() {
		return 0, false
	}
	return r.Float(), true
}

func (h *Hints) str(path string) (string, bool) {
	if h == nil || h.raw == "" {
		return "", false
	}
	r := gjson.Get(h.raw, path)
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

func (h *Hints) boolean(path string) (bool, bool) {
	if h == nil || h.raw == "" {
		return false, false
	}
	r := gjson.Get(h.raw, path)
	if !r.Exists() {
		return false, false
	}
	return r.Bool(), true
}

func (h *Hints) UserAgent() (string, bool) { return h.str("userAgent") }

func (h *Hints) DownlinkMbps() (float64, bool) { return h.float("network.downlink") }
func (h *Hints) RTTMillis() (float64, bool)    { return h.float("network.rtt") }
func (h *Hints) EffectiveType() (string, bool) { return h.str("network.effectiveType") }
func (h *Hints) SaveData() bool {
	v, _ := h.boolean("network.saveData")
	return v
}

func (h *Hints) MemoryGB() (float64, bool) { return h.float("memory") }
func (h *Hints) Cores() (int, bool) {
	v, ok := h.float("cores")
	return int(v), ok
}

func (h *Hints) GPUPresent() bool {
	if h == nil || h.raw == "" {
		return false
	}
	return gjson.Get(h.raw, "gpu").Exists()
}
func (h *Hints) GPUSupportsV1() bool { v, _ := h.boolean("gpu.v1"); return v }
func (h *Hints) GPUSupportsV2() bool { v, _ := h.boolean("gpu.v2"); return v }
func (h *Hints) GPUNextGen() bool    { v, _ := h.boolean("gpu.nextGen"); return v }
func (h *Hints) GPUVendor() string   { v, _ := h.str("gpu.vendor"); return v }
func (h *Hints) GPURenderer() string { v, _ := h.str("gpu.renderer"); return v }
func (h *Hints) GPUMaxTextureSize() (int, bool) {
	v, ok := h.float("gpu.maxTextureSize")
	return int(v), ok
}
func (h *Hints) GPUMaxViewport() ([2]int, bool) {
	if h == nil || h.raw == "" {
		return [2]int{}, false
	}
	r := gjson.Get(h.raw, "gpu.maxViewport")
	if !r.IsArray() {
		return [2]int{}, false
	}
	arr := r.Array()
	if len(arr) != 2 {
		return [2]int{}, false
	}
	return [2]int{int(arr[0].Int()), int(arr[1].Int())}, true
}
func (h *Hints) GPUPrecision() (string, bool) { return h.str("gpu.precision") }

func (h *Hints) ScreenWidth() (int, bool) {
	v, ok := h.float("screen.width")
	return int(v), ok
}
func (h *Hints) ScreenHeight() (int, bool) {
	v, ok := h.float("screen.height")
	return int(v), ok
}
func (h *Hints) PixelRatio() (float64, bool) { return h.float("screen.pixelRatio") }
func (h *Hints) ColorDepth() (int, bool) {
	v, ok := h.float("screen.colorDepth")
	return int(v), ok
}

func (h *Hints) BatteryPresent() bool {
	if h == nil || h.raw == "" {
		return false
	}
	return gjson.Get(h.raw, "battery").Exists()
}
func (h *Hints) BatteryLevel() (float64, bool) { return h.float("battery.level") }
func (h *Hints) BatteryCharging() bool {
	v, _ := h.boolean("battery.charging")
	return v
}

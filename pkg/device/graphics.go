package device

import (
	"regexp"
	"strings"

	"github.com/adaptik3d/adaptik/pkg/quality"
)

// Graphics probe defaults.
const (
	DefaultMaxTextureSize  = 2048
	DefaultViewportWidth   = 1920
	DefaultViewportHeight  = 1080
	DefaultShaderPrecision = PrecisionMedium
)

// DefaultGraphicsTier is used when no adapter information is available at all.
const DefaultGraphicsTier = quality.GraphicsMedium

// graphicsProbe builds GraphicsInfo from the host-reported adapter document.
// The rendering-context query itself belongs to the embedding application;
// the prober only interprets what it was handed. A device with no adapter
// report at all gets the documented defaults.
func graphicsProbe(hints *Hints) GraphicsInfo {
	info := GraphicsInfo{
		Tier:            DefaultGraphicsTier,
		MaxTextureSize:  DefaultMaxTextureSize,
		MaxViewportDims: [2]int{DefaultViewportWidth, DefaultViewportHeight},
		ShaderPrecision: DefaultShaderPrecision,
	}

	if !hints.GPUPresent() {
		return info
	}

	// Prefer the newer context generation, fall back to the older one.
	info.SupportsV2 = hints.GPUSupportsV2()
	info.SupportsV1 = hints.GPUSupportsV1()
	switch {
	case info.SupportsV2:
		info.APIVersion = 2
	case info.SupportsV1:
		info.APIVersion = 1
	default:
		info.APIVersion = 0
	}
	info.NextGenAPI = hints.GPUNextGen()

	info.Vendor = hints.GPUVendor()
	info.Renderer = hints.GPURenderer()

	if v, ok := hints.GPUMaxTextureSize(); ok && v > 0 {
		info.MaxTextureSize = v
	}
	if v, ok := hints.GPUMaxViewport(); ok {
		info.MaxViewportDims = v
	}
	if v, ok := hints.GPUPrecision(); ok {
		switch strings.ToLower(v) {
		case "high":
			info.ShaderPrecision = PrecisionHigh
		case "medium":
			info.ShaderPrecision = PrecisionMedium
		default:
			info.ShaderPrecision = PrecisionLow
		}
	}

	info.Tier = tierForAdapter(info)
	return info
}

// tierForAdapter computes the coarse graphics tier from a weighted feature
// score: context generation, texture limits, shader precision, next-gen API
// availability and known-fast vendor strings.
func tierForAdapter(g GraphicsInfo) quality.GraphicsTier {
	score := 20 * g.APIVersion

	switch {
	case g.MaxTextureSize >= 16384:
		score += 30
	case g.MaxTextureSize >= 8192:
		score += 20
	case g.MaxTextureSize >= 4096:
		score += 10
	}

	switch g.ShaderPrecision {
	case PrecisionHigh:
		score += 20
	case PrecisionMedium:
		score += 10
	}

	if g.NextGenAPI {
		score += 30
	}

	score += vendorBonus(g.Renderer)

	switch {
	case score >= 70:
		return quality.GraphicsHigh
	case score >= 40:
		return quality.GraphicsMedium
	default:
		return quality.GraphicsLow
	}
}

// vendorBonus rewards renderer strings from known high-performance vendors.
func vendorBonus(renderer string) int {
	r := strings.ToLower(renderer)
	switch {
	case strings.Contains(r, "nvidia") || strings.Contains(r, "geforce") || strings.Contains(r, "rtx"):
		return 20
	case strings.Contains(r, "amd") || strings.Contains(r, "radeon"):
		return 15
	case strings.Contains(r, "intel"):
		return 10
	default:
		return 0
	}
}

var mobileRe = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini`)

// IsMobileUserAgent classifies an identification string as a mobile device.
// Informational only; scoring never reads it.
func IsMobileUserAgent(ua string) bool {
	return mobileRe.MatchString(ua)
}

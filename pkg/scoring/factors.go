package scoring

import (
	"math"

	"github.com/adaptik3d/adaptik/pkg/catalog"
	"github.com/adaptik3d/adaptik/pkg/device"
	"github.com/adaptik3d/adaptik/pkg/quality"
)

// Memory footprint multiplier per declared quality: decoded geometry and
// textures occupy a multiple of the compressed file size.
var memoryMultiplier = map[quality.Tier]float64{
	quality.Low:    1.5,
	quality.Medium: 2.0,
	quality.High:   3.0,
	quality.Ultra:  4.0,
}

// Relative GPU/battery cost of rendering each quality tier.
var qualityImpact = map[quality.Tier]float64{
	quality.Low:    0.1,
	quality.Medium: 0.3,
	quality.High:   0.6,
	quality.Ultra:  1.0,
}

// Post-download processing baseline in seconds per quality tier.
var processingBase = map[quality.Tier]float64{
	quality.Low:    0.5,
	quality.Medium: 1.0,
	quality.High:   2.0,
	quality.Ultra:  4.0,
}

// Processing speed multiplier per device graphics tier.
var gpuMultiplier = map[quality.GraphicsTier]float64{
	quality.GraphicsLow:    2.0,
	quality.GraphicsMedium: 1.0,
	quality.GraphicsHigh:   0.5,
}

// graphicsFit scores how well a declared quality suits a device graphics
// tier. Rows are asset quality, columns are device tiers low/medium/high.
var graphicsFit = map[quality.Tier]map[quality.GraphicsTier]float64{
	quality.Low:    {quality.GraphicsLow: 90, quality.GraphicsMedium: 95, quality.GraphicsHigh: 98},
	quality.Medium: {quality.GraphicsLow: 60, quality.GraphicsMedium: 80, quality.GraphicsHigh: 95},
	quality.High:   {quality.GraphicsLow: 30, quality.GraphicsMedium: 60, quality.GraphicsHigh: 85},
	quality.Ultra:  {quality.GraphicsLow: 20, quality.GraphicsMedium: 40, quality.GraphicsHigh: 70},
}

// usableMemoryMB is the share of device memory an asset can reasonably
// claim: total memory in MB scaled by a 0.7 headroom factor.
func usableMemoryMB(memoryGB float64) float64 {
	return memoryGB * 1024 * 0.7
}

// DownloadTimeSeconds estimates how long the descriptor's payload takes to
// transfer at the snapshot's measured downlink.
func DownloadTimeSeconds(d catalog.Descriptor, snap device.Snapshot) float64 {
	mbps := snap.Network.DownlinkMbps
	if mbps <= 0 {
		return math.Inf(1)
	}
	megabits := float64(d.FileSizeBytes) * 8 / 1e6
	return megabits / mbps
}

// ProcessingTimeSeconds estimates post-download decode time on this device.
func ProcessingTimeSeconds(d catalog.Descriptor, snap device.Snapshot) float64 {
	base, ok := processingBase[d.Quality]
	if !ok {
		base = 1.0
	}
	mult, ok := gpuMultiplier[snap.Graphics.Tier]
	if !ok {
		mult = 1.0
	}
	return base * mult
}

// EstimatedMemoryMB estimates the decoded in-memory footprint.
func EstimatedMemoryMB(d catalog.Descriptor) int {
	mult, ok := memoryMultiplier[d.Quality]
	if !ok {
		mult = 2.0
	}
	return int(math.Round(d.FileSizeMB() * mult))
}

// PerformanceImpactFor classifies how hard the asset leans on the device.
func PerformanceImpactFor(d catalog.Descriptor, snap device.Snapshot) string {
	ratio := float64(EstimatedMemoryMB(d)) / usableMemoryMB(snap.Hardware.MemoryGB)
	switch {
	case ratio > 0.5:
		return "high"
	case ratio > 0.2:
		return "medium"
	default:
		return "low"
	}
}

func networkScore(d catalog.Descriptor, snap device.Snapshot) float64 {
	dl := DownloadTimeSeconds(d, snap)
	switch {
	case dl < 2:
		return 90
	case dl < 5:
		return 75
	case dl < 10:
		return 60
	case dl < 20:
		return 40
	default:
		return 20
	}
}

func memoryScore(d catalog.Descriptor, snap device.Snapshot) float64 {
	ratio := float64(EstimatedMemoryMB(d)) / usableMemoryMB(snap.Hardware.MemoryGB)
	switch {
	case ratio < 0.1:
		return 90
	case ratio < 0.2:
		return 75
	case ratio < 0.4:
		return 60
	case ratio < 0.6:
		return 40
	default:
		return 20
	}
}

func graphicsScore(d catalog.Descriptor, snap device.Snapshot) float64 {
	if row, ok := graphicsFit[d.Quality]; ok {
		if v, ok := row[snap.Graphics.Tier]; ok {
			return v
		}
	}
	return 50
}

func batteryScore(d catalog.Descriptor, snap device.Snapshot) float64 {
	if snap.Battery.EffectivelyCharging() {
		return 80
	}

	level := snap.Battery.Level
	impact := qualityImpact[d.Quality]

	switch {
	case level < 0.2 && impact > 0.5:
		return 20
	case level < 0.5 && impact > 0.7:
		return 40
	case level < 0.3:
		return 60
	default:
		return 85
	}
}

func dataSaverScore(d catalog.Descriptor, snap device.Snapshot, prefs Preferences) float64 {
	sizeMB := d.FileSizeMB()

	if prefs.DataSaver || snap.Network.SaveData {
		switch {
		case sizeMB < 1:
			return 90
		case sizeMB < 5:
			return 70
		case sizeMB < 20:
			return 40
		default:
			return 20
		}
	}

	switch {
	case sizeMB < 10:
		return 80
	case sizeMB < 50:
		return 70
	case sizeMB < 100:
		return 60
	default:
		return 50
	}
}

var qualityPriorityBonus = map[quality.Tier]float64{
	quality.Low:    10,
	quality.Medium: 20,
	quality.High:   30,
	quality.Ultra:  40,
}

var performancePriorityBonus = map[quality.Tier]float64{
	quality.Low:    40,
	quality.Medium: 30,
	quality.High:   20,
	quality.Ultra:  10,
}

func preferenceScore(d catalog.Descriptor, prefs Preferences) float64 {
	if prefs.excluded(d.ID) {
		return 0
	}

	score := 50.0

	if prefs.PreferredQuality != "" && d.Quality == prefs.PreferredQuality {
		score += 30
	}

	// When both priority flags are set only the quality bonus applies; the
	// branch order is load-bearing and covered by tests.
	if prefs.PrioritizeQuality {
		score += qualityPriorityBonus[d.Quality]
	} else if prefs.PrioritizePerformance {
		score += performancePriorityBonus[d.Quality]
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package scoring

import (
	"fmt"
	"strings"

	"github.com/adaptik3d/adaptik/pkg/catalog"
	"github.com/adaptik3d/adaptik/pkg/device"
	"github.com/adaptik3d/adaptik/pkg/quality"
)

// Rationale rules: each is a pure predicate over (descriptor, snapshot,
// preferences, derived numbers) that appends a fixed message. Evaluation
// order is fixed, nothing is ever removed, so output is deterministic.

func buildReasoning(d catalog.Descriptor, snap device.Snapshot, prefs Preferences, rec *Recommendation) []string {
	var out []string

	if d.Quality == snap.RecommendedTier {
		out = append(out, fmt.Sprintf("%s quality matches the device's recommended tier", d.Quality))
	} else if d.Quality.Rank() < snap.RecommendedTier.Rank() {
		out = append(out, fmt.Sprintf("%s quality stays below the device's %s ceiling for headroom", d.Quality, snap.RecommendedTier))
	} else {
		out = append(out, fmt.Sprintf("%s quality exceeds the device's recommended %s tier", d.Quality, snap.RecommendedTier))
	}

	dl := DownloadTimeSeconds(d, snap)
	switch {
	case dl < 2:
		out = append(out, "downloads in under 2 seconds on the measured connection")
	case dl < 10:
		out = append(out, fmt.Sprintf("downloads in roughly %.0f seconds on the measured connection", dl))
	default:
		out = append(out, "sizeable download for the measured connection")
	}

	if prefs.PreferredQuality != "" && d.Quality == prefs.PreferredQuality {
		out = append(out, "matches your preferred quality setting")
	}
	if prefs.PrioritizeQuality {
		out = append(out, "quality prioritized per your preference")
	} else if prefs.PrioritizePerformance {
		out = append(out, "performance prioritized per your preference")
	}
	if prefs.DataSaver || snap.Network.SaveData {
		out = append(out, "data saver mode factored into the choice")
	}

	return out
}

func buildWarnings(d catalog.Descriptor, snap device.Snapshot, prefs Preferences, rec *Recommendation) []string {
	var out []string

	if prefs.MaxLoadTimeSeconds > 0 && rec.EstimatedLoadSeconds > prefs.MaxLoadTimeSeconds {
		out = append(out, fmt.Sprintf("estimated load time %.1fs exceeds your %.1fs limit", rec.EstimatedLoadSeconds, prefs.MaxLoadTimeSeconds))
	}
	if rec.PerformanceImpact == "high" {
		out = append(out, "high memory pressure expected on this device")
	}
	if !snap.Battery.EffectivelyCharging() && snap.Battery.Level < 0.3 && qualityImpact[d.Quality] > 0.5 {
		out = append(out, "may drain the low battery quickly")
	}
	if snap.Network.Class == device.ClassSlow2G || snap.Network.Class == device.Class2G {
		out = append(out, "very slow connection detected; expect long load times")
	}
	if !strings.HasPrefix(strings.ToLower(d.URL), "https://") {
		out = append(out, "asset is not served over HTTPS")
	}

	return out
}

// dominantOrigin returns the registered domain most of the ranked catalog is
// served from. Ties break lexicographically so output stays deterministic.
func dominantOrigin(ranked []scored) (string, bool) {
	counts := make(map[string]int)
	for _, s := range ranked {
		if dom, ok := catalog.RegisteredDomain(s.desc.URL); ok {
			counts[dom]++
		}
	}

	best, n := "", 0
	for dom, c := range counts {
		if c > n || (c == n && dom < best) {
			best, n = dom, c
		}
	}
	return best, n > 0
}

func buildBenefits(d catalog.Descriptor, snap device.Snapshot, prefs Preferences, rec *Recommendation) []string {
	var out []string

	if d.Quality == quality.Ultra && snap.Graphics.Tier == quality.GraphicsHigh {
		out = append(out, "takes full advantage of the device's graphics capability")
	}
	if d.FileSizeMB() < 5 {
		out = append(out, "small download, quick to switch to")
	}
	if rec.PerformanceImpact == "low" {
		out = append(out, "leaves plenty of memory headroom")
	}
	if d.Quality == quality.Low && !snap.Battery.EffectivelyCharging() {
		out = append(out, "battery-friendly choice while unplugged")
	}

	return out
}

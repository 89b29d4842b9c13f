package scoring

import (
	"math"
	"testing"

	"github.com/adaptik3d/adaptik/pkg/catalog"
	"github.com/adaptik3d/adaptik/pkg/device"
	"github.com/adaptik3d/adaptik/pkg/quality"
)

const mb = 1024 * 1024

func asset(q quality.Tier, sizeMB int) catalog.Descriptor {
	return catalog.Descriptor{
		ID:            string(q),
		Name:          string(q),
		URL:           "https://cdn.adaptik3d.com/" + string(q) + ".glb",
		FileSizeBytes: int64(sizeMB) * mb,
		Quality:       q,
	}
}

func snapWith(mbps, memGB float64, tier quality.GraphicsTier) device.Snapshot {
	return device.Snapshot{
		Network:  device.NetworkInfo{DownlinkMbps: mbps, Class: device.ClassForThroughput(mbps)},
		Hardware: device.HardwareInfo{MemoryGB: memGB, Cores: 8},
		Graphics: device.GraphicsInfo{Tier: tier},
	}
}

func TestDownloadTimeSeconds(t *testing.T) {
	// 10 MiB at 20 Mbps: 83.886 megabits / 20 = ~4.19 s.
	got := DownloadTimeSeconds(asset(quality.High, 10), snapWith(20, 8, quality.GraphicsMedium))
	if got < 4.19 || got > 4.20 {
		t.Errorf("DownloadTimeSeconds = %v, want ~4.194", got)
	}

	if !math.IsInf(DownloadTimeSeconds(asset(quality.High, 10), snapWith(0, 8, quality.GraphicsMedium)), 1) {
		t.Errorf("zero throughput should estimate infinite download")
	}

	// 10 million bytes at 20 Mbps is exactly 4 s, in the 75-point band.
	d := asset(quality.High, 0)
	d.FileSizeBytes = 10_000_000
	snap := snapWith(20, 8, quality.GraphicsMedium)
	if got := DownloadTimeSeconds(d, snap); got != 4 {
		t.Errorf("DownloadTimeSeconds = %v, want 4", got)
	}
	if got := networkScore(d, snap); got != 75 {
		t.Errorf("networkScore = %v, want 75", got)
	}
}

func TestProcessingTimeSeconds(t *testing.T) {
	tests := []struct {
		q    quality.Tier
		tier quality.GraphicsTier
		want float64
	}{
		{quality.Low, quality.GraphicsHigh, 0.25},
		{quality.Medium, quality.GraphicsMedium, 1.0},
		{quality.High, quality.GraphicsLow, 4.0},
		{quality.Ultra, quality.GraphicsHigh, 2.0},
		{quality.Ultra, quality.GraphicsLow, 8.0},
	}
	for _, tc := range tests {
		got := ProcessingTimeSeconds(asset(tc.q, 10), snapWith(10, 8, tc.tier))
		if got != tc.want {
			t.Errorf("ProcessingTimeSeconds(%s on %s) = %v, want %v", tc.q, tc.tier, got, tc.want)
		}
	}
}

func TestEstimatedMemoryMB(t *testing.T) {
	tests := []struct {
		q    quality.Tier
		want int
	}{
		{quality.Low, 15},
		{quality.Medium, 20},
		{quality.High, 30},
		{quality.Ultra, 40},
	}
	for _, tc := range tests {
		if got := EstimatedMemoryMB(asset(tc.q, 10)); got != tc.want {
			t.Errorf("EstimatedMemoryMB(%s, 10MB) = %d, want %d", tc.q, got, tc.want)
		}
	}
}

func TestPerformanceImpactFor(t *testing.T) {
	// 2 GB device: usable = 2*1024*0.7 = 1433.6 MB.
	snap := snapWith(10, 2, quality.GraphicsMedium)

	// ultra 200MB -> 800 MB estimated, ratio 0.56 -> high.
	if got := PerformanceImpactFor(asset(quality.Ultra, 200), snap); got != "high" {
		t.Errorf("impact = %s, want high", got)
	}
	// high 150MB -> 450 MB, ratio 0.31 -> medium.
	if got := PerformanceImpactFor(asset(quality.High, 150), snap); got != "medium" {
		t.Errorf("impact = %s, want medium", got)
	}
	// low 10MB -> 15 MB, ratio 0.01 -> low.
	if got := PerformanceImpactFor(asset(quality.Low, 10), snap); got != "low" {
		t.Errorf("impact = %s, want low", got)
	}
}

func TestNetworkScoreLadder(t *testing.T) {
	snap := snapWith(20, 8, quality.GraphicsMedium)
	tests := []struct {
		sizeMB int
		want   float64
	}{
		{4, 90},   // ~1.7 s
		{10, 75},  // ~4.2 s
		{20, 60},  // ~8.4 s
		{40, 40},  // ~16.8 s
		{100, 20}, // ~41.9 s
	}
	for _, tc := range tests {
		if got := networkScore(asset(quality.High, tc.sizeMB), snap); got != tc.want {
			t.Errorf("networkScore(%dMB @ 20Mbps) = %v, want %v", tc.sizeMB, got, tc.want)
		}
	}
}

func TestMemoryScoreLadder(t *testing.T) {
	// 4 GB device: usable = 2867.2 MB. Medium assets estimate size*2.
	snap := snapWith(10, 4, quality.GraphicsMedium)
	tests := []struct {
		sizeMB int
		want   float64
	}{
		{100, 90},  // ratio 0.07
		{200, 75},  // ratio 0.14
		{400, 60},  // ratio 0.28
		{700, 40},  // ratio 0.49
		{1000, 20}, // ratio 0.70
	}
	for _, tc := range tests {
		if got := memoryScore(asset(quality.Medium, tc.sizeMB), snap); got != tc.want {
			t.Errorf("memoryScore(%dMB) = %v, want %v", tc.sizeMB, got, tc.want)
		}
	}
}

func TestGraphicsScoreFit(t *testing.T) {
	tests := []struct {
		q    quality.Tier
		tier quality.GraphicsTier
		want float64
	}{
		{quality.Low, quality.GraphicsLow, 90},
		{quality.Low, quality.GraphicsHigh, 98},
		{quality.Medium, quality.GraphicsMedium, 80},
		{quality.High, quality.GraphicsLow, 30},
		{quality.Ultra, quality.GraphicsLow, 20},
		{quality.Ultra, quality.GraphicsHigh, 70},
	}
	for _, tc := range tests {
		got := graphicsScore(asset(tc.q, 10), snapWith(10, 8, tc.tier))
		if got != tc.want {
			t.Errorf("graphicsScore(%s on %s) = %v, want %v", tc.q, tc.tier, got, tc.want)
		}
	}

	// Unknown combinations fall back to neutral.
	if got := graphicsScore(asset("mystery", 10), snapWith(10, 8, quality.GraphicsMedium)); got != 50 {
		t.Errorf("unknown quality = %v, want 50", got)
	}
}

func TestBatteryScore(t *testing.T) {
	base := snapWith(10, 8, quality.GraphicsMedium)

	withBattery := func(level float64, charging bool) device.Snapshot {
		s := base
		s.Battery = &device.BatteryState{Level: level, Charging: charging}
		return s
	}

	if got := batteryScore(asset(quality.Ultra, 10), base); got != 80 {
		t.Errorf("no battery = %v, want 80", got)
	}
	if got := batteryScore(asset(quality.Ultra, 10), withBattery(0.1, true)); got != 80 {
		t.Errorf("charging = %v, want 80", got)
	}
	if got := batteryScore(asset(quality.Ultra, 10), withBattery(0.15, false)); got != 20 {
		t.Errorf("critical battery + heavy asset = %v, want 20", got)
	}
	if got := batteryScore(asset(quality.Ultra, 10), withBattery(0.4, false)); got != 40 {
		t.Errorf("low battery + heavy asset = %v, want 40", got)
	}
	if got := batteryScore(asset(quality.Low, 10), withBattery(0.25, false)); got != 60 {
		t.Errorf("low battery + light asset = %v, want 60", got)
	}
	if got := batteryScore(asset(quality.Low, 10), withBattery(0.9, false)); got != 85 {
		t.Errorf("healthy battery = %v, want 85", got)
	}
}

func TestDataSaverScore(t *testing.T) {
	snap := snapWith(10, 8, quality.GraphicsMedium)
	saver := Preferences{DataSaver: true}

	tests := []struct {
		sizeMB int
		prefs  Preferences
		want   float64
	}{
		{0, saver, 90}, // sub-MB treated below
		{4, saver, 70},
		{15, saver, 40},
		{50, saver, 20},
		{5, Preferences{}, 80},
		{30, Preferences{}, 70},
		{80, Preferences{}, 60},
		{200, Preferences{}, 50},
	}
	for _, tc := range tests {
		d := asset(quality.Medium, tc.sizeMB)
		if tc.sizeMB == 0 {
			d.FileSizeBytes = 512 * 1024
		}
		if got := dataSaverScore(d, snap, tc.prefs); got != tc.want {
			t.Errorf("dataSaverScore(%v bytes, saver=%v) = %v, want %v", d.FileSizeBytes, tc.prefs.DataSaver, got, tc.want)
		}
	}

	// The connection-level flag triggers the strict ladder too.
	strict := snap
	strict.Network.SaveData = true
	if got := dataSaverScore(asset(quality.Medium, 50), strict, Preferences{}); got != 20 {
		t.Errorf("connection saveData ignored: %v, want 20", got)
	}
}

func TestPreferenceScore(t *testing.T) {
	ultra := asset(quality.Ultra, 10)
	low := asset(quality.Low, 10)

	if got := preferenceScore(ultra, Preferences{}); got != 50 {
		t.Errorf("neutral = %v, want 50", got)
	}
	if got := preferenceScore(ultra, Preferences{PreferredQuality: quality.Ultra}); got != 80 {
		t.Errorf("preferred match = %v, want 80", got)
	}
	if got := preferenceScore(ultra, Preferences{PrioritizeQuality: true}); got != 90 {
		t.Errorf("quality priority = %v, want 90", got)
	}
	if got := preferenceScore(low, Preferences{PrioritizePerformance: true}); got != 90 {
		t.Errorf("performance priority = %v, want 90", got)
	}
	if got := preferenceScore(ultra, Preferences{ExcludedAssetIDs: []string{ultra.ID}}); got != 0 {
		t.Errorf("excluded = %v, want 0", got)
	}
}

func TestPreferenceScoreBothFlagsFavorsQuality(t *testing.T) {
	both := Preferences{PrioritizeQuality: true, PrioritizePerformance: true}

	// Only the quality bonus applies when both flags are set.
	if got := preferenceScore(asset(quality.Ultra, 10), both); got != 90 {
		t.Errorf("ultra with both flags = %v, want 90", got)
	}
	if got := preferenceScore(asset(quality.Low, 10), both); got != 60 {
		t.Errorf("low with both flags = %v, want 60", got)
	}
}

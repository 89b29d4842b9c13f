package device

import (
	"testing"

	"github.com/adaptik3d/adaptik/pkg/quality"
)

func TestClassForThroughput(t *testing.T) {
	tests := []struct {
		mbps float64
		want ConnectionClass
	}{
		{0.01, ClassSlow2G},
		{0.049, ClassSlow2G},
		{0.05, Class2G},
		{0.099, Class2G},
		{0.1, Class3G},
		{0.999, Class3G},
		{1, Class4G},
		{150, Class4G},
	}
	for _, tc := range tests {
		if got := ClassForThroughput(tc.mbps); got != tc.want {
			t.Errorf("ClassForThroughput(%v) = %s, want %s", tc.mbps, got, tc.want)
		}
	}
}

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score int
		want  quality.Tier
	}{
		{100, quality.Ultra},
		{80, quality.Ultra},
		{79, quality.High},
		{60, quality.High},
		{59, quality.Medium},
		{40, quality.Medium},
		{39, quality.Low},
		{0, quality.Low},
	}
	for _, tc := range tests {
		if got := TierForScore(tc.score); got != tc.want {
			t.Errorf("TierForScore(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestFinalizeBlend(t *testing.T) {
	snap := Snapshot{
		Network:  NetworkInfo{DownlinkMbps: 50, Class: Class4G},
		Hardware: HardwareInfo{MemoryGB: 8, Cores: 8},
		Graphics: GraphicsInfo{Tier: quality.GraphicsHigh},
		Display:  DisplayInfo{Width: 1920, Height: 1080},
	}
	snap.finalize()

	// 100*.30 + 50*.25 + 90*.30 + 25*.15 = 73.25
	if snap.Score != 73 {
		t.Errorf("Score = %d, want 73", snap.Score)
	}
	if snap.RecommendedTier != quality.High {
		t.Errorf("RecommendedTier = %s, want high", snap.RecommendedTier)
	}
}

func TestFinalizeClampsScore(t *testing.T) {
	snap := Snapshot{
		Network:  NetworkInfo{DownlinkMbps: 10000},
		Hardware: HardwareInfo{MemoryGB: 512, Cores: 64},
		Graphics: GraphicsInfo{Tier: quality.GraphicsHigh},
		Display:  DisplayInfo{Width: 7680, Height: 4320},
	}
	snap.finalize()
	if snap.Score < 0 || snap.Score > 100 {
		t.Errorf("Score = %d, out of [0,100]", snap.Score)
	}
	if snap.RecommendedTier != quality.Ultra {
		t.Errorf("RecommendedTier = %s, want ultra", snap.RecommendedTier)
	}
}

func TestEffectivelyCharging(t *testing.T) {
	var none *BatteryState
	if !none.EffectivelyCharging() {
		t.Errorf("nil battery should count as charging")
	}
	if !(&BatteryState{Level: 0.5, Charging: true}).EffectivelyCharging() {
		t.Errorf("charging battery should count as charging")
	}
	if (&BatteryState{Level: 0.5}).EffectivelyCharging() {
		t.Errorf("discharging battery should not count as charging")
	}
}

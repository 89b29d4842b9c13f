package device

import (
	"context"
	"testing"
	"time"

	"github.com/adaptik3d/adaptik/pkg/quality"
)

func TestProbeNeverFails(t *testing.T) {
	// No endpoints, no hints: every sub-probe falls back, Probe still
	// delivers a complete snapshot.
	p, err := NewProber(ProberConfig{Hints: &Hints{}, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	snap := p.Probe(context.Background())

	if snap.Network.Class == "" {
		t.Errorf("network group not filled")
	}
	if snap.Hardware.Cores < 1 || snap.Hardware.MemoryGB <= 0 {
		t.Errorf("hardware group not filled: %+v", snap.Hardware)
	}
	if snap.Graphics.Tier == "" {
		t.Errorf("graphics group not filled")
	}
	if snap.Display.Width == 0 || snap.Display.Height == 0 {
		t.Errorf("display group not filled: %+v", snap.Display)
	}
	if snap.Score < 0 || snap.Score > 100 {
		t.Errorf("Score = %d, out of [0,100]", snap.Score)
	}
	if !snap.RecommendedTier.Valid() {
		t.Errorf("RecommendedTier = %q, invalid", snap.RecommendedTier)
	}
	if snap.CapturedAt.IsZero() {
		t.Errorf("CapturedAt not set")
	}
}

func TestProbeUsesHints(t *testing.T) {
	hints := HintsFromJSON(`{
		"userAgent": "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		"network": {"downlink": 2, "rtt": 150},
		"memory": 6, "cores": 4,
		"gpu": {"v1": true, "v2": true, "renderer": "Apple GPU", "maxTextureSize": 8192, "precision": "high"},
		"screen": {"width": 390, "height": 844, "pixelRatio": 3, "colorDepth": 24},
		"battery": {"level": 0.35, "charging": false}
	}`)

	p, err := NewProber(ProberConfig{Hints: hints, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	snap := p.Probe(context.Background())

	if snap.Hardware.MemoryGB != 6 || snap.Hardware.Cores != 4 {
		t.Errorf("Hardware = %+v, hints not applied", snap.Hardware)
	}
	if snap.Graphics.APIVersion != 2 {
		t.Errorf("APIVersion = %d, want 2", snap.Graphics.APIVersion)
	}
	if snap.Display.Width != 390 || snap.Display.PixelRatio != 3 {
		t.Errorf("Display = %+v, hints not applied", snap.Display)
	}
	if snap.Battery == nil || snap.Battery.Level != 0.35 || snap.Battery.Charging {
		t.Errorf("Battery = %+v, hints not applied", snap.Battery)
	}
	if !snap.Mobile {
		t.Errorf("iPhone user agent should classify as mobile")
	}
}

func TestFillDefaults(t *testing.T) {
	var snap Snapshot
	fillDefaults(&snap)

	if snap.Network.DownlinkMbps != DefaultDownlinkMbps || snap.Network.Class != DefaultClass {
		t.Errorf("Network = %+v", snap.Network)
	}
	if snap.Hardware.MemoryGB != DefaultMemoryGB || snap.Hardware.Cores != DefaultCores {
		t.Errorf("Hardware = %+v", snap.Hardware)
	}
	if snap.Graphics.Tier != DefaultGraphicsTier || snap.Graphics.MaxTextureSize != DefaultMaxTextureSize {
		t.Errorf("Graphics = %+v", snap.Graphics)
	}
	if snap.Display.Width != DefaultWidth || snap.Display.ColorDepth != DefaultColorDepth {
		t.Errorf("Display = %+v", snap.Display)
	}
}

func TestFillDefaultsKeepsMeasuredGroups(t *testing.T) {
	snap := Snapshot{
		Network:  NetworkInfo{DownlinkMbps: 42, RTTMillis: 10, Class: Class4G, Measured: true},
		Hardware: HardwareInfo{MemoryGB: 32, Cores: 16},
		Graphics: GraphicsInfo{Tier: quality.GraphicsHigh},
		Display:  DisplayInfo{Width: 2560, Height: 1440, PixelRatio: 2, ColorDepth: 30},
	}
	fillDefaults(&snap)

	if snap.Network.DownlinkMbps != 42 {
		t.Errorf("measured network overwritten")
	}
	if snap.Hardware.MemoryGB != 32 {
		t.Errorf("measured hardware overwritten")
	}
	if snap.Graphics.Tier != quality.GraphicsHigh {
		t.Errorf("measured graphics overwritten")
	}
	if snap.Display.Width != 2560 {
		t.Errorf("measured display overwritten")
	}
}

package device

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pbnjay/memory"

	"github.com/adaptik3d/adaptik/pkg/whttp"
)

// Hardware and display probe defaults.
const (
	DefaultMemoryGB   = 4.0
	DefaultCores      = 4
	DefaultWidth      = 1920
	DefaultHeight     = 1080
	DefaultPixelRatio = 1.0
	DefaultColorDepth = 24
)

// ProberConfig configures a Prober. Zero values get sensible defaults.
type ProberConfig struct {
	// ProbeURLs are candidate endpoints for the timed bandwidth download,
	// tried in order. Placeholder entries are skipped.
	ProbeURLs []string

	// Hints is the host-reported capability document. Nil loads from the
	// environment.
	Hints *Hints

	Proxy     string
	Timeout   time.Duration // per-fetch timeout enforced by the HTTP client
	UserAgent string

	Log Logger // nil = no logging
}

// Prober gathers a Capability Snapshot. It is explicitly constructed and
// holds no process-wide state; callers own the instance and its cache.
type Prober struct {
	client    *retryablehttp.Client
	urls      []string
	hints     *Hints
	userAgent string
	log       Logger
}

// NewProber builds a Prober from cfg.
func NewProber(cfg ProberConfig) (*Prober, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	client, err := whttp.NewClient(whttp.ClientConfig{
		Proxy:    cfg.Proxy,
		Timeout:  timeout,
		RetryMax: 1,
	})
	if err != nil {
		return nil, err
	}

	hints := cfg.Hints
	if hints == nil {
		hints = LoadHints()
	}

	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}

	return &Prober{
		client:    client,
		urls:      cfg.ProbeURLs,
		hints:     hints,
		userAgent: cfg.UserAgent,
		log:       log,
	}, nil
}

// Probe runs the five sub-probes concurrently and assembles a Snapshot once
// all of them have settled. Sub-probe failures never propagate: each one
// independently falls back to its documented default, so Probe itself cannot
// fail.
func (p *Prober) Probe(ctx context.Context) Snapshot {
	snap := Snapshot{CapturedAt: time.Now()}

	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		defer p.recoverSubProbe("network")
		np := &networkProber{
			client:    p.client,
			urls:      p.urls,
			userAgent: p.userAgent,
			hints:     p.hints,
			log:       p.log,
		}
		snap.Network = np.measure(ctx)
	}()

	go func() {
		defer wg.Done()
		defer p.recoverSubProbe("hardware")
		snap.Hardware = p.hardwareProbe()
	}()

	go func() {
		defer wg.Done()
		defer p.recoverSubProbe("graphics")
		snap.Graphics = graphicsProbe(p.hints)
	}()

	go func() {
		defer wg.Done()
		defer p.recoverSubProbe("display")
		snap.Display = p.displayProbe()
	}()

	go func() {
		defer wg.Done()
		defer p.recoverSubProbe("battery")
		snap.Battery = batteryProbe(p.hints)
	}()

	wg.Wait()

	if ua, ok := p.hints.UserAgent(); ok {
		snap.Mobile = IsMobileUserAgent(ua)
	}

	fillDefaults(&snap)
	snap.finalize()
	return snap
}

// fillDefaults replaces zero-valued sub-probe results (a panicked sub-probe
// contributes nothing) with the documented defaults.
func fillDefaults(s *Snapshot) {
	if s.Network.Class == "" {
		s.Network = NetworkInfo{
			DownlinkMbps: DefaultDownlinkMbps,
			RTTMillis:    DefaultRTTMillis,
			Class:        DefaultClass,
		}
	}
	if s.Hardware.Cores < 1 {
		s.Hardware = HardwareInfo{MemoryGB: DefaultMemoryGB, Cores: DefaultCores}
	}
	if s.Graphics.Tier == "" {
		s.Graphics = GraphicsInfo{
			Tier:            DefaultGraphicsTier,
			MaxTextureSize:  DefaultMaxTextureSize,
			MaxViewportDims: [2]int{DefaultViewportWidth, DefaultViewportHeight},
			ShaderPrecision: DefaultShaderPrecision,
		}
	}
	if s.Display.Width == 0 || s.Display.Height == 0 {
		s.Display = DisplayInfo{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			PixelRatio: DefaultPixelRatio,
			ColorDepth: DefaultColorDepth,
		}
	}
}

// recoverSubProbe converts a sub-probe panic into its zero contribution so
// the settle-all join is never broken by one faulty source. The assembling
// code fills defaults for zero values.
func (p *Prober) recoverSubProbe(name string) {
	if r := recover(); r != nil {
		p.log.Warnf("%s probe panicked: %v", name, r)
	}
}

func (p *Prober) hardwareProbe() HardwareInfo {
	info := HardwareInfo{MemoryGB: DefaultMemoryGB, Cores: DefaultCores}

	if v, ok := p.hints.MemoryGB(); ok && v > 0 {
		info.MemoryGB = v
	} else if total := memory.TotalMemory(); total > 0 {
		info.MemoryGB = float64(total) / (1024 * 1024 * 1024)
	}

	if v, ok := p.hints.Cores(); ok && v >= 1 {
		info.Cores = v
	} else if n := runtime.NumCPU(); n >= 1 {
		info.Cores = n
	}

	return info
}

func (p *Prober) displayProbe() DisplayInfo {
	info := DisplayInfo{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		PixelRatio: DefaultPixelRatio,
		ColorDepth: DefaultColorDepth,
	}

	if w, ok := p.hints.ScreenWidth(); ok && w > 0 {
		info.Width = w
	}
	if h, ok := p.hints.ScreenHeight(); ok && h > 0 {
		info.Height = h
	}
	if r, ok := p.hints.PixelRatio(); ok && r >= 1 {
		info.PixelRatio = r
	}
	if d, ok := p.hints.ColorDepth(); ok && d > 0 {
		info.ColorDepth = d
	}

	return info
}

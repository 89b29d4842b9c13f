package device

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/adaptik3d/adaptik/pkg/whttp"
)

// Probe defaults, substituted whenever a sub-probe cannot deliver.
const (
	DefaultDownlinkMbps = 10.0
	DefaultRTTMillis    = 50.0
	DefaultClass        = Class4G

	// A measured downlink is never reported below this floor.
	MinDownlinkMbps = 0.1
)

var errNoUsableEndpoint = errors.New("no usable probe endpoint")

// networkProber measures real throughput by downloading a small payload from
// the first candidate endpoint that answers.
type networkProber struct {
	client    *retryablehttp.Client
	urls      []string
	userAgent string
	hints     *Hints
	log       Logger
}

// measure runs the sequential ordered attempt over candidate endpoints.
// Candidates are tried one at a time; only a failed or intercepted fetch
// moves the loop on. When every candidate fails it falls back to
// host-reported hints, then to the documented defaults.
func (np *networkProber) measure(ctx context.Context) NetworkInfo {
	for _, raw := range np.urls {
		if !usableProbeURL(raw) {
			np.log.Debugf("network probe: skipping placeholder endpoint %q", raw)
			continue
		}

		res, err := np.fetch(ctx, raw)
		if err != nil {
			np.log.Debugf("network probe: %s failed: %v", raw, err)
			continue
		}

		mbps := throughputMbps(res.BodyBytes, res.Elapsed.Seconds())
		latency := float64(res.TTFB.Milliseconds())

		info := NetworkInfo{
			DownlinkMbps: mbps,
			RTTMillis:    latency,
			Class:        ClassForThroughput(mbps),
			SaveData:     np.hints.SaveData(),
			Measured:     true,
		}

		// The OS/browser may know a worse round trip than one sample showed.
		if hintRTT, ok := np.hints.RTTMillis(); ok && hintRTT > info.RTTMillis {
			info.RTTMillis = hintRTT
		}

		np.log.Debugf("network probe: %s -> %.2f Mbps, %.0f ms ttfb (%d bytes)",
			raw, info.DownlinkMbps, latency, res.BodyBytes)
		return info
	}

	return np.fallback()
}

func (np *networkProber) fetch(ctx context.Context, rawURL string) (*whttp.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := whttp.TimedFetch(np.client, rawURL, np.userAgent)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	if res.BodyBytes == 0 || res.Elapsed <= 0 {
		return nil, errNoUsableEndpoint
	}
	if whttp.LooksLikeCaptivePortal(res) {
		return nil, errors.New("captive portal response")
	}
	return res, nil
}

// fallback builds NetworkInfo from hints where present, defaults otherwise.
func (np *networkProber) fallback() NetworkInfo {
	info := NetworkInfo{
		DownlinkMbps: DefaultDownlinkMbps,
		RTTMillis:    DefaultRTTMillis,
		Class:        DefaultClass,
		SaveData:     np.hints.SaveData(),
	}

	hinted := false
	if v, ok := np.hints.DownlinkMbps(); ok && v > 0 {
		info.DownlinkMbps = v
		info.Class = ClassForThroughput(v)
		hinted = true
	}
	if v, ok := np.hints.RTTMillis(); ok && v > 0 {
		info.RTTMillis = v
		hinted = true
	}
	if v, ok := np.hints.EffectiveType(); ok {
		info.Class = ConnectionClass(v)
		hinted = true
	}

	if hinted {
		np.log.Debugf("network probe: using host-reported hints")
	} else {
		np.log.Debugf("network probe: using defaults")
	}
	return info
}

// throughputMbps converts a timed download into megabits per second,
// floored at MinDownlinkMbps.
func throughputMbps(bodyBytes int64, seconds float64) float64 {
	if seconds <= 0 {
		return MinDownlinkMbps
	}
	mbps := float64(bodyBytes*8) / seconds / 1e6
	if mbps < MinDownlinkMbps {
		return MinDownlinkMbps
	}
	return mbps
}

// usableProbeURL filters out placeholder catalog entries that were never
// real endpoints (empty strings, bare paths, documentation domains).
func usableProbeURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".example") ||
		host == "example.com" || strings.HasSuffix(host, ".example.com") ||
		strings.Contains(host, "your-cdn") {
		return false
	}
	return true
}

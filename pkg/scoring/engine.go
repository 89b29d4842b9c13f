// Package scoring picks the best asset variant for a measured device. The
// engine is a pure computation over immutable inputs: same snapshot,
// descriptors, preferences and weights always produce the same
// Recommendation.
package scoring

import (
	"errors"
	"math"
	"sort"

	"github.com/adaptik3d/adaptik/pkg/catalog"
	"github.com/adaptik3d/adaptik/pkg/device"
	"github.com/adaptik3d/adaptik/pkg/quality"
)

// ErrNoEligibleAssets is returned when the eligibility filter removed every
// descriptor. Hosts should present this as "no suitable version for this
// device", not crash.
var ErrNoEligibleAssets = errors.New("no eligible assets for this device")

// Preferences enumerates every recognized user option. The zero value means
// "no preference" for every field.
type Preferences struct {
	PrioritizeQuality     bool         `json:"prioritizeQuality"`
	PrioritizePerformance bool         `json:"prioritizePerformance"`
	DataSaver             bool         `json:"dataSaver"`
	MaxLoadTimeSeconds    float64      `json:"maxLoadTimeSeconds"` // 0 = no limit
	PreferredQuality      quality.Tier `json:"preferredQuality"`   // "" = no preference
	ExcludedAssetIDs      []string     `json:"excludedAssetIds"`
	AutoApplyBest         bool         `json:"autoApplyBest"`
}

func (p Preferences) excluded(id string) bool {
	for _, e := range p.ExcludedAssetIDs {
		if e == id {
			return true
		}
	}
	return false
}

// Weights control how much each factor moves the final score. A zero field
// falls back to its default, so callers can override any subset.
type Weights struct {
	Network    float64 `json:"network"`
	Memory     float64 `json:"memory"`
	Graphics   float64 `json:"graphics"`
	Battery    float64 `json:"battery"`
	DataSaver  float64 `json:"dataSaver"`
	Preference float64 `json:"preference"`
}

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		Network:    0.25,
		Memory:     0.20,
		Graphics:   0.25,
		Battery:    0.10,
		DataSaver:  0.10,
		Preference: 0.10,
	}
}

func (w Weights) withDefaults() Weights {
	def := DefaultWeights()
	if w.Network == 0 {
		w.Network = def.Network
	}
	if w.Memory == 0 {
		w.Memory = def.Memory
	}
	if w.Graphics == 0 {
		w.Graphics = def.Graphics
	}
	if w.Battery == 0 {
		w.Battery = def.Battery
	}
	if w.DataSaver == 0 {
		w.DataSaver = def.DataSaver
	}
	if w.Preference == 0 {
		w.Preference = def.Preference
	}
	return w
}

// Recommendation is the engine's output: a ranked choice with rationale.
type Recommendation struct {
	AssetID              string               `json:"assetId"`
	Confidence           float64              `json:"confidence"` // 0..1
	Reasoning            []string             `json:"reasoning"`
	Alternatives         []catalog.Descriptor `json:"alternatives,omitempty"` // up to 3, best first
	EstimatedLoadSeconds float64              `json:"estimatedLoadSeconds"`
	EstimatedMemoryMB    int                  `json:"estimatedMemoryMB"`
	PerformanceImpact    string               `json:"performanceImpact"` // low|medium|high
	Warnings             []string             `json:"warnings,omitempty"`
	Benefits             []string             `json:"benefits,omitempty"`
}

// Engine scores descriptors against a snapshot. Construct one per catalog
// consumer; it holds no mutable state beyond its weights.
type Engine struct {
	weights Weights
}

// NewEngine builds an engine. A nil weights pointer uses the defaults;
// zero fields in a non-nil Weights fall back per field.
func NewEngine(weights *Weights) *Engine {
	w := DefaultWeights()
	if weights != nil {
		w = weights.withDefaults()
	}
	return &Engine{weights: w}
}

// Eligible applies the hard-requirement gate. Missing requirement fields
// impose no constraint.
func Eligible(d catalog.Descriptor, snap device.Snapshot) bool {
	m := d.MinReqs
	if m == nil {
		return true
	}

	if m.NetworkMbps > 0 && snap.Network.DownlinkMbps < m.NetworkMbps {
		return false
	}
	if m.MemoryGB > 0 && snap.Hardware.MemoryGB < m.MemoryGB {
		return false
	}
	if m.GPUTier.Valid() && snap.Graphics.Tier.Rank() < m.GPUTier.Rank() {
		return false
	}
	if m.APIVersion > 0 && snap.Graphics.APIVersion < m.APIVersion {
		return false
	}

	return true
}

type scored struct {
	desc  catalog.Descriptor
	score float64
}

// Recommend filters, scores and ranks the catalog for this device.
func (e *Engine) Recommend(snap device.Snapshot, descriptors []catalog.Descriptor, prefs Preferences) (*Recommendation, error) {
	var ranked []scored
	for _, d := range descriptors {
		if !Eligible(d, snap) {
			continue
		}
		ranked = append(ranked, scored{desc: d, score: e.Score(d, snap, prefs)})
	}

	if len(ranked) == 0 {
		return nil, ErrNoEligibleAssets
	}

	// Excluded assets rank behind every non-excluded one regardless of
	// score, then highest score first; ties broken by id so identical
	// inputs always yield identical output.
	sort.Slice(ranked, func(i, j int) bool {
		exI, exJ := prefs.excluded(ranked[i].desc.ID), prefs.excluded(ranked[j].desc.ID)
		if exI != exJ {
			return !exI
		}
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].desc.ID < ranked[j].desc.ID
	})

	winner := ranked[0]

	rec := &Recommendation{
		AssetID:              winner.desc.ID,
		Confidence:           winner.score / 100,
		EstimatedLoadSeconds: estimatedLoadSeconds(winner.desc, snap),
		EstimatedMemoryMB:    EstimatedMemoryMB(winner.desc),
		PerformanceImpact:    PerformanceImpactFor(winner.desc, snap),
	}

	for _, alt := range ranked[1:] {
		if len(rec.Alternatives) == 3 {
			break
		}
		rec.Alternatives = append(rec.Alternatives, alt.desc)
	}

	rec.Reasoning = buildReasoning(winner.desc, snap, prefs, rec)
	rec.Warnings = buildWarnings(winner.desc, snap, prefs, rec)
	if origin, ok := catalog.RegisteredDomain(winner.desc.URL); ok {
		if main, ok := dominantOrigin(ranked); ok && origin != main {
			rec.Warnings = append(rec.Warnings, "asset is served from a third-party origin")
		}
	}
	rec.Benefits = buildBenefits(winner.desc, snap, prefs, rec)

	return rec, nil
}

// Score computes one descriptor's final score: base 50 shifted by each
// factor's deviation from neutral, weighted, clamped to [0,100] and rounded.
func (e *Engine) Score(d catalog.Descriptor, snap device.Snapshot, prefs Preferences) float64 {
	score := 50.0
	score += (networkScore(d, snap) - 50) * e.weights.Network
	score += (memoryScore(d, snap) - 50) * e.weights.Memory
	score += (graphicsScore(d, snap) - 50) * e.weights.Graphics
	score += (batteryScore(d, snap) - 50) * e.weights.Battery
	score += (dataSaverScore(d, snap, prefs) - 50) * e.weights.DataSaver
	score += (preferenceScore(d, prefs) - 50) * e.weights.Preference
	return math.Round(clamp(score, 0, 100))
}

// estimatedLoadSeconds is download plus processing, to one decimal.
func estimatedLoadSeconds(d catalog.Descriptor, snap device.Snapshot) float64 {
	total := DownloadTimeSeconds(d, snap) + ProcessingTimeSeconds(d, snap)
	if math.IsInf(total, 1) {
		return math.Inf(1)
	}
	return math.Round(total*10) / 10
}

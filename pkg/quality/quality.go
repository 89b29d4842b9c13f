// Package quality holds the tier vocabulary shared by the device prober,
// the asset catalog and the scoring engine.
package quality

import "strings"

// Tier is a declared asset quality or a device's recommended quality level.
type Tier string

const (
	Low    Tier = "low"
	Medium Tier = "medium"
	High   Tier = "high"
	Ultra  Tier = "ultra"
)

var tierRanks = map[Tier]int{
	Low:    0,
	Medium: 1,
	High:   2,
	Ultra:  3,
}

// Rank returns the ordering index of the tier, -1 for unknown values.
func (t Tier) Rank() int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return -1
}

// Valid reports whether the tier is one of the four recognized values.
func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// ParseTier normalizes a raw string into a Tier. The boolean is false for
// anything outside the recognized set.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// GraphicsTier is a device's coarse graphics capability class. Unlike asset
// quality there is no "ultra" device class.
type GraphicsTier string

const (
	GraphicsLow    GraphicsTier = "low"
	GraphicsMedium GraphicsTier = "medium"
	GraphicsHigh   GraphicsTier = "high"
)

var graphicsRanks = map[GraphicsTier]int{
	GraphicsLow:    0,
	GraphicsMedium: 1,
	GraphicsHigh:   2,
}

// Rank returns the ordering index of the graphics tier, -1 for unknown values.
func (g GraphicsTier) Rank() int {
	if r, ok := graphicsRanks[g]; ok {
		return r
	}
	return -1
}

// Valid reports whether the graphics tier is low, medium or high.
func (g GraphicsTier) Valid() bool {
	return g.Rank() >= 0
}

// ParseGraphicsTier normalizes a raw string into a GraphicsTier.
func ParseGraphicsTier(s string) (GraphicsTier, bool) {
	g := GraphicsTier(strings.ToLower(strings.TrimSpace(s)))
	return g, g.Valid()
}

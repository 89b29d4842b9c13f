// Package catalog models the selectable 3D asset variants: descriptors,
// validation, JSON catalog files and the sqlite-backed registry.
package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/adaptik3d/adaptik/pkg/quality"
)

// Placement is 3D scene placement metadata. The selection core passes it
// through untouched; only the rendering collaborator interprets it.
type Placement struct {
	Position [3]float64 `json:"position"`
	Scale    float64    `json:"scale"`
}

// MinRequirements are optional hard thresholds a device must meet before a
// descriptor is even scored. A zero field imposes no constraint.
type MinRequirements struct {
	NetworkMbps float64              `json:"networkMbps,omitempty"`
	MemoryGB    float64              `json:"memoryGB,omitempty"`
	GPUTier     quality.GraphicsTier `json:"gpuTier,omitempty"`
	APIVersion  int                  `json:"apiVersion,omitempty"`
	StorageMB   float64              `json:"storageMB,omitempty"`
}

// Descriptor describes one selectable model variant.
type Descriptor struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	URL           string           `json:"url"`
	FileSizeBytes int64            `json:"fileSize"`
	Quality       quality.Tier     `json:"quality"`
	Description   string           `json:"description,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	Placement     *Placement       `json:"placement,omitempty"`
	MinReqs       *MinRequirements `json:"minRequirements,omitempty"`
}

// FileSizeMB returns the descriptor's size in megabytes.
func (d Descriptor) FileSizeMB() float64 {
	return float64(d.FileSizeBytes) / (1024 * 1024)
}

// Validate checks the required descriptor fields and returns every problem
// found as a human-readable message. An empty slice means the descriptor is
// safe to register. Callers must validate before handing descriptors to the
// scoring engine; scoring malformed descriptors is undefined.
func Validate(d Descriptor) []string {
	var errs []string

	if strings.TrimSpace(d.ID) == "" {
		errs = append(errs, "id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(d.URL) == "" {
		errs = append(errs, "url is required")
	}
	if d.FileSizeBytes <= 0 {
		errs = append(errs, "fileSize must be positive")
	}
	if !d.Quality.Valid() {
		errs = append(errs, fmt.Sprintf("quality %q is not one of low, medium, high, ultra", string(d.Quality)))
	}

	return errs
}

// RegisteredDomain returns the registrable domain (eTLD+1) of the
// descriptor's locator, e.g. "cdn.assets.example.co.uk" -> "example.co.uk".
// Used to group catalog entries by origin and to flag third-party hosting.
func RegisteredDomain(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, ".") {
		return "", false
	}

	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return "", false
	}
	return domain, true
}

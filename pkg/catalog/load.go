package catalog

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/adaptik3d/adaptik/pkg/quality"
)

// LoadFile reads a catalog JSON document from disk. The document is either a
// bare array of descriptors or an object with an "assets" array:
//
//	{"assets": [{"id": "robot-high", "name": "...", "url": "...",
//	             "fileSize": 8388608, "quality": "high",
//	             "minRequirements": {"networkMbps": 5}}, ...]}
//
// Descriptors are parsed leniently; Validate decides what is acceptable.
func LoadFile(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a catalog JSON document.
func Parse(data []byte) ([]Descriptor, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("catalog is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	list := root
	if !root.IsArray() {
		list = root.Get("assets")
		if !list.IsArray() {
			return nil, fmt.Errorf(`catalog must be an array or an object with an "assets" array`)
		}
	}

	var out []Descriptor
	for _, item := range list.Array() {
		out = append(out, parseDescriptor(item))
	}
	return out, nil
}

func parseDescriptor(item gjson.Result) Descriptor {
	// ParseTier normalizes case; an unrecognized value is kept as-is so
	// Validate can report it.
	tier, _ := quality.ParseTier(item.Get("quality").String())

	d := Descriptor{
		ID:            item.Get("id").String(),
		Name:          item.Get("name").String(),
		URL:           item.Get("url").String(),
		FileSizeBytes: item.Get("fileSize").Int(),
		Quality:       tier,
		Description:   item.Get("description").String(),
	}

	for _, t := range item.Get("tags").Array() {
		d.Tags = append(d.Tags, t.String())
	}

	if p := item.Get("placement"); p.Exists() {
		place := &Placement{Scale: p.Get("scale").Float()}
		pos := p.Get("position").Array()
		for i := 0; i < len(pos) && i < 3; i++ {
			place.Position[i] = pos[i].Float()
		}
		d.Placement = place
	}

	if m := item.Get("minRequirements"); m.Exists() {
		gpuTier, _ := quality.ParseGraphicsTier(m.Get("gpuTier").String())
		d.MinReqs = &MinRequirements{
			NetworkMbps: m.Get("networkMbps").Float(),
			MemoryGB:    m.Get("memoryGB").Float(),
			GPUTier:     gpuTier,
			APIVersion:  int(m.Get("apiVersion").Int()),
			StorageMB:   m.Get("storageMB").Float(),
		}
	}

	return d
}

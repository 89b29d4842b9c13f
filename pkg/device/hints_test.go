package device

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHintsFromJSONInvalid(t *testing.T) {
	h := HintsFromJSON("{not json")
	if _, ok := h.MemoryGB(); ok {
		t.Errorf("invalid JSON should yield empty hints")
	}
}

func TestHintsAbsentFields(t *testing.T) {
	h := HintsFromJSON(`{"memory": 8}`)
	if v, ok := h.MemoryGB(); !ok || v != 8 {
		t.Errorf("MemoryGB = %v, %v", v, ok)
	}
	if _, ok := h.Cores(); ok {
		t.Errorf("absent field should report !ok")
	}
	if h.GPUPresent() {
		t.Errorf("no gpu section should mean no adapter")
	}
	if h.SaveData() {
		t.Errorf("absent saveData should be false")
	}
}

func TestHintsNilReceiver(t *testing.T) {
	var h *Hints
	if _, ok := h.DownlinkMbps(); ok {
		t.Errorf("nil hints must be usable")
	}
	if h.GPUPresent() || h.BatteryPresent() {
		t.Errorf("nil hints must report nothing present")
	}
}

func TestLoadHintsFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.json")
	if err := os.WriteFile(path, []byte(`{"cores": 12}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(HintsEnvVar, "@"+path)

	h := LoadHints()
	if v, ok := h.Cores(); !ok || v != 12 {
		t.Errorf("Cores = %v, %v, want 12 from file", v, ok)
	}
}

func TestLoadHintsInlineAndUnset(t *testing.T) {
	t.Setenv(HintsEnvVar, `{"memory": 16}`)
	if v, ok := LoadHints().MemoryGB(); !ok || v != 16 {
		t.Errorf("MemoryGB = %v, %v, want inline 16", v, ok)
	}

	t.Setenv(HintsEnvVar, "")
	if _, ok := LoadHints().MemoryGB(); ok {
		t.Errorf("unset env should yield empty hints")
	}

	t.Setenv(HintsEnvVar, "@/nonexistent/hints.json")
	if _, ok := LoadHints().MemoryGB(); ok {
		t.Errorf("unreadable file should yield empty hints")
	}
}

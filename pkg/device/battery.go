package device

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const powerSupplyDir = "/sys/class/power_supply"

// batteryProbe returns the battery state, preferring host-reported hints and
// falling back to the platform power-supply interface. A nil result means no
// battery was found; downstream logic treats that as "effectively charging".
func batteryProbe(hints *Hints) *BatteryState {
	if hints.BatteryPresent() {
		level, ok := hints.BatteryLevel()
		if !ok || level < 0 || level > 1 {
			return nil
		}
		return &BatteryState{Level: level, Charging: hints.BatteryCharging()}
	}
	return sysfsBattery(powerSupplyDir)
}

// sysfsBattery reads the first BAT* entry under the given directory.
// Any read failure yields nil (no battery constraint).
func sysfsBattery(dir string) *BatteryState {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "BAT") {
			continue
		}
		base := filepath.Join(dir, e.Name())

		capRaw, err := os.ReadFile(filepath.Join(base, "capacity"))
		if err != nil {
			continue
		}
		pct, err := strconv.Atoi(strings.TrimSpace(string(capRaw)))
		if err != nil || pct < 0 || pct > 100 {
			continue
		}

		charging := true
		if statusRaw, err := os.ReadFile(filepath.Join(base, "status")); err == nil {
			status := strings.TrimSpace(string(statusRaw))
			charging = status != "Discharging"
		}

		return &BatteryState{Level: float64(pct) / 100, Charging: charging}
	}

	return nil
}

package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPowerSupplyDir is where Linux exposes batteries
const DefaultPowerSupplyDir = "/sys/class/power_supply"

// BatteryConstraint is satisfied unless a discharging battery is below MinPercent.
// Devices without a battery always satisfy it.
type BatteryConstraint struct {
	MinPercent int
	Dir        string
}

// NewBatteryConstraint creates a constraint reading DefaultPowerSupplyDir
func NewBatteryConstraint(minPercent int) *BatteryConstraint {
	return &BatteryConstraint{MinPercent: minPercent, Dir: DefaultPowerSupplyDir}
}

// Satisfied implements Constraint
func (b *BatteryConstraint) Satisfied() (bool, string) {
	if b.MinPercent <= 0 {
		return true, ""
	}

	supplies, err := os.ReadDir(b.Dir)
	if err != nil {
		return true, ""
	}

	for _, supply := range supplies {
		path := filepath.Join(b.Dir, supply.Name())
		if readAttr(path, "type") != "Battery" {
			continue
		}
		if readAttr(path, "status") == "Charging" {
			continue
		}

		capacity, err := strconv.Atoi(readAttr(path, "capacity"))
		if err != nil {
			continue
		}
		if capacity < b.MinPercent {
			return false, fmt.Sprintf("battery %s at %d%%", supply.Name(), capacity)
		}
	}

	return true, ""
}

func readAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

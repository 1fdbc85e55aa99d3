package sensor

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ParseAirportSSID extracts the network name from `airport -I` output.
func ParseAirportSSID(out string) (string, error) {
	for line := range strings.Lines(out) {
		// " SSID:" skips the BSSID line.
		_, after, found := strings.Cut(line, " SSID:")
		if !found {
			continue
		}

		if ssid := strings.TrimSpace(after); ssid != "" {
			return ssid, nil
		}
	}

	return "", ErrNoValue
}

// ParseBluetoothJSON extracts connected device names from
// `system_profiler SPBluetoothDataType -json` output.
func ParseBluetoothJSON(data []byte) ([]string, error) {
	var report struct {
		Items []struct {
			Connected []map[string]json.RawMessage `json:"device_connected"`
		} `json:"SPBluetoothDataType"`
	}

	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode bluetooth report: %w", err)
	}

	devices := []string{}

	for _, item := range report.Items {
		for _, group := range item.Connected {
			// Map order is random; keep the result stable.
			names := make([]string, 0, len(group))
			for name := range group {
				names = append(names, name)
			}

			slices.Sort(names)
			devices = append(devices, names...)
		}
	}

	return devices, nil
}

// ParseBatteryPercent extracts the charge percentage from `pmset -g batt` output.
func ParseBatteryPercent(out string) (int, error) {
	for line := range strings.Lines(out) {
		before, _, found := strings.Cut(line, "%")
		if !found {
			continue
		}

		fields := strings.Fields(before)
		if len(fields) == 0 {
			continue
		}

		percent, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			continue
		}

		return percent, nil
	}

	return 0, ErrNoValue
}

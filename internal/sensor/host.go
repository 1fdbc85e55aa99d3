package sensor

import (
	"context"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// fallbackDeviceLabel is used when the host name cannot be read.
const fallbackDeviceLabel = "this device"

// DeviceLabel returns override when set, otherwise the host name.
func DeviceLabel(ctx context.Context, override string) string {
	if label := strings.TrimSpace(override); label != "" {
		return label
	}

	if info, err := host.InfoWithContext(ctx); err == nil && info.Hostname != "" {
		return info.Hostname
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}

	return fallbackDeviceLabel
}

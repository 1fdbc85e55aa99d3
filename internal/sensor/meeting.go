package sensor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/activity-monitor/internal/config"
)

// GenericMeetingName is reported when a conferencing process is running but
// matches none of the named apps.
const GenericMeetingName = "Video Meeting"

// ProcessLister returns the executable names of the running processes.
type ProcessLister func() ([]string, error)

// MeetingDetector finds a running conferencing app in the process table.
type MeetingDetector struct {
	pattern *regexp.Regexp
	apps    []config.MeetingApp
	list    ProcessLister
}

// NewMeetingDetector compiles pattern case-insensitively. A nil list uses the
// operating system process table.
func NewMeetingDetector(pattern string, apps []config.MeetingApp, list ProcessLister) (*MeetingDetector, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile meeting pattern: %w", err)
	}

	if list == nil {
		list = SystemProcesses
	}

	return &MeetingDetector{
		pattern: re,
		apps:    apps,
		list:    list,
	}, nil
}

// Detect returns the display name of the running conferencing app, or "".
func (d *MeetingDetector) Detect(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	executables, err := d.list()
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}

	return d.Match(executables), nil
}

// Match picks the conferencing app among executables. Named apps are tried in
// order; the generic name covers any other pattern match.
func (d *MeetingDetector) Match(executables []string) string {
	running := false

	for _, exe := range executables {
		if d.pattern.MatchString(exe) {
			running = true
			break
		}
	}

	if !running {
		return ""
	}

	for _, app := range d.apps {
		needle := strings.ToLower(strings.ReplaceAll(app.Process, " ", ""))
		if needle == "" {
			continue
		}

		for _, exe := range executables {
			if strings.Contains(strings.ToLower(exe), needle) {
				return app.Name
			}
		}
	}

	return GenericMeetingName
}

// SystemProcesses lists the executables of every running process.
func SystemProcesses() ([]string, error) {
	processes, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(processes))
	for _, p := range processes {
		names = append(names, p.Executable())
	}

	return names, nil
}

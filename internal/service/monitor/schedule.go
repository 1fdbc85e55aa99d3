package monitor

import (
	"time"

	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
)

// schedule tracks when each slow signal is next due.
type schedule struct {
	next map[domain.Signal]time.Time
}

func newSchedule() *schedule {
	return &schedule{next: make(map[domain.Signal]time.Time)}
}

// due reports whether signal should be sampled at now and, if so, books the
// next sample one interval later. A signal never sampled is due immediately.
// A booking more than one interval ahead means the clock went backwards and
// is discarded.
func (s *schedule) due(signal domain.Signal, now time.Time, every time.Duration) bool {
	next, ok := s.next[signal]
	if ok && now.Before(next) && next.Sub(now) <= every {
		return false
	}

	s.next[signal] = now.Add(every)

	return true
}

package detector

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreSet holds application names, or glob patterns, that are never reported.
type IgnoreSet struct {
	patterns []string
}

// NewIgnoreSet validates every pattern.
func NewIgnoreSet(patterns []string) (*IgnoreSet, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}

	return &IgnoreSet{patterns: append([]string(nil), patterns...)}, nil
}

// Contains reports whether app is excluded from app and window events.
func (s *IgnoreSet) Contains(app string) bool {
	if s == nil {
		return false
	}

	for _, p := range s.patterns {
		if p == app {
			return true
		}

		if ok, err := doublestar.Match(p, app); err == nil && ok {
			return true
		}
	}

	return false
}

// Package apikey holds the static credential set the service authenticates
// against. Keys come from the environment at startup and never change while
// the process runs, which avoids losing state on restart-happy hosting.
package apikey

import (
	"crypto/subtle"
	"log/slog"
)

// Store answers membership queries against the configured key set.
// It is immutable after New and safe for concurrent use.
type Store struct {
	primary string
	keys    []string

	debugLog bool
	logger   *slog.Logger
}

func New(primary string, fallbacks []string, logger *slog.Logger) *Store {
	s := &Store{
		primary: primary,
		logger:  logger,
	}
	if primary != "" {
		s.keys = append(s.keys, primary)
	}
	for _, k := range fallbacks {
		if k != "" {
			s.keys = append(s.keys, k)
		}
	}
	s.logger.Info("API key store initialized", "key_count", len(s.keys))
	return s
}

// EnableDebugLogging turns on logging of a short prefix of submitted keys.
// Off by default: even a partial key in logs is an exposure.
func (s *Store) EnableDebugLogging() {
	s.debugLog = true
}

// Validate reports whether candidate is one of the configured keys.
// Empty candidates are rejected without a lookup. Comparison is
// constant-time per key to avoid a timing side channel.
func (s *Store) Validate(candidate string) bool {
	if candidate == "" {
		return false
	}

	if s.debugLog {
		s.logger.Debug("validating API key",
			"key_prefix", keyPrefix(candidate),
			"key_count", len(s.keys),
		)
	}

	valid := false
	for _, k := range s.keys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(k)) == 1 {
			valid = true
		}
	}
	return valid
}

// HasAny reports whether at least one key is configured.
func (s *Store) HasAny() bool {
	return len(s.keys) > 0
}

// Count returns the number of configured keys.
func (s *Store) Count() int {
	return len(s.keys)
}

// Primary returns the primary key and whether one is set.
func (s *Store) Primary() (string, bool) {
	return s.primary, s.primary != ""
}

func keyPrefix(key string) string {
	if len(key) > 8 {
		return key[:8] + "..."
	}
	return key
}

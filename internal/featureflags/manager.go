// Package featureflags evaluates runtime feature flags for gradual rollouts.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flag names used by the API.
const (
	FlagSMTPMail        = "smtp_mail"
	FlagPostImageUpload = "post_image_upload"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "smtp_mail=on,post_image_upload=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given member.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic member rollout, e.g. 25%)
func (m *Manager) Enabled(name string, memberID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if strings.HasSuffix(value, "%") {
		pctRaw := strings.TrimSuffix(value, "%")
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return false
		}
		if pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if memberID == 0 {
			return false
		}
		return rolloutBucket(name, memberID) < pct
	}

	return false
}

// EnabledOrMissing treats an unconfigured flag as enabled. Used for flags
// that gate existing behavior, so an empty FEATURE_FLAGS changes nothing.
func (m *Manager) EnabledOrMissing(name string, memberID uint) bool {
	if m == nil {
		return true
	}
	if _, ok := m.flags[normalize(name)]; !ok {
		return true
	}
	return m.Enabled(name, memberID)
}

// Snapshot returns evaluated flag status for one member.
func (m *Manager) Snapshot(memberID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, memberID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, memberID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), memberID)))
	return int(h.Sum32() % 100)
}

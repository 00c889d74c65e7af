// Package featureflags evaluates the FEATURE_FLAGS setting.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags read by the API.
const (
	// StrictSignup applies the username and password policy on registration.
	StrictSignup = "strict_signup"
	// PostCache serves single-post reads through the Redis cache.
	PostCache = "post_cache"
)

// Manager evaluates flags from a comma-separated list such as
// "strict_signup=on,post_cache=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses raw, skipping malformed entries.
func NewManager(raw string) *Manager {
	flags := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		flags[key] = value
	}
	return &Manager{flags: flags}
}

// Enabled reports whether name is on for userID. Values are on/true/1,
// off/false/0, or N% for a deterministic per-user rollout; anonymous callers
// (userID 0) are outside every partial rollout.
func (m *Manager) Enabled(name string, userID uint) bool {
	key := ""
	if userID != 0 {
		key = strconv.FormatUint(uint64(userID), 10)
	}
	return m.EnabledFor(name, key)
}

// EnabledFor is Enabled with the rollout bucket picked by an arbitrary key,
// such as a signup email or a post id. An empty key is outside every partial
// rollout.
func (m *Manager) EnabledFor(name, key string) bool {
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

	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil || !strings.HasSuffix(value, "%") {
		return false
	}
	switch {
	case pct <= 0:
		return false
	case pct >= 100:
		return true
	case key == "":
		return false
	}
	return bucket(name, key) < pct
}

// Snapshot returns every configured flag evaluated for userID.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name, key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + key))
	return int(h.Sum32() % 100)
}

// Package auth issues and verifies the signed bearer tokens that identify
// callers of the API.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"inkwell/internal/config"

	"gopkg.in/yaml.v3"
)

// minSecretLength is the shortest HMAC secret accepted for any key.
const minSecretLength = 16

// Key is one named HMAC signing secret.
type Key struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

// Keyring holds the active signing key plus retired keys that are still
// accepted for verification.
type Keyring struct {
	active Key
	keys   map[string][]byte
}

// NewKeyring builds a keyring that signs with active and also verifies
// tokens signed by any of retired.
func NewKeyring(active Key, retired ...Key) (*Keyring, error) {
	k := &Keyring{active: active, keys: make(map[string][]byte, len(retired)+1)}
	for _, key := range append([]Key{active}, retired...) {
		if strings.TrimSpace(key.ID) == "" {
			return nil, errors.New("keyring: key id is required")
		}
		if len(key.Secret) < minSecretLength {
			return nil, fmt.Errorf("keyring: secret for key %q must be at least %d characters", key.ID, minSecretLength)
		}
		if _, dup := k.keys[key.ID]; dup {
			return nil, fmt.Errorf("keyring: duplicate key id %q", key.ID)
		}
		k.keys[key.ID] = []byte(key.Secret)
	}
	return k, nil
}

// Active returns the key new tokens are signed with.
func (k *Keyring) Active() Key {
	return k.active
}

// Lookup returns the secret for id.
func (k *Keyring) Lookup(id string) ([]byte, bool) {
	secret, ok := k.keys[id]
	return secret, ok
}

type keyringFile struct {
	Active string `yaml:"active"`
	Keys   []Key  `yaml:"keys"`
}

// ParseKeyring decodes a YAML keyring document:
//
//	active: 2026-10
//	keys:
//	  - id: 2026-10
//	    secret: ...
//	  - id: 2026-04
//	    secret: ...
func ParseKeyring(data []byte) (*Keyring, error) {
	var doc keyringFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("keyring: decode: %w", err)
	}
	if doc.Active == "" {
		return nil, errors.New("keyring: active key id is required")
	}

	var (
		active  *Key
		retired []Key
	)
	for i := range doc.Keys {
		if doc.Keys[i].ID == doc.Active {
			active = &doc.Keys[i]
			continue
		}
		retired = append(retired, doc.Keys[i])
	}
	if active == nil {
		return nil, fmt.Errorf("keyring: active key %q not listed", doc.Active)
	}
	return NewKeyring(*active, retired...)
}

// LoadKeyringFile reads and parses the keyring at path.
func LoadKeyringFile(path string) (*Keyring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keyring: read %s: %w", path, err)
	}
	return ParseKeyring(data)
}

// KeyringFromConfig prefers JWT_KEYRING_FILE and falls back to the single
// JWT_SECRET/JWT_KEY_ID pair.
func KeyringFromConfig(cfg *config.Config) (*Keyring, error) {
	if cfg.JWTKeyringFile != "" {
		return LoadKeyringFile(cfg.JWTKeyringFile)
	}
	id := cfg.JWTKeyID
	if id == "" {
		id = "default"
	}
	return NewKeyring(Key{ID: id, Secret: cfg.JWTSecret})
}

package apikey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Config carries statically provisioned API keys. Each entry has the form
// "userID:login:keyID:bcryptHash" where userID is a UUID and bcryptHash is
// the bcrypt digest of the key secret.
type Config struct {
	Keys []string `env:"APIKEY_KEYS" envSeparator:","`
}

// NewFromConfig builds a keyring from statically provisioned entries.
func NewFromConfig(cfg Config) (*Keyring, error) {
	k := NewKeyring()

	for _, raw := range cfg.Keys {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		parts := strings.SplitN(raw, ":", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("apikey: malformed key entry %q: %w", raw, ErrMalformedConfig)
		}

		id, err := uuid.Parse(parts[0])
		if err != nil {
			return nil, fmt.Errorf("apikey: invalid user id in %q: %w", raw, ErrMalformedConfig)
		}

		k.Register(parts[2], User{ID: id, Login: parts[1]}, []byte(parts[3]))
	}

	return k, nil
}

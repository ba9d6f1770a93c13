package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SecretKeys are the env variables config.Load requires to be random
var SecretKeys = []string{"JWT_SECRET", "JWT_REFRESH_SECRET"}

// MinSecretBytes keeps generated HMAC keys at 256 bits or more
const MinSecretBytes = 32

// EnvSecret is one generated KEY=value pair
type EnvSecret struct {
	Key   string
	Value string
}

// Line renders the pair for a .env file
func (s EnvSecret) Line() string {
	return fmt.Sprintf("%s=%s", s.Key, s.Value)
}

// GenerateSecret returns n random bytes hex encoded
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateEnvSecrets returns a distinct secret for every key, in order.
// Sizes below MinSecretBytes are raised to it.
func GenerateEnvSecrets(n int, keys ...string) ([]EnvSecret, error) {
	if n < MinSecretBytes {
		n = MinSecretBytes
	}
	if len(keys) == 0 {
		keys = SecretKeys
	}

	seen := make(map[string]bool, len(keys))
	secrets := make([]EnvSecret, 0, len(keys))
	for _, key := range keys {
		if seen[key] {
			return nil, fmt.Errorf("duplicate secret key %s", key)
		}
		seen[key] = true

		value, err := GenerateSecret(n)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", key, err)
		}
		secrets = append(secrets, EnvSecret{Key: key, Value: value})
	}
	return secrets, nil
}

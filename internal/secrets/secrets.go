package secrets

import (
	"fmt"
	"strings"

	"github.com/fernet/fernet-go"

	"marketfetch/internal/apperrors"
)

// SealedPrefix marks a credential value as fernet-encrypted. Values
// without the prefix pass through Reveal unchanged, so plaintext keys in
// the environment keep working.
const SealedPrefix = "sealed:"

// Sealer opens (and seals) provider credentials with a fernet key. A
// Sealer constructed with an empty key only passes plaintext through.
type Sealer struct {
	key *fernet.Key
}

// New creates a Sealer from a base64 fernet key. An empty key yields a
// passthrough Sealer that rejects sealed values.
func New(key string) (*Sealer, error) {
	if strings.TrimSpace(key) == "" {
		return &Sealer{}, nil
	}
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode secrets key: %w", err)
	}
	return &Sealer{key: k}, nil
}

// Reveal returns the plaintext credential. Sealed values require a key;
// plaintext values are returned verbatim.
func (s *Sealer) Reveal(value string) (string, error) {
	if !strings.HasPrefix(value, SealedPrefix) {
		return value, nil
	}
	if s.key == nil {
		return "", apperrors.ErrSealedCredential
	}
	token := strings.TrimPrefix(value, SealedPrefix)
	plain := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{s.key})
	if plain == nil {
		return "", fmt.Errorf("failed to open sealed credential")
	}
	return string(plain), nil
}

// Seal encrypts a credential for storage in configuration.
func (s *Sealer) Seal(value string) (string, error) {
	if s.key == nil {
		return "", apperrors.ErrSealedCredential
	}
	token, err := fernet.EncryptAndSign([]byte(value), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to seal credential: %w", err)
	}
	return SealedPrefix + string(token), nil
}

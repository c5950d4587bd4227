// Package encryption handles encryption of sensitive data at rest.
package encryption

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
)

// EncryptionService encrypts and decrypts sensitive values before they are
// written to the database, currently the per-project client access tokens.
type EncryptionService struct {
	key *fernet.Key
}

// NewEncryptionService creates a new encryption service with the provided key
func NewEncryptionService(keyString string) (*EncryptionService, error) {
	if keyString == "" {
		return nil, fmt.Errorf("encryption key cannot be empty")
	}

	key, err := fernet.DecodeKey(keyString)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}

	return &EncryptionService{key: key}, nil
}

// GenerateKey returns a new random fernet key in its encoded form
func GenerateKey() (string, error) {
	var key fernet.Key
	if _, err := rand.Read(key[:]); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return key.Encode(), nil
}

// Encrypt encrypts plaintext and returns a base64-encoded token
func (e *EncryptionService) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil // Don't encrypt empty strings
	}

	token, err := fernet.EncryptAndSign([]byte(plaintext), e.key)
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(token), nil
}

// Decrypt decrypts a base64-encoded token and returns plaintext
func (e *EncryptionService) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	tokenBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid token format: %w", err)
	}

	// Access tokens stay valid for the lifetime of the project, so use an
	// effectively unlimited TTL
	plaintext := fernet.VerifyAndDecrypt(tokenBytes, time.Hour*24*365*100, []*fernet.Key{e.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt token: invalid or expired")
	}

	return string(plaintext), nil
}

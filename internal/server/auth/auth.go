// Package auth manages the API key that guards the dev server's send routes.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	AutoGenKeyLength = 24
	Base62Chars      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	KeyFileName      = "nge.key.txt"
	APIKeyHeader     = "X-API-Key"
)

var ErrEmptyKeyFile = errors.New("key file is empty")

// GenerateKey creates a random base62 key
func GenerateKey() (string, error) {
	randomBytes := make([]byte, AutoGenKeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	key := make([]byte, AutoGenKeyLength)
	for i, b := range randomBytes {
		key[i] = Base62Chars[int(b)%62]
	}

	return string(key), nil
}

// LoadOrCreateKey returns the key stored at path, generating and persisting a
// new one when the file does not exist. created reports the latter.
func LoadOrCreateKey(fs afero.Fs, path string) (key string, created bool, err error) {
	data, err := afero.ReadFile(fs, path)
	if err == nil {
		key = strings.TrimSpace(string(data))
		if key == "" {
			return "", false, fmt.Errorf("%w: %s", ErrEmptyKeyFile, path)
		}
		return key, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("read key file: %w", err)
	}

	key, err = GenerateKey()
	if err != nil {
		return "", false, fmt.Errorf("generate API key: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", false, fmt.Errorf("create key file dir: %w", err)
	}
	if err := afero.WriteFile(fs, path, []byte(key), 0o600); err != nil {
		return "", false, fmt.Errorf("write key file: %w", err)
	}
	return key, true, nil
}

// Credential extracts the key from "Authorization: Bearer <key>" or the
// X-API-Key header, in that order.
func Credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}

// Match compares the presented credential with the expected key in constant time.
func Match(presented, expected string) bool {
	if presented == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

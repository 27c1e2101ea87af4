package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups the app's secrets in the OS keychain.
	KeyringService = "leadhunt"
	SerpAPIAccount = "serpapi"
)

var ErrNotFound = errors.New("SerpAPI key not found in keychain")

func GetSerpAPIKey() (string, error) {
	key, err := keyring.Get(KeyringService, SerpAPIAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrNotFound
	}
	return key, nil
}

func SetSerpAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, SerpAPIAccount, key)
}

func DeleteSerpAPIKey() error {
	err := keyring.Delete(KeyringService, SerpAPIAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ResolveSerpAPIKey prefers an explicitly configured key over the keychain.
func ResolveSerpAPIKey(configured string) (string, bool) {
	if k := strings.TrimSpace(configured); k != "" {
		return k, true
	}
	k, err := GetSerpAPIKey()
	if err != nil {
		return "", false
	}
	return k, true
}

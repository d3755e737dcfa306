// Package auth provides a high-level API for persisting and retrieving user credentials from the system keyring.
package auth

import (
	"errors"
	"os"

	"github.com/reel-cli/reel/constant"
	"github.com/zalando/go-keyring"
)

const user = "subtitles-api-key"

// EnvSubtitleKey overrides the keyring entry when set.
const EnvSubtitleKey = "REEL_SUBTITLES_API_KEY"

// SetSubtitleKey persists the subtitle service API key to the system keyring.
func SetSubtitleKey(apiKey string) error {
	return keyring.Set(constant.Reel, user, apiKey)
}

// GetSubtitleKey returns the subtitle service API key. A missing entry is not
// an error: the service accepts anonymous requests with lower limits.
func GetSubtitleKey() (string, error) {
	if v := os.Getenv(EnvSubtitleKey); v != "" {
		return v, nil
	}

	apiKey, err := keyring.Get(constant.Reel, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return apiKey, err
}

// DeleteSubtitleKey removes the subtitle service API key from the system keyring.
func DeleteSubtitleKey() error {
	err := keyring.Delete(constant.Reel, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

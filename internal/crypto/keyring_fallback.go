//go:build !darwin

package crypto

import (
	"errors"
	"fmt"
	"os"
)

type envKeyring struct{}

func newPlatformKeyring() Keyring {
	return &envKeyring{}
}

// GetKey reads the encryption key from INVOICER_DB_KEY (a .env file works too)
func (k *envKeyring) GetKey() (string, error) {
	key := os.Getenv(EnvKey)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", EnvKey)
	}
	return key, nil
}

// SetKey cannot persist anything; it tells the user where the key belongs
func (k *envKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	return fmt.Errorf("no system keychain on this platform: set %s in the environment or a .env file", EnvKey)
}

func (k *envKeyring) IsAvailable() bool {
	return os.Getenv(EnvKey) != ""
}

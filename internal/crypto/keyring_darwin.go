//go:build darwin

package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

type keychain struct{}

func newPlatformKeyring() Keyring {
	return &keychain{}
}

// GetKey reads the encryption key from the macOS Keychain
func (k *keychain) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		return "", fmt.Errorf("keychain lookup for %s/%s: %w", ServiceName, KeyName, err)
	}
	if key == "" {
		return "", errors.New("encryption key is empty")
	}
	return key, nil
}

func (k *keychain) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keychain: %w", err)
	}
	return nil
}

// IsAvailable probes the keychain with a throwaway entry
func (k *keychain) IsAvailable() bool {
	probe := "__invoicer_probe__"
	if err := keyring.Set(ServiceName, probe, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, probe)
	return true
}

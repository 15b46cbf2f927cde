//go:build !darwin

package keychain

import "errors"

// newSecurityBackend is only available on macOS; elsewhere keyring backends are used.
func newSecurityBackend() (keychainBackend, error) {
	return nil, errors.New("security command backend requires macOS")
}

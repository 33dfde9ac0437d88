// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for footprint.
// It keeps the two secrets the port command needs out of the config file: the access
// token presented to the gRPC donation host and the DSN of the Postgres donation store.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "footprint"

// Keys used for storing secrets in the OS keychain.
const (
	KeyBridgeToken = "bridge_token"
	KeyDonationDSN = "donation_dsn"
)

// ErrNotFound is returned when a secret has never been stored.
var ErrNotFound = keyring.ErrKeyNotFound

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends, with pass as
// the fallback where the native store is unavailable.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	return keyring.Open(cfg)
}

func (m *Manager) set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		return errors.New("refusing to store empty " + key)
	}
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, err := m.ring.Get(key)
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// SaveBridgeToken stores the donation host access token.
func (m *Manager) SaveBridgeToken(token string) error { return m.set(KeyBridgeToken, token) }

// LoadBridgeToken retrieves the donation host access token.
func (m *Manager) LoadBridgeToken() (string, error) { return m.get(KeyBridgeToken) }

// SaveDonationDSN stores the Postgres DSN donations are written to.
func (m *Manager) SaveDonationDSN(dsn string) error { return m.set(KeyDonationDSN, dsn) }

// LoadDonationDSN retrieves the Postgres DSN donations are written to.
func (m *Manager) LoadDonationDSN() (string, error) { return m.get(KeyDonationDSN) }

// ClearAll removes all footprint secrets from the keychain.
// Missing entries are not an error.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range []string{KeyBridgeToken, KeyDonationDSN} {
		if err := m.ring.Remove(k); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

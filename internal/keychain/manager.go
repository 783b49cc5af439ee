// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for xdrq.
// It stores the API client credentials saved by "xdrq login" in the OS credential
// store (macOS Keychain, Windows Credential Manager, Secret Service on Linux).
//
// Bearer tokens are never written here; they live only for one command.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"xdrquery/cli/internal/model"
)

// shared is opened on first use by GetManager.
var (
	shared   *Manager
	sharedMu sync.Mutex
)

// ErrNotFound is returned when no credentials have been saved.
var ErrNotFound = errors.New("no saved client credentials")

// Manager reads and writes saved client credentials. It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend is a native store that bypasses keyring, used on macOS.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName is the keychain service every entry is stored under.
const ServiceName = "xdrq"

// Entry keys.
const (
	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"
)

// NewManager opens the platform credential store.
func NewManager() (*Manager, error) {
	// The security(1) command avoids repeated Keychain access prompts.
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewWithRing wraps an already opened keyring.
func NewWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the process-wide manager. A failed open is not cached.
func GetManager() (*Manager, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		m, err := NewManager()
		if err != nil {
			return nil, err
		}
		shared = m
	}
	return shared, nil
}

// openRing opens the OS keyring using native platform backends only. There is no file fallback.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	return keyring.Open(cfg)
}

func (m *Manager) set(key, value string) error {
	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (m *Manager) get(key string) (string, error) {
	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			return "", ErrNotFound
		}
		return v, nil
	}
	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (m *Manager) remove(key string) {
	if m.backend != nil {
		_ = m.backend.Delete(key)
		return
	}
	_ = m.ring.Remove(key)
}

// SaveClientCredentials stores both halves of the client credentials.
func (m *Manager) SaveClientCredentials(creds model.Credentials) error {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return errors.New("client id and client secret are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.set(KeyClientID, creds.ClientID); err != nil {
		return err
	}
	return m.set(KeyClientSecret, creds.ClientSecret)
}

// LoadClientCredentials retrieves saved credentials. A partial entry is treated as missing.
func (m *Manager) LoadClientCredentials() (model.Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, err := m.get(KeyClientID)
	if err != nil {
		return model.Credentials{}, err
	}
	secret, err := m.get(KeyClientSecret)
	if err != nil {
		return model.Credentials{}, err
	}
	if id == "" || secret == "" {
		return model.Credentials{}, ErrNotFound
	}
	return model.Credentials{ClientID: id, ClientSecret: secret}, nil
}

// ClearCredentials removes saved credentials. Missing entries are not an error.
func (m *Manager) ClearCredentials() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.remove(KeyClientID)
	m.remove(KeyClientSecret)
	return nil
}

package session

import (
	"path/filepath"
	"time"
)

const authSessionFile = "auth_session.json"

// AuthState is a device code sign-in waiting for the user to finish in the
// browser.
type AuthState struct {
	DeviceCode      string    `json:"device_code"`
	VerificationURI string    `json:"verification_uri"`
	UserCode        string    `json:"user_code"`
	Interval        int       `json:"interval"` // seconds between polls
	ExpiresAt       time.Time `json:"expires_at"`
}

// Expired reports whether the device code can no longer be redeemed.
func (s *AuthState) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (m *Manager) getAuthSessionFilePath() string {
	return filepath.Join(m.getSessionDir(), authSessionFile)
}

// SaveAuthState persists the pending sign-in.
func (m *Manager) SaveAuthState(state *AuthState) error {
	filePath := m.getAuthSessionFilePath()
	return m.withLock(filePath, func() error {
		return writeJSON(filePath, state)
	})
}

// LoadAuthState returns the pending sign-in, or (nil, nil) when there is
// none. An expired one is removed and reported as absent.
func (m *Manager) LoadAuthState() (*AuthState, error) {
	filePath := m.getAuthSessionFilePath()
	var state AuthState
	var found bool
	err := m.withLock(filePath, func() error {
		var err error
		found, err = readJSON(filePath, &state)
		if err != nil || !found {
			return err
		}
		if state.Expired(m.now()) {
			found = false
			return removeFile(filePath)
		}
		return nil
	})
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

// DeleteAuthState removes the pending sign-in. Deleting a missing one is not
// an error.
func (m *Manager) DeleteAuthState() error {
	filePath := m.getAuthSessionFilePath()
	return m.withLock(filePath, func() error {
		return removeFile(filePath)
	})
}

// Package session keeps short-lived CLI state on disk: the pending device
// code sign-in and the continuation links of interrupted listings. Every file
// is guarded by a flock so concurrent CLI invocations do not corrupt it.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ContinuationTTL bounds how long a saved continuation link is offered for
// resuming. The service expires skip tokens on its own schedule.
const ContinuationTTL = time.Hour

// ErrLocked is returned when another process holds a session file.
var ErrLocked = errors.New("could not acquire file lock, another instance may be running")

// ContinuationState is the next link of a listing that stopped before its
// last page.
type ContinuationState struct {
	Listing  string    `json:"listing"`
	NextLink string    `json:"nextLink"`
	SavedAt  time.Time `json:"savedAt"`
}

// Manager reads and writes session files below a directory.
type Manager struct {
	configDir string
	now       func() time.Time
}

// NewManagerWithConfigDir creates a session manager rooted at configDir.
func NewManagerWithConfigDir(configDir string) *Manager {
	return &Manager{configDir: configDir, now: time.Now}
}

func (m *Manager) getSessionDir() string {
	return filepath.Join(m.configDir, "sessions")
}

// continuationFilePath returns a deterministic file name for a listing key.
func (m *Manager) continuationFilePath(listing string) string {
	hash := sha256.Sum256([]byte(listing))
	return filepath.Join(m.getSessionDir(), "continuation-"+hex.EncodeToString(hash[:])+".json")
}

// withLock runs fn while holding the lock file next to filePath.
func (m *Manager) withLock(filePath string, fn func() error) error {
	if err := os.MkdirAll(m.getSessionDir(), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	lock := flock.New(filePath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring file lock for %s: %w", filePath, err)
	}
	if !locked {
		return ErrLocked
	}
	defer lock.Unlock()
	return fn()
}

func writeJSON(filePath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling session state: %w", err)
	}
	return os.WriteFile(filePath, data, 0o600)
}

// readJSON decodes filePath into v. found is false when the file does not
// exist.
func readJSON(filePath string, v any) (found bool, err error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading session file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshalling session state from %s: %w", filePath, err)
	}
	return true, nil
}

func removeFile(filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting session file: %w", err)
	}
	return nil
}

// SaveContinuation remembers nextLink for listing. An empty link deletes
// any saved state, since the listing is complete.
func (m *Manager) SaveContinuation(listing, nextLink string) error {
	if nextLink == "" {
		return m.DeleteContinuation(listing)
	}
	filePath := m.continuationFilePath(listing)
	return m.withLock(filePath, func() error {
		return writeJSON(filePath, &ContinuationState{Listing: listing, NextLink: nextLink, SavedAt: m.now()})
	})
}

// LoadContinuation returns the saved state of listing, or nil when there is
// none or it is older than ContinuationTTL.
func (m *Manager) LoadContinuation(listing string) (*ContinuationState, error) {
	filePath := m.continuationFilePath(listing)
	var state ContinuationState
	var found bool
	err := m.withLock(filePath, func() error {
		var err error
		found, err = readJSON(filePath, &state)
		if err != nil || !found {
			return err
		}
		if m.now().Sub(state.SavedAt) > ContinuationTTL {
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

// DeleteContinuation forgets the saved state of listing.
func (m *Manager) DeleteContinuation(listing string) error {
	filePath := m.continuationFilePath(listing)
	return m.withLock(filePath, func() error {
		return removeFile(filePath)
	})
}

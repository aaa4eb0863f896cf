//go:build e2e

package e2e

import (
	"context"
	"errors"
	"path"
	"testing"

	"github.com/google/uuid"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/config"
	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

// E2ETestHelper provides utilities for E2E testing against a live account.
type E2ETestHelper struct {
	Config  *Config
	App     *app.App
	Client  *onedrive.Client
	TestID  string
	TestDir string
}

// NewE2ETestHelper creates a helper and a fresh test directory that is
// removed when the test finishes.
func NewE2ETestHelper(t *testing.T) *E2ETestHelper {
	t.Helper()

	e2eConfig := LoadConfig()
	testID := generateTestID()
	helper := &E2ETestHelper{
		Config:  e2eConfig,
		TestID:  testID,
		TestDir: path.Join(e2eConfig.TestDir, testID),
	}

	t.Setenv(config.EnvConfigPath, e2eConfig.ConfigPath)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf(`E2E testing setup required: copy an authenticated config.json to %s
(run 'onedrive auth login' first). Loading it failed: %v`, e2eConfig.ConfigPath, err)
	}
	if !cfg.HasToken() {
		t.Fatal("No token found. Please run: onedrive auth login")
	}

	log := logger.NewDefaultLogger(testing.Verbose())
	token := cfg.Token
	helper.Client = onedrive.NewClient(context.Background(), &token, cfg.ClientID, cfg.UpdateToken, onedrive.ClientOptions{
		BaseURL:    cfg.BaseURL,
		HTTPConfig: cfg.HTTP,
		Logger:     log,
	})
	helper.App = &app.App{
		Config: cfg,
		Logger: log,
		SDK:    app.NewLiveSDK(helper.Client, log),
	}

	ctx, cancel := helper.Context()
	defer cancel()
	if err := helper.ensureDirectory(ctx, e2eConfig.TestDir); err != nil {
		t.Fatalf("Failed to create test root: %v", err)
	}
	if err := helper.ensureDirectory(ctx, helper.TestDir); err != nil {
		t.Fatalf("Failed to create test directory: %v", err)
	}

	t.Cleanup(func() {
		helper.Cleanup(t)
	})
	return helper
}

// Context returns a context bounded by the configured timeout.
func (h *E2ETestHelper) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.Config.Timeout)
}

func (h *E2ETestHelper) ensureDirectory(ctx context.Context, dir string) error {
	_, err := h.App.SDK.CreateFolder(ctx, path.Dir(dir), path.Base(dir))
	if err != nil && !errors.Is(err, onedrive.ErrConflict) {
		return err
	}
	return nil
}

// GetTestPath returns the full remote path for name inside the test directory.
func (h *E2ETestHelper) GetTestPath(name string) string {
	return path.Join(h.TestDir, name)
}

// Cleanup removes the test directory unless cleanup is disabled.
func (h *E2ETestHelper) Cleanup(t *testing.T) {
	t.Helper()
	if !h.Config.Cleanup {
		t.Logf("Leaving test directory %s in place", h.TestDir)
		return
	}
	ctx, cancel := h.Context()
	defer cancel()
	if err := h.App.SDK.DeleteItem(ctx, h.TestDir); err != nil {
		t.Logf("Warning: failed to clean up test directory %s: %v", h.TestDir, err)
	}
}

func generateTestID() string {
	return "test-" + uuid.NewString()[:8]
}

// LogTestInfo logs where the test runs.
func (h *E2ETestHelper) LogTestInfo(t *testing.T) {
	t.Helper()
	t.Logf("E2E test ID %s, directory %s", h.TestID, h.TestDir)
}

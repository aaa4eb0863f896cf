// Package app wires configuration, logging, session state and the OneDrive
// client together for the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/internal/config"
	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/internal/session"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

// App holds everything a command needs.
type App struct {
	Config  *config.Configuration
	Logger  logger.Logger
	Session *session.Manager
	Auth    DeviceAuth
	SDK     SDK

	now func() time.Time
}

// NewUnauthenticatedApp loads configuration and session state without
// building an API client. The auth commands use it.
func NewUnauthenticatedApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.LogFormat = format
	}

	log, err := logger.New(cfg.Debug, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	configDir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("locating configuration directory: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  log,
		Session: session.NewManagerWithConfigDir(configDir),
		Auth:    NewLiveDeviceAuth(cfg.ClientID, onedrive.DefaultAuthEndpoints(), log),
		now:     time.Now,
	}, nil
}

// NewApp returns an App with a ready SDK. A pending device code sign-in is
// completed first; when there is still no token it fails with
// onedrive.ErrReauthRequired, or ErrLoginPending while the user has not
// finished signing in.
func NewApp(cmd *cobra.Command) (*App, error) {
	a, err := NewUnauthenticatedApp(cmd)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := a.completePendingLogin(ctx); err != nil {
		if errors.Is(err, ErrLoginPending) {
			return nil, err
		}
		return nil, fmt.Errorf("completing sign-in: %w", err)
	}
	if !a.Config.HasToken() {
		return nil, onedrive.ErrReauthRequired
	}

	sdk := NewLiveSDK(a.newClient(ctx), a.Logger)
	sdk.ShowProgress = true
	a.SDK = sdk
	return a, nil
}

func (a *App) newClient(ctx context.Context) *onedrive.Client {
	token := a.Config.Token
	return onedrive.NewClient(ctx, &token, a.Config.ClientID, a.Config.UpdateToken, onedrive.ClientOptions{
		BaseURL:    a.Config.BaseURL,
		HTTPConfig: a.Config.HTTP,
		Logger:     a.Logger,
	})
}

// ResolvePaging returns paging with the saved continuation of listing
// applied when resume is set.
func (a *App) ResolvePaging(listing string, paging onedrive.Paging, resume bool) (onedrive.Paging, error) {
	if !resume {
		return paging, nil
	}
	state, err := a.Session.LoadContinuation(listing)
	if err != nil {
		return paging, fmt.Errorf("loading saved position: %w", err)
	}
	if state == nil {
		return paging, fmt.Errorf("nothing to resume for %q, run the listing without --resume first", listing)
	}
	a.Logger.Debug("resuming listing", "listing", listing, "saved_at", state.SavedAt)
	paging.NextLink = state.NextLink
	return paging, nil
}

// RecordContinuation saves where listing stopped so it can be resumed. A
// failure only costs the ability to resume, so it is logged.
func (a *App) RecordContinuation(listing, nextLink string) {
	if err := a.Session.SaveContinuation(listing, nextLink); err != nil {
		a.Logger.Warn("could not save listing position", "listing", listing, "error", err)
	}
}

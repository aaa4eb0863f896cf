package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/internal/session"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

var (
	// ErrLoginPending is returned while the user has not finished the
	// device code sign-in in the browser.
	ErrLoginPending = errors.New("login pending")
	// ErrNoPendingLogin is returned when waiting for a sign-in that was never
	// started or whose code has expired.
	ErrNoPendingLogin = errors.New("no login in progress")
)

// DeviceAuth talks to the device code endpoints.
type DeviceAuth interface {
	InitiateDeviceCodeFlow(ctx context.Context) (*onedrive.DeviceCodeResponse, error)
	VerifyDeviceCode(ctx context.Context, deviceCode string) (*onedrive.Token, error)
}

type liveDeviceAuth struct {
	clientID  string
	endpoints onedrive.AuthEndpoints
	log       logger.Logger
}

// NewLiveDeviceAuth returns a DeviceAuth backed by the identity platform.
func NewLiveDeviceAuth(clientID string, endpoints onedrive.AuthEndpoints, log logger.Logger) DeviceAuth {
	return &liveDeviceAuth{clientID: clientID, endpoints: endpoints, log: log}
}

func (d *liveDeviceAuth) InitiateDeviceCodeFlow(ctx context.Context) (*onedrive.DeviceCodeResponse, error) {
	return onedrive.InitiateDeviceCodeFlow(ctx, d.clientID, d.endpoints, d.log)
}

func (d *liveDeviceAuth) VerifyDeviceCode(ctx context.Context, deviceCode string) (*onedrive.Token, error) {
	return onedrive.VerifyDeviceCode(ctx, d.clientID, deviceCode, d.endpoints, d.log)
}

// BeginLogin starts a device code sign-in, or returns the one already in
// progress.
func (a *App) BeginLogin(ctx context.Context) (*session.AuthState, error) {
	pending, err := a.Session.LoadAuthState()
	if err != nil {
		return nil, fmt.Errorf("could not load auth state: %w", err)
	}
	if pending != nil {
		return pending, nil
	}

	resp, err := a.Auth.InitiateDeviceCodeFlow(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting device code sign-in: %w", err)
	}

	expiresIn := onedrive.DefaultDeviceCodeExpiry
	if resp.ExpiresIn > 0 {
		expiresIn = time.Duration(resp.ExpiresIn) * time.Second
	}
	state := &session.AuthState{
		DeviceCode:      resp.DeviceCode,
		VerificationURI: resp.VerificationURI,
		UserCode:        resp.UserCode,
		Interval:        resp.Interval,
		ExpiresAt:       a.now().Add(expiresIn),
	}
	if err := a.Session.SaveAuthState(state); err != nil {
		return nil, fmt.Errorf("saving auth state: %w", err)
	}
	return state, nil
}

// completePendingLogin polls the token endpoint once for a pending sign-in.
// It reports false with no error when nothing is pending.
func (a *App) completePendingLogin(ctx context.Context) (bool, error) {
	pending, err := a.Session.LoadAuthState()
	if err != nil {
		return false, fmt.Errorf("could not load auth state: %w", err)
	}
	if pending == nil {
		return false, nil
	}

	token, err := a.Auth.VerifyDeviceCode(ctx, pending.DeviceCode)
	if err != nil {
		if errors.Is(err, onedrive.ErrAuthorizationPending) {
			return false, fmt.Errorf("%w: please go to %s and enter code %s", ErrLoginPending, pending.VerificationURI, pending.UserCode)
		}
		if errors.Is(err, onedrive.ErrCancelled) {
			return false, err
		}
		// Declined or expired codes cannot be retried.
		if delErr := a.Session.DeleteAuthState(); delErr != nil {
			a.Logger.Warn("could not delete auth session file", "error", delErr)
		}
		return false, fmt.Errorf("authentication failed, your login code may have expired, please try again: %w", err)
	}

	if err := a.Config.UpdateToken(token); err != nil {
		return false, fmt.Errorf("saving token: %w", err)
	}
	if err := a.Session.DeleteAuthState(); err != nil {
		a.Logger.Warn("could not delete auth session file", "error", err)
	}
	a.Logger.Info("sign-in completed")
	return true, nil
}

// WaitForLogin polls until the pending sign-in completes, fails or expires,
// backing off according to the configured polling settings.
func (a *App) WaitForLogin(ctx context.Context) error {
	polling := a.Config.Polling
	interval := polling.InitialInterval
	if pending, err := a.Session.LoadAuthState(); err == nil && pending != nil {
		if server := time.Duration(pending.Interval) * time.Second; server > interval {
			interval = server
		}
	}

	for attempt := 1; ; attempt++ {
		done, err := a.completePendingLogin(ctx)
		switch {
		case done:
			return nil
		case err == nil:
			return ErrNoPendingLogin
		case !errors.Is(err, ErrLoginPending):
			return err
		}
		if polling.MaxAttempts > 0 && attempt >= polling.MaxAttempts {
			return err
		}

		a.Logger.Debug("waiting for sign-in", "attempt", attempt, "interval", interval)
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(onedrive.ErrCancelled, ctx.Err())
		case <-timer.C:
		}
		interval = polling.Next(interval)
	}
}

// Logout clears the stored token and any pending sign-in.
func (a *App) Logout() error {
	if err := a.Config.ClearToken(); err != nil {
		return fmt.Errorf("could not clear token: %w", err)
	}
	if err := a.Session.DeleteAuthState(); err != nil {
		a.Logger.Warn("could not delete auth session file during logout", "error", err)
	}
	return nil
}

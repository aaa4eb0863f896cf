package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/onedrive-sdk-go/internal/config"
	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/internal/session"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

type fakeDeviceAuth struct {
	initiate    *onedrive.DeviceCodeResponse
	initiateErr error
	// verifyErrs are returned by successive VerifyDeviceCode calls; once
	// exhausted the call succeeds with token.
	verifyErrs  []error
	token       *onedrive.Token
	initiated   int
	verified    int
	deviceCodes []string
}

func (f *fakeDeviceAuth) InitiateDeviceCodeFlow(ctx context.Context) (*onedrive.DeviceCodeResponse, error) {
	f.initiated++
	return f.initiate, f.initiateErr
}

func (f *fakeDeviceAuth) VerifyDeviceCode(ctx context.Context, deviceCode string) (*onedrive.Token, error) {
	f.verified++
	f.deviceCodes = append(f.deviceCodes, deviceCode)
	if len(f.verifyErrs) > 0 {
		err := f.verifyErrs[0]
		f.verifyErrs = f.verifyErrs[1:]
		return nil, err
	}
	return f.token, nil
}

func newTestApp(t *testing.T, auth *fakeDeviceAuth) *App {
	t.Helper()
	t.Setenv(config.EnvConfigPath, t.TempDir()+"/config.json")
	cfg, err := config.LoadOrCreate()
	require.NoError(t, err)
	cfg.Polling = config.PollingConfig{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, Multiplier: 2}

	dir, err := config.Dir()
	require.NoError(t, err)
	return &App{
		Config:  cfg,
		Logger:  logger.NoopLogger{},
		Session: session.NewManagerWithConfigDir(dir),
		Auth:    auth,
		now:     time.Now,
	}
}

func TestBeginLogin(t *testing.T) {
	auth := &fakeDeviceAuth{initiate: &onedrive.DeviceCodeResponse{
		UserCode:        "ABCD-EFGH",
		DeviceCode:      "device-1",
		VerificationURI: "https://microsoft.com/devicelogin",
		ExpiresIn:       900,
		Interval:        5,
	}}
	a := newTestApp(t, auth)

	state, err := a.BeginLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABCD-EFGH", state.UserCode)
	assert.Equal(t, 5, state.Interval)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), state.ExpiresAt, time.Minute)

	stored, err := a.Session.LoadAuthState()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "device-1", stored.DeviceCode)

	again, err := a.BeginLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "device-1", again.DeviceCode)
	assert.Equal(t, 1, auth.initiated, "a pending sign-in is reused")
}

func TestBeginLoginDefaultExpiry(t *testing.T) {
	a := newTestApp(t, &fakeDeviceAuth{initiate: &onedrive.DeviceCodeResponse{DeviceCode: "d"}})

	state, err := a.BeginLogin(context.Background())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(onedrive.DefaultDeviceCodeExpiry), state.ExpiresAt, time.Minute)
}

func TestBeginLoginError(t *testing.T) {
	a := newTestApp(t, &fakeDeviceAuth{initiateErr: onedrive.ErrRetryLater})

	_, err := a.BeginLogin(context.Background())
	assert.ErrorIs(t, err, onedrive.ErrRetryLater)
}

func savePending(t *testing.T, a *App) {
	t.Helper()
	require.NoError(t, a.Session.SaveAuthState(&session.AuthState{
		DeviceCode:      "device-1",
		VerificationURI: "https://microsoft.com/devicelogin",
		UserCode:        "ABCD",
		ExpiresAt:       time.Now().Add(15 * time.Minute),
	}))
}

func TestCompletePendingLogin(t *testing.T) {
	tests := []struct {
		name          string
		verifyErr     error
		wantDone      bool
		wantErr       error
		wantStateKept bool
	}{
		{name: "success", wantDone: true},
		{name: "still pending", verifyErr: onedrive.ErrAuthorizationPending, wantErr: ErrLoginPending, wantStateKept: true},
		{name: "declined", verifyErr: onedrive.ErrAuthorizationDeclined, wantErr: onedrive.ErrAuthorizationDeclined},
		{name: "expired", verifyErr: onedrive.ErrTokenExpired, wantErr: onedrive.ErrTokenExpired},
		{name: "cancelled", verifyErr: onedrive.ErrCancelled, wantErr: onedrive.ErrCancelled, wantStateKept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeDeviceAuth{token: &onedrive.Token{AccessToken: "access", RefreshToken: "refresh"}}
			if tt.verifyErr != nil {
				auth.verifyErrs = []error{tt.verifyErr}
			}
			a := newTestApp(t, auth)
			savePending(t, a)

			done, err := a.completePendingLogin(context.Background())
			assert.Equal(t, tt.wantDone, done)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, a.Config.HasToken())
			} else {
				require.NoError(t, err)
				assert.Equal(t, "access", a.Config.Token.AccessToken)

				saved, err := config.Load()
				require.NoError(t, err)
				assert.Equal(t, "refresh", saved.Token.RefreshToken)
			}

			state, err := a.Session.LoadAuthState()
			require.NoError(t, err)
			assert.Equal(t, tt.wantStateKept, state != nil)
		})
	}
}

func TestCompletePendingLoginWithoutSession(t *testing.T) {
	auth := &fakeDeviceAuth{}
	a := newTestApp(t, auth)

	done, err := a.completePendingLogin(context.Background())
	require.NoError(t, err)
	assert.False(t, done)
	assert.Zero(t, auth.verified)
}

func TestWaitForLogin(t *testing.T) {
	t.Run("polls until signed in", func(t *testing.T) {
		auth := &fakeDeviceAuth{
			verifyErrs: []error{onedrive.ErrAuthorizationPending, onedrive.ErrAuthorizationPending},
			token:      &onedrive.Token{AccessToken: "access"},
		}
		a := newTestApp(t, auth)
		savePending(t, a)

		require.NoError(t, a.WaitForLogin(context.Background()))
		assert.Equal(t, 3, auth.verified)
		assert.Equal(t, []string{"device-1", "device-1", "device-1"}, auth.deviceCodes)
		assert.True(t, a.Config.HasToken())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		auth := &fakeDeviceAuth{verifyErrs: []error{
			onedrive.ErrAuthorizationPending, onedrive.ErrAuthorizationPending, onedrive.ErrAuthorizationPending,
		}}
		a := newTestApp(t, auth)
		a.Config.Polling.MaxAttempts = 2
		savePending(t, a)

		err := a.WaitForLogin(context.Background())
		assert.ErrorIs(t, err, ErrLoginPending)
		assert.Equal(t, 2, auth.verified)
	})

	t.Run("stops on a declined sign-in", func(t *testing.T) {
		auth := &fakeDeviceAuth{verifyErrs: []error{onedrive.ErrAuthorizationPending, onedrive.ErrAuthorizationDeclined}}
		a := newTestApp(t, auth)
		savePending(t, a)

		err := a.WaitForLogin(context.Background())
		assert.ErrorIs(t, err, onedrive.ErrAuthorizationDeclined)
	})

	t.Run("nothing pending", func(t *testing.T) {
		a := newTestApp(t, &fakeDeviceAuth{})
		assert.ErrorIs(t, a.WaitForLogin(context.Background()), ErrNoPendingLogin)
	})

	t.Run("cancelled", func(t *testing.T) {
		auth := &fakeDeviceAuth{verifyErrs: []error{onedrive.ErrAuthorizationPending}}
		a := newTestApp(t, auth)
		a.Config.Polling.InitialInterval = time.Hour
		savePending(t, a)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := a.WaitForLogin(ctx)
		assert.ErrorIs(t, err, onedrive.ErrCancelled)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestLogout(t *testing.T) {
	a := newTestApp(t, &fakeDeviceAuth{})
	require.NoError(t, a.Config.UpdateToken(&onedrive.Token{AccessToken: "access"}))
	savePending(t, a)

	require.NoError(t, a.Logout())
	assert.False(t, a.Config.HasToken())

	state, err := a.Session.LoadAuthState()
	require.NoError(t, err)
	assert.Nil(t, state)
}

// Package services contains the application services of the storefront
// admin client: authentication/session lifecycle and the product and
// category catalogs with their local collection mirrors.
package services

import (
	"context"
	"errors"
	"strings"

	"storeadmin/internal/client"
	"storeadmin/internal/logging"
	"storeadmin/internal/repositories/credentials"
	"storeadmin/internal/session"
)

// AuthService drives the session lifecycle.
//
// Contract:
//   - Login/Register: authenticate against the server and update the
//     session store; failures set StatusFailed with a user-facing message.
//   - Logout: best-effort server call; the local session and credential
//     slot are cleared regardless.
//   - RestoreSession: one-shot silent refresh at startup. Failure clears
//     the session without surfacing an error.
//   - Ping: server liveness probe.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) error
	Register(ctx context.Context, username, email string, password []byte, avatarURL string) error
	Logout(ctx context.Context) error
	RestoreSession(ctx context.Context)
	EndSession(ctx context.Context)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// sessionEnder is the slice of AuthService the catalog services need to
// force re-authentication when a request fails with an expired refresh
// session.
type sessionEnder interface {
	EndSession(ctx context.Context)
}

func endSessionIfExpired(ctx context.Context, sessions sessionEnder, err error) {
	if errors.Is(err, client.ErrSessionExpired) {
		sessions.EndSession(ctx)
	}
}

type authService struct {
	client  client.Client
	session *session.Store
	creds   credentials.Repository
	log     logging.Logger
}

func NewAuthService(c client.Client, s *session.Store, creds credentials.Repository, log logging.Logger) AuthService {
	return &authService{client: c, session: s, creds: creds, log: log.With("component", "auth")}
}

// Login authenticates and replaces the session identity wholesale. The
// epoch captured before the call guards against a slow response landing
// after the user already logged in as someone else.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	epoch := a.session.Epoch()
	prevStatus, prevErr := a.session.Status()
	a.session.SetStatus(session.StatusLoading, "")

	u, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		a.session.SetStatus(session.StatusFailed, "Login failed")
		return err
	}

	if !a.session.SetIdentityIf(epoch, *u) {
		a.log.Warn(ctx, "discarding stale login response", "user", u.Username)
		a.session.SetStatus(prevStatus, prevErr)
		return nil
	}
	a.session.SetStatus(session.StatusSucceeded, "")
	return nil
}

// Register creates an account. On success the returned identity (when the
// server includes one) becomes the current session identity. Failure
// messages mirror what the server tells us: a conflict means a duplicate
// user, a validation failure carries the server-provided reason.
func (a *authService) Register(ctx context.Context, username, email string, password []byte, avatarURL string) error {
	epoch := a.session.Epoch()
	prevStatus, prevErr := a.session.Status()
	a.session.SetStatus(session.StatusLoading, "")

	u, err := a.client.Register(ctx, username, email, string(password), avatarURL)
	if err != nil {
		a.session.SetStatus(session.StatusFailed, registerFailureMessage(err))
		return err
	}

	if u != nil {
		if !a.session.SetIdentityIf(epoch, *u) {
			a.log.Warn(ctx, "discarding stale register response", "user", u.Username)
			a.session.SetStatus(prevStatus, prevErr)
			return nil
		}
	}
	a.session.SetStatus(session.StatusSucceeded, "")
	return nil
}

func registerFailureMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrAlreadyExists):
		return "Registration failed: User with the same name or email already registered"
	case errors.Is(err, client.ErrValidation):
		reason := strings.TrimPrefix(err.Error(), client.ErrValidation.Error()+": ")
		if reason != "" && reason != err.Error() {
			return "Registration failed. Reason: " + reason
		}
		return "Registration failed"
	default:
		return "Registration failed"
	}
}

// Logout tells the server to drop the refresh session, then clears local
// state. The server call is best-effort: a dead server must not trap the
// user in a logged-in client.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "logout request failed", "error", err)
	}
	if err := a.creds.Clear(ctx); err != nil {
		return err
	}
	a.session.Reset()
	return nil
}

// RestoreSession attempts one silent refresh from the persisted credential.
// Any failure, expiry, network, malformed response, leaves the client
// unauthenticated without a user-visible error; interactive login failures
// are the ones that get surfaced.
func (a *authService) RestoreSession(ctx context.Context) {
	epoch := a.session.Epoch()

	u, err := a.client.Refresh(ctx)
	if err != nil {
		a.log.Debug(ctx, "silent session restore failed", "error", err)
		_ = a.creds.Clear(ctx)
		a.session.Clear()
		return
	}

	a.session.SetIdentityIf(epoch, *u)
	a.log.Info(ctx, "session restored", "user", u.Username)
}

// EndSession clears the credential slot and resets the session store after
// the refresh session died mid-flight. The identity is gone afterwards, so
// the guard bounces the next protected navigation to login.
func (a *authService) EndSession(ctx context.Context) {
	a.log.Info(ctx, "session expired, forcing re-authentication")
	_ = a.creds.Clear(ctx)
	a.session.Reset()
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Health(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

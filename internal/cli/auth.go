package cli

import (
	"context"
	"fmt"
	"os"

	"storeadmin/internal/common"
	"storeadmin/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and attempts to create a new
// account via the AuthService.
//
// On success it prints "Success!" and returns nil. On failure the
// user-facing message kept by the session store is shown. The password
// byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	avatarURL, err := getSimpleText(a.reader, "Enter avatar URL (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, email, password, avatarURL); err != nil {
		_, msg := a.session.Status()
		printlnFn(msg)
		return err
	}

	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and tries to authenticate. On success any
// navigation that was interrupted by a login redirect is resumed. The
// password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, userName, password); err != nil {
		_, msg := a.session.Status()
		printlnFn(msg)
		return err
	}

	printlnFn("Login successful")
	a.resumePending(ctx)
	return nil
}

// Logout drops the server session and clears all local state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.pendingRoute = ""
	a.page = 1
	printlnFn("Logged out")
	return nil
}

// Whoami prints the current session identity and status.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.Identity()
	if u == nil {
		printlnFn("Not logged in")
		return nil
	}
	printlnFn(fmt.Sprintf("%s <%s> group=%s", u.Username, u.Email, u.Group))
	status, msg := a.session.Status()
	if status == session.StatusFailed {
		printlnFn("Last error:", msg)
	}
	return nil
}

// Health probes the server and reports reachability.
func (a *App) Health(ctx context.Context) error {
	if err := a.authService.Ping(ctx); err != nil {
		printlnFn("Server unavailable:", err.Error())
		return err
	}
	printlnFn("Server is up")
	return nil
}

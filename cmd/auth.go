package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/chordex/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a session and persists it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	r.logger.Infof("logging in as %s", email)

	if !r.store.Login(ctx, email, password) {
		return fmt.Errorf("%w: check email and password", shared.ErrAuthFailed)
	}

	sess, _ := r.store.Current()
	r.logger.Info("authentication successful")
	return r.writePlain("✓ Logged in as %s (%s)\n", sess.User.Nickname, sess.User.Email)
}

// AuthSignup registers a new account. It does not log in.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")

	r.logger.Infof("registering account for %s", email)

	if !r.store.Signup(ctx, email, cmd.String("password"), cmd.String("nickname")) {
		return fmt.Errorf("%w: signup rejected", shared.ErrAPIRequest)
	}

	r.writePlain("✓ Account created\n")
	return r.writePlain("Run 'chordex auth login' to start a session.\n")
}

// AuthLogout clears the persisted session unconditionally.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.store.Logout()
	r.logger.Info("session cleared")
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports the restored session and checks that the service answers.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if sess, ok := r.store.Current(); ok {
		r.writePlain("Session: ✓ %s (%s)\n", sess.User.Nickname, sess.User.Email)
	} else {
		r.writePlain("Session: ✗ not logged in\n")
	}

	resp, err := r.api.Get(ctx, "/health", "")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return r.writePlain("Service: ✓ reachable\n")
	}
	return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mlmathr/internal/identity"
)

var loginCmd = &cobra.Command{
	Use:   "login <user-id>",
	Short: "Sign in so progress follows you across devices",
	Long: `Login switches the active learner to an account. On the first login the
progress on this device seeds the account; afterwards both are merged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := strings.TrimSpace(args[0])
		if userID == "" {
			return identity.ErrInvalidUserID
		}
		return switchIdentity(cmd, identity.Authenticated(userID), true)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and continue with progress on this device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return switchIdentity(cmd, identity.Anonymous(), false)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in learner and this device's ID",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer rt.close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Identity:  %s\n", rt.session.Current())
		fmt.Fprintf(out, "Device:    %s\n", rt.deviceID)
		return nil
	},
}

// switchIdentity saves progress for the current identity, moves the session
// to next and loads progress for it. The current identity is loaded only to
// save it; when that load fails there is nothing unsaved to lose and the
// switch goes ahead. In strict mode a failed save or a failed load of next
// leaves the previous identity active.
func switchIdentity(cmd *cobra.Command, next identity.Identity, strict bool) error {
	ctx := cmd.Context()
	rt, err := openRuntime(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.close()

	prev := rt.session.Current()
	if err := rt.load(ctx); err != nil {
		rt.logger.Warn("switching without saving; current progress could not be loaded",
			"identity", prev.String(), "error", err)
	} else if err := rt.flush(ctx); err != nil {
		if strict {
			return err
		}
		rt.logger.Warn("switching with unsaved progress", "identity", prev.String(), "error", err)
	}

	if err := setSession(ctx, rt.session, next); err != nil {
		return err
	}
	if err := rt.load(ctx); err != nil {
		if !strict {
			return err
		}
		if rerr := setSession(ctx, rt.session, prev); rerr != nil {
			return errors.Join(err, fmt.Errorf("restore %s: %w", prev, rerr))
		}
		return fmt.Errorf("%w; still playing as %s", err, prev)
	}

	p := newPrinter()
	p.Fprintf(cmd.OutOrStdout(), "Now playing as %s with %d XP.\n", rt.session.Current(), rt.machine.XP())
	return nil
}

func setSession(ctx context.Context, s *identity.Session, id identity.Identity) error {
	if id.IsAnonymous() {
		return s.Logout(ctx)
	}
	return s.Login(ctx, id.UserID())
}

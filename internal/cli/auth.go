package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"plural-chat/internal/models"
)

func newLoginCmd() *cobra.Command {
	var pkToken string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in with username/password, or --pk-token for PluralKit login",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if pkToken != "" {
				resp, err := app.api.Login(ctx, pkToken)
				if err != nil {
					return err
				}
				app.store.SetSession(&models.Session{User: resp.User, Token: resp.AccessToken})
				fmt.Printf("Logged in as %s\n", resp.User.Username)
				return nil
			}

			username := ""
			if len(args) == 1 {
				username = args[0]
			} else {
				username = prompt("Username: ")
			}
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			req := &models.SecurityLoginRequest{Username: username, Password: password}
			resp, err := app.api.LoginWithPassword(ctx, req)
			if err != nil {
				return err
			}

			if resp.Requires2FA {
				req.TOTPCode = prompt("2FA code: ")
				resp, err = app.api.LoginWithPassword(ctx, req)
				if err != nil {
					return err
				}
			}

			user, err := app.api.Verify(ctx)
			if err != nil {
				return err
			}
			app.store.SetSession(&models.Session{User: *user, Token: resp.AccessToken})
			fmt.Printf("Logged in as %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&pkToken, "pk-token", "", "log in with a PluralKit token instead of a password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			resp, err := app.api.RegisterAccount(cmd.Context(), &models.RegisterRequest{
				Username: args[0],
				Password: password,
				Email:    email,
			})
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "optional email address")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.api.Logout(cmd.Context()); err != nil {
				// The local credential is gone either way.
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
			app.store.ClearSession()
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			session := app.store.Session()
			fmt.Printf("Logged in as %s (id %d)\n", session.User.Username, session.User.ID)
			if session.User.SystemName != "" {
				fmt.Printf("System: %s\n", session.User.SystemName)
			}
			fmt.Printf("Two-factor auth: %v\n", session.User.TOTPEnabled)
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync members from the linked PluralKit system",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			result, err := app.api.SyncPluralKit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Sync complete: %d added, %d updated\n", result.Added, result.Updated)
			for _, e := range result.Errors {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", e)
			}
			return nil
		},
	}
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

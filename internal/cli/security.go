package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plural-chat/internal/export"
	"plural-chat/internal/models"
)

func newSecurityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Account security: 2FA, backup codes, audit log, password",
	}
	cmd.AddCommand(
		new2FACmd(),
		newBackupCodesCmd(),
		newAuditCmd(),
		newPasswdCmd(),
		newProfileCmd(),
	)
	return cmd
}

func new2FACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "2fa",
		Short: "Manage two-factor authentication",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether 2FA is enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			resp, err := app.api.TwoFactorStatus(cmd.Context())
			if err != nil {
				return err
			}
			if resp.Enabled {
				fmt.Printf("2FA enabled, %d backup codes remaining\n", resp.BackupCodesRemaining)
			} else {
				fmt.Println("2FA disabled")
			}
			return nil
		},
	}

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Generate a 2FA secret and backup codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			resp, err := app.api.Setup2FA(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Secret: %s\n", resp.Secret)
			fmt.Println("Add it to your authenticator app, then run 'pluralchat security 2fa enable <code>'.")
			fmt.Println("Backup codes (store these somewhere safe):")
			for _, code := range resp.BackupCodes {
				fmt.Printf("  %s\n", code)
			}
			return nil
		},
	}

	enable := &cobra.Command{
		Use:   "enable <code>",
		Short: "Confirm setup with a code from your authenticator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			resp, err := app.api.Enable2FA(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}

	var disableCode string
	disable := &cobra.Command{
		Use:   "disable",
		Short: "Turn off 2FA with your password or a current code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			password := ""
			if disableCode == "" {
				var err error
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}
			resp, err := app.api.Disable2FA(cmd.Context(), password, disableCode)
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
	disable.Flags().StringVar(&disableCode, "code", "", "current TOTP code instead of the password")

	cmd.AddCommand(status, setup, enable, disable)
	return cmd
}

func newBackupCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup-codes <code>",
		Short: "Regenerate backup codes, invalidating the old set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			resp, err := app.api.RegenerateBackupCodes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println("New backup codes:")
			for _, code := range resp.BackupCodes {
				fmt.Printf("  %s\n", code)
			}
			return nil
		},
	}
}

func newAuditCmd() *cobra.Command {
	var limit, days int
	var category, output string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the account's audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			logs, err := app.api.AuditLogs(cmd.Context(), limit, category, days)
			if err != nil {
				return err
			}

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := export.WriteAuditCSV(f, logs); err != nil {
					os.Remove(output)
					return err
				}
				fmt.Printf("Exported %d entries to %s\n", len(logs), output)
				return nil
			}

			for _, entry := range logs {
				status := "ok"
				if !entry.Success {
					status = "FAILED"
				}
				fmt.Printf("%s  %-24s %-8s %s\n", entry.Timestamp, entry.EventType, status, entry.Description)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "number of entries")
	cmd.Flags().IntVar(&days, "days", 0, "only entries from the last N days")
	cmd.Flags().StringVar(&category, "category", "", "filter by category, e.g. auth")
	cmd.Flags().StringVar(&output, "out", "", "write entries to a CSV file instead")
	return cmd
}

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			current, err := promptPassword("Current password: ")
			if err != nil {
				return err
			}
			next, err := promptPassword("New password: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword("Confirm new password: ")
			if err != nil {
				return err
			}
			if next != confirm {
				return fmt.Errorf("passwords do not match")
			}
			resp, err := app.api.ChangePassword(cmd.Context(), current, next)
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	var email, systemName, themeColor, avatar string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			if avatar != "" {
				f, err := os.Open(avatar)
				if err != nil {
					return err
				}
				defer f.Close()
				user, err := app.api.UploadAvatar(cmd.Context(), f.Name(), f)
				if err != nil {
					return err
				}
				fmt.Printf("Avatar updated for %s\n", user.Username)
			}

			req := &models.UpdateProfileRequest{}
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			if cmd.Flags().Changed("system-name") {
				req.SystemName = &systemName
			}
			if cmd.Flags().Changed("theme-color") {
				req.ThemeColor = &themeColor
			}
			if req.Email == nil && req.SystemName == nil && req.ThemeColor == nil {
				return nil
			}

			user, err := app.api.UpdateProfile(cmd.Context(), req)
			if err != nil {
				return err
			}
			session := app.store.Session()
			if session != nil {
				session.User = *user
				app.store.SetSession(session)
			}
			fmt.Println("Profile updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&systemName, "system-name", "", "system display name")
	cmd.Flags().StringVar(&themeColor, "theme-color", "", "theme color, e.g. #7289da")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar image file to upload")
	return cmd
}

package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"plural-chat/internal/api"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin console (requires an admin account)",
	}
	cmd.AddCommand(
		newAdminDashboardCmd(),
		newAdminUsersCmd(),
		newAdminStatsCmd(),
		newAdminConfigCmd(),
	)
	return cmd
}

func newAdminDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show instance totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			d, err := app.api.AdminDashboardStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Users:    %d (%d active)\n", d.TotalUsers, d.ActiveUsers)
			fmt.Printf("Members:  %d\n", d.TotalMembers)
			fmt.Printf("Channels: %d\n", d.TotalChannels)
			fmt.Printf("Messages: %d\n", d.TotalMessages)
			return nil
		},
	}
}

func newAdminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	var limit int
	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			users, err := app.api.AdminUsers(cmd.Context(), limit, search)
			if err != nil {
				return err
			}
			for _, u := range users {
				line := fmt.Sprintf("%4d  %-20s %d members, %d messages", u.ID, u.Username, u.MemberCount, u.MessageCount)
				if u.IsAdmin {
					line += "  [admin]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "number of accounts")
	list.Flags().StringVar(&search, "search", "", "filter by username")

	var makeAdmin, dropAdmin, disable, enable bool
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an account's flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			req := &api.AdminUserUpdate{}
			if makeAdmin || dropAdmin {
				v := makeAdmin
				req.IsAdmin = &v
			}
			if disable || enable {
				v := disable
				req.Disabled = &v
			}
			if req.IsAdmin == nil && req.Disabled == nil {
				return fmt.Errorf("nothing to update, pass --admin/--no-admin or --disable/--enable")
			}

			user, err := app.api.AdminUpdateUser(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s (admin: %v)\n", user.Username, user.IsAdmin)
			return nil
		},
	}
	update.Flags().BoolVar(&makeAdmin, "admin", false, "grant admin")
	update.Flags().BoolVar(&dropAdmin, "no-admin", false, "revoke admin")
	update.Flags().BoolVar(&disable, "disable", false, "disable the account")
	update.Flags().BoolVar(&enable, "enable", false, "re-enable the account")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account and all its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.api.AdminDeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted user %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, update, remove)
	return cmd
}

func newAdminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			stats, err := app.api.AdminDatabaseStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Database size: %d bytes\n", stats.SizeBytes)

			tables := make([]string, 0, len(stats.Tables))
			for name := range stats.Tables {
				tables = append(tables, name)
			}
			sort.Strings(tables)
			for _, name := range tables {
				fmt.Printf("  %-20s %d rows\n", name, stats.Tables[name])
			}
			return nil
		},
	}
}

func newAdminConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show instance feature settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			cfg, err := app.api.AdminConfig(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(cfg))
			for k := range cfg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%-30s %v\n", k, cfg[k])
			}
			return nil
		},
	}
}

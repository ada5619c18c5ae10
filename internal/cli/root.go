package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plural-chat/internal/api"
	"plural-chat/internal/config"
	"plural-chat/internal/models"
	"plural-chat/internal/storage"
	"plural-chat/internal/store"
	"plural-chat/pkg/logger"
)

// App wires the core together for the commands: config, local storage,
// the REST gateway and the store. The CLI itself is presentation only.
type App struct {
	cfg   *config.Config
	local *storage.Local
	api   *api.Client
	store *store.Store
}

var app *App

var debugFlag bool

func newApp() (*App, error) {
	cfg := config.Load()
	local, err := storage.Open(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:   cfg,
		local: local,
		api:   api.NewClientWithTimeout(cfg.Server.URL, local, cfg.Server.RequestTimeout),
		store: store.New(local),
	}, nil
}

func (a *App) Close() {
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			logger.Error("Failed to close local storage: %v", err)
		}
	}
}

// requireSession verifies the stored credential and populates the store's
// session. Commands that talk to authenticated endpoints call this first.
func (a *App) requireSession(ctx context.Context) error {
	info, err := a.api.InspectToken()
	if err != nil {
		return fmt.Errorf("not logged in, run 'pluralchat login' first")
	}
	if info.Expired() {
		a.api.ClearToken()
		return fmt.Errorf("session expired, run 'pluralchat login' again")
	}

	user, err := a.api.Verify(ctx)
	if err != nil {
		if api.IsCategory(err, api.CategoryUnauthenticated) {
			a.api.ClearToken()
			return fmt.Errorf("session rejected by server, run 'pluralchat login' again")
		}
		return err
	}
	a.store.SetSession(&models.Session{User: *user, Token: a.api.Token()})
	return nil
}

func Execute() {
	root := &cobra.Command{
		Use:           "pluralchat",
		Short:         "Terminal client for the Plural Chat service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetDebug(debugFlag)
			var err error
			app, err = newApp()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.Close()
			}
		},
	}

	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newSyncCmd(),
		newMembersCmd(),
		newChannelsCmd(),
		newMessagesCmd(),
		newChatCmd(),
		newSecurityCmd(),
		newAdminCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

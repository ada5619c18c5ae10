package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"plural-chat/internal/models"
	"plural-chat/internal/realtime"
	"plural-chat/pkg/logger"
)

func newChatCmd() *cobra.Command {
	var channelID int
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the live chat view",
		Long: `Loads a snapshot of members, channels and recent messages, connects
the realtime channel, and appends incoming messages as they arrive.
Lines you type are sent through the REST gateway; a leading proxy tag
selects the matching member. /quit leaves.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.requireSession(ctx); err != nil {
				return err
			}

			// Keep log lines out of the interactive view.
			logPath := filepath.Join(app.cfg.Data.Dir, "chat.log")
			if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				logger.SetOutput(logFile)
				defer logFile.Close()
			}

			if err := loadSnapshot(ctx, historyLimit, channelID); err != nil {
				return err
			}

			selected := app.store.SelectedChannel()
			if selected == nil {
				return fmt.Errorf("no channel available, create one with 'pluralchat channels create'")
			}
			fmt.Printf("-- #%s --\n", selected.Name)
			for _, msg := range app.store.Messages() {
				printMessage(&msg)
			}

			// Print messages appended after the snapshot, whichever path
			// they arrive on. Subscribers run on whichever goroutine
			// mutated the store, so the cursor needs its own lock.
			var printMu sync.Mutex
			printed := len(app.store.Messages())
			app.store.Subscribe(func() {
				printMu.Lock()
				defer printMu.Unlock()
				messages := app.store.Messages()
				for ; printed < len(messages); printed++ {
					printMessage(&messages[printed])
				}
			})

			channel := realtime.New(app.cfg.Server.WebSocketURL, app.api, app.store)
			if err := channel.Connect(ctx); err != nil {
				// Chat still works over REST; the view just will not
				// update until the next snapshot.
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
			defer channel.Close()

			return chatLoop(ctx)
		},
	}

	cmd.Flags().IntVar(&channelID, "channel", 0, "channel id to open (default: the default channel)")
	cmd.Flags().IntVar(&historyLimit, "history", 50, "messages of history to load")
	return cmd
}

// loadSnapshot replaces the store collections wholesale. Called once per
// chat session; realtime events take over from there.
func loadSnapshot(ctx context.Context, historyLimit, channelID int) error {
	members, err := app.api.Members(ctx)
	if err != nil {
		return err
	}
	app.store.SetMembers(members)

	channels, err := app.api.Channels(ctx, false)
	if err != nil {
		return err
	}
	app.store.SetChannels(channels)

	if channelID > 0 {
		if !app.store.SelectChannel(channelID) {
			return fmt.Errorf("channel %d not found", channelID)
		}
	} else if app.store.SelectedChannel() == nil {
		if fallback, ok := app.store.DefaultChannel(); ok {
			app.store.SelectChannel(fallback.ID)
		}
	}

	var scope *int
	if selected := app.store.SelectedChannel(); selected != nil {
		id := selected.ID
		scope = &id
	}
	messages, err := app.api.Messages(ctx, historyLimit, scope)
	if err != nil {
		return err
	}
	app.store.SetMessages(messages)
	return nil
}

func chatLoop(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "/quit" {
				return nil
			}
			if err := sendLine(ctx, line); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// sendLine routes a draft through proxy-tag matching and the REST create.
// The response is applied immediately; the realtime echo then merges into
// a no-op.
func sendLine(ctx context.Context, line string) error {
	req := &models.CreateMessageRequest{Content: line}

	members := app.store.Members()
	if member, stripped, ok := models.MatchMember(members, line); ok {
		req.Content = stripped
		req.MemberID = &member.ID
	} else if selected, ok := app.store.SelectedMember(); ok {
		req.MemberID = &selected.ID
	}

	if selected := app.store.SelectedChannel(); selected != nil {
		id := selected.ID
		req.ChannelID = &id
	}

	message, err := app.api.CreateMessage(ctx, req)
	if err != nil {
		return err
	}
	app.store.AddMessage(*message)
	return nil
}

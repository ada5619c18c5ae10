package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"plural-chat/internal/api"
	"plural-chat/internal/export"
	"plural-chat/internal/models"
)

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Read, send and export messages",
	}
	cmd.AddCommand(newMessagesListCmd(), newMessagesSendCmd(), newMessagesExportCmd())
	return cmd
}

func newMessagesListCmd() *cobra.Command {
	var limit, channelID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			var channel *int
			if channelID > 0 {
				channel = &channelID
			}
			messages, err := app.api.Messages(cmd.Context(), limit, channel)
			if err != nil {
				return err
			}
			app.store.SetMessages(messages)

			for i := range messages {
				printMessage(&messages[i])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "number of messages")
	cmd.Flags().IntVar(&channelID, "channel", 0, "restrict to a channel id")
	return cmd
}

func newMessagesSendCmd() *cobra.Command {
	var memberID, channelID int

	cmd := &cobra.Command{
		Use:   "send <content>",
		Short: "Send one message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			req := &models.CreateMessageRequest{Content: args[0]}
			if memberID > 0 {
				req.MemberID = &memberID
			}
			if channelID > 0 {
				req.ChannelID = &channelID
			}

			message, err := app.api.CreateMessage(cmd.Context(), req)
			if err != nil {
				return err
			}
			app.store.AddMessage(*message)
			fmt.Printf("Sent as %s (message %d)\n", message.AuthorName(), message.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&memberID, "member", 0, "send as this member id")
	cmd.Flags().IntVar(&channelID, "channel", 0, "send into this channel id")
	return cmd
}

func newMessagesExportCmd() *cobra.Command {
	var format, startDate, endDate, output string
	var local bool
	var channelID int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download message history as json, csv or txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			exportFormat := api.ExportFormat(format)
			switch exportFormat {
			case api.ExportJSON, api.ExportCSV, api.ExportText:
			default:
				return fmt.Errorf("format must be json, csv or txt")
			}

			if output == "" {
				output = export.Filename("plural_chat_export", format)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			if local {
				err = exportLocal(cmd.Context(), exportFormat, channelID, f)
			} else {
				err = app.api.ExportMessages(cmd.Context(), exportFormat, startDate, endDate, f)
			}
			if err != nil {
				os.Remove(output)
				return err
			}
			fmt.Printf("Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format: json, csv or txt")
	cmd.Flags().StringVar(&startDate, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&output, "out", "", "output file (default: generated name)")
	cmd.Flags().BoolVar(&local, "local", false, "render the export client-side from fetched history")
	cmd.Flags().IntVar(&channelID, "channel", 0, "with --local, restrict to a channel id")
	return cmd
}

// exportLocal fetches history through the gateway and renders the file
// client-side, for servers without the export endpoints.
func exportLocal(ctx context.Context, format api.ExportFormat, channelID int, f *os.File) error {
	var channel *int
	if channelID > 0 {
		channel = &channelID
	}
	messages, err := app.api.Messages(ctx, 0, channel)
	if err != nil {
		return err
	}
	app.store.SetMessages(messages)

	switch format {
	case api.ExportCSV:
		return export.WriteMessagesCSV(f, messages)
	case api.ExportText:
		return export.WriteMessagesText(f, messages)
	default:
		return export.WriteMessagesJSON(f, messages)
	}
}

func printMessage(msg *models.Message) {
	name := msg.AuthorName()
	fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), name, msg.Content)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

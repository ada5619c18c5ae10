package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"plural-chat/internal/models"
)

func newChannelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Manage channels",
	}
	cmd.AddCommand(
		newChannelsListCmd(),
		newChannelsCreateCmd(),
		newChannelsUpdateCmd(),
		newChannelsDeleteCmd(),
		newChannelsArchiveCmd(),
		newChannelsReorderCmd(),
	)
	return cmd
}

func newChannelsListCmd() *cobra.Command {
	var includeArchived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List channels in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			channels, err := app.api.Channels(cmd.Context(), includeArchived)
			if err != nil {
				return err
			}
			app.store.SetChannels(channels)

			for _, c := range channels {
				marker := " "
				if c.IsDefault {
					marker = "*"
				}
				line := fmt.Sprintf("%s %4d  %s", marker, c.ID, c.Name)
				if c.IsArchived {
					line += "  (archived)"
				}
				if c.MessageCount > 0 {
					line += fmt.Sprintf("  %d messages", c.MessageCount)
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeArchived, "archived", false, "include archived channels")
	return cmd
}

func newChannelsCreateCmd() *cobra.Command {
	var description, color, emoji string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			channel, err := app.api.CreateChannel(cmd.Context(), &models.CreateChannelRequest{
				Name:        args[0],
				Description: description,
				Color:       color,
				Emoji:       emoji,
			})
			if err != nil {
				return err
			}
			app.store.AddChannel(*channel)
			fmt.Printf("Created channel #%s (id %d)\n", channel.Name, channel.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "channel description")
	cmd.Flags().StringVar(&color, "color", "", "channel color, e.g. #43b581")
	cmd.Flags().StringVar(&emoji, "emoji", "", "channel emoji")
	return cmd
}

func newChannelsUpdateCmd() *cobra.Command {
	var name, description, color, emoji string
	var position int

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			req := &models.UpdateChannelRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("color") {
				req.Color = &color
			}
			if cmd.Flags().Changed("emoji") {
				req.Emoji = &emoji
			}
			if cmd.Flags().Changed("position") {
				req.Position = &position
			}
			if *req == (models.UpdateChannelRequest{}) {
				return fmt.Errorf("nothing to update, pass at least one field flag")
			}

			channel, err := app.api.UpdateChannel(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			app.store.PatchChannel(*channel)
			fmt.Printf("Updated channel #%s\n", channel.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "channel name")
	cmd.Flags().StringVar(&description, "description", "", "channel description")
	cmd.Flags().StringVar(&color, "color", "", "channel color, e.g. #43b581")
	cmd.Flags().StringVar(&emoji, "emoji", "", "channel emoji")
	cmd.Flags().IntVar(&position, "position", 0, "display position")
	return cmd
}

func newChannelsDeleteCmd() *cobra.Command {
	var deleteMessages bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.api.DeleteChannel(cmd.Context(), id, deleteMessages); err != nil {
				return err
			}
			app.store.RemoveChannel(id)
			fmt.Printf("Deleted channel %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteMessages, "delete-messages", false, "also delete the channel's messages")
	return cmd
}

func newChannelsArchiveCmd() *cobra.Command {
	var unarchive bool

	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive or unarchive a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var channel *models.Channel
			if unarchive {
				channel, err = app.api.UnarchiveChannel(cmd.Context(), id)
			} else {
				channel, err = app.api.ArchiveChannel(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			app.store.PatchChannel(*channel)

			state := "archived"
			if unarchive {
				state = "unarchived"
			}
			fmt.Printf("Channel #%s %s\n", channel.Name, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unarchive, "undo", false, "unarchive instead")
	return cmd
}

func newChannelsReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id> [id...]",
		Short: "Reorder channels by listing ids in the desired order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			channels, err := app.api.ReorderChannels(cmd.Context(), ids)
			if err != nil {
				return err
			}
			for _, c := range channels {
				app.store.PatchChannel(c)
			}
			fmt.Println("Channels reordered")
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plural-chat/internal/models"
)

func newMembersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage system members",
	}
	cmd.AddCommand(newMembersListCmd(), newMembersCreateCmd(), newMembersUpdateCmd(), newMembersDeleteCmd(), newMembersAvatarCmd())
	return cmd
}

func newMembersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			members, err := app.api.Members(cmd.Context())
			if err != nil {
				return err
			}
			app.store.SetMembers(members)

			for _, m := range members {
				line := fmt.Sprintf("%4d  %s", m.ID, m.Name)
				if m.Pronouns != "" {
					line += fmt.Sprintf(" (%s)", m.Pronouns)
				}
				if tags := models.ParseProxyTags(m.ProxyTags); len(tags) > 0 {
					line += fmt.Sprintf("  [%s...%s]", tags[0].Prefix, tags[0].Suffix)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newMembersCreateCmd() *cobra.Command {
	var pronouns, color, description, proxyPrefix, proxySuffix string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			req := &models.CreateMemberRequest{
				Name:        args[0],
				Pronouns:    pronouns,
				Color:       color,
				Description: description,
			}
			if proxyPrefix != "" || proxySuffix != "" {
				req.ProxyTags = models.SerializeProxyTags([]models.ProxyTag{
					{Prefix: proxyPrefix, Suffix: proxySuffix},
				})
			}

			member, err := app.api.CreateMember(cmd.Context(), req)
			if err != nil {
				return err
			}
			app.store.AddMember(*member)
			fmt.Printf("Created member %s (id %d)\n", member.Name, member.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&pronouns, "pronouns", "", "member pronouns")
	cmd.Flags().StringVar(&color, "color", "", "display color, e.g. #7289da")
	cmd.Flags().StringVar(&description, "description", "", "member description")
	cmd.Flags().StringVar(&proxyPrefix, "proxy-prefix", "", "proxy tag prefix")
	cmd.Flags().StringVar(&proxySuffix, "proxy-suffix", "", "proxy tag suffix")
	return cmd
}

func newMembersUpdateCmd() *cobra.Command {
	var name, pronouns, color, description, proxyPrefix, proxySuffix string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			// Only flags that were passed go on the wire; the server
			// leaves everything else untouched.
			req := &models.UpdateMemberRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("pronouns") {
				req.Pronouns = &pronouns
			}
			if cmd.Flags().Changed("color") {
				req.Color = &color
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("proxy-prefix") || cmd.Flags().Changed("proxy-suffix") {
				tags := models.SerializeProxyTags([]models.ProxyTag{
					{Prefix: proxyPrefix, Suffix: proxySuffix},
				})
				req.ProxyTags = &tags
			}
			if *req == (models.UpdateMemberRequest{}) {
				return fmt.Errorf("nothing to update, pass at least one field flag")
			}

			member, err := app.api.UpdateMember(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			app.store.PatchMember(*member)
			fmt.Printf("Updated member %s\n", member.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "member name")
	cmd.Flags().StringVar(&pronouns, "pronouns", "", "member pronouns")
	cmd.Flags().StringVar(&color, "color", "", "display color, e.g. #7289da")
	cmd.Flags().StringVar(&description, "description", "", "member description")
	cmd.Flags().StringVar(&proxyPrefix, "proxy-prefix", "", "proxy tag prefix")
	cmd.Flags().StringVar(&proxySuffix, "proxy-suffix", "", "proxy tag suffix")
	return cmd
}

func newMembersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.api.DeleteMember(cmd.Context(), id); err != nil {
				return err
			}
			app.store.RemoveMember(id)
			fmt.Printf("Deleted member %d\n", id)
			return nil
		},
	}
}

func newMembersAvatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <id> <file>",
		Short: "Upload a member avatar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			member, err := app.api.UploadMemberAvatar(cmd.Context(), id, f.Name(), f)
			if err != nil {
				return err
			}
			app.store.PatchMember(*member)
			fmt.Printf("Avatar updated for %s\n", member.Name)
			return nil
		},
	}
}

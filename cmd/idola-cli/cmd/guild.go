package cmd

import (
	"strconv"

	"idola-backend/cmd/idola-cli/globals"
	"idola-backend/cmd/idola-cli/utils"
	"idola-backend/internal/scrapers/idola"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	guildCmd.Flags().Bool("members", false, "Also list the guild's members.")
	rootCmd.AddCommand(guildCmd)
	rootCmd.AddCommand(guildsCmd)
}

func renderGuilds(guilds []idola.Guild) {
	t := utils.NewTable()
	t.AppendHeader(table.Row{"Guild ID", "Display ID", "Name", "Members", "Comment"})
	for _, g := range guilds {
		t.AppendRow(table.Row{g.GuildID, g.DisplayID, g.Name, g.MemberCount, g.Comment})
	}
	t.Render()
}

var guildCmd = &cobra.Command{
	Use:   "guild <guild id | display id | name> [--members]",
	Short: "Show a guild, searching by display id or name when the argument is not a guild id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		members, err := cmd.Flags().GetBool("members")
		if err != nil {
			return err
		}
		svc := globals.Get(cmd.Context()).App.Service
		ctx := cmd.Context()

		var guilds []idola.Guild
		guildId, err := strconv.ParseInt(args[0], 10, 64)
		if err == nil {
			guild, err := svc.Guild(ctx, guildId)
			if err != nil {
				return err
			}
			guilds = []idola.Guild{guild}
		} else {
			guilds, err = svc.SearchGuild(ctx, args[0])
			if err != nil {
				return err
			}
		}
		renderGuilds(guilds)

		if !members {
			return nil
		}
		for _, g := range guilds {
			list, err := svc.GuildMembers(ctx, g.GuildID)
			if err != nil {
				return err
			}
			t := utils.NewTable()
			t.SetTitle(g.Name)
			t.AppendHeader(table.Row{"Profile ID", "Name", "Role"})
			for _, m := range list {
				t.AppendRow(table.Row{m.ProfileID, m.Name, m.Role})
			}
			t.Render()
		}
		return nil
	},
}

var guildsCmd = &cobra.Command{
	Use:   "guilds <start rank> <end rank>",
	Short: "List the guild ranking between two ranks (inclusive).",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := globals.Get(cmd.Context()).App.Service

		start, err := utils.ParsePositive(args[0], "start rank")
		if err != nil {
			return err
		}
		end, err := utils.ParsePositive(args[1], "end rank")
		if err != nil {
			return err
		}

		entries, err := svc.GuildRange(cmd.Context(), start, end)
		if err != nil {
			return err
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Rank", "Name", "Points", "Guild ID"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Rank, e.Name, humanize.Comma(e.Point), e.GuildID})
		}
		t.Render()
		return nil
	},
}

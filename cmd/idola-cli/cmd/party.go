package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"idola-backend/cmd/idola-cli/globals"
	"idola-backend/cmd/idola-cli/utils"
	"idola-backend/internal/party"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	partyCmd.Flags().Bool("options", false, "Show the current and next symbol option bonuses instead.")
	rootCmd.AddCommand(partyCmd)
}

func sideColumns(side party.Side) (characters, weapons, souls []string) {
	for _, u := range side.Units {
		characters = append(characters, u.CharacterLine())
		weapons = append(weapons, u.WeaponLine())
		souls = append(souls, u.SoulLine())
	}
	return characters, weapons, souls
}

func renderComposition(c party.Composition) {
	fmt.Printf("%s (team score %s)\n%s\n", c.PlayerName, humanize.Comma(c.TeamScore), c.AvatarURL)

	t := utils.NewTable()
	t.AppendHeader(table.Row{"Side", "Characters", "Weapon Symbols", "Soul Symbols", "Idomag"})
	for _, side := range []struct {
		name string
		side party.Side
	}{
		{name: "Law", side: c.Law},
		{name: "Chaos", side: c.Chaos},
	} {
		characters, weapons, souls := sideColumns(side.side)
		t.AppendRow(table.Row{
			side.name,
			strings.Join(characters, "\n"),
			strings.Join(weapons, "\n"),
			strings.Join(souls, "\n"),
			side.side.Idomag,
		})
		t.AppendSeparator()
	}
	t.Render()
}

func renderOptions(playerName string, changes []party.OptionChange) {
	fmt.Println(playerName)

	t := utils.NewTable()
	t.AppendHeader(table.Row{"Character", "Symbol", "Current", "Next"})
	for _, c := range changes {
		t.AppendRow(table.Row{c.Character, "Weapon: " + c.WeaponSymbol, strings.Join(c.WeaponCurrent, ", "), strings.Join(c.WeaponNext, ", ")})
		t.AppendRow(table.Row{"", "Soul: " + c.SoulSymbol, strings.Join(c.SoulCurrent, ", "), strings.Join(c.SoulNext, ", ")})
		t.AppendSeparator()
	}
	t.Render()
}

var partyCmd = &cobra.Command{
	Use:   "party <profile id | name | @external id> [--options]",
	Short: "Show the arena party of a player.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		options, err := cmd.Flags().GetBool("options")
		if err != nil {
			return err
		}
		svc := globals.Get(cmd.Context()).App.Service
		ctx := cmd.Context()

		profileId, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			var ok bool
			if strings.HasPrefix(args[0], "@") {
				profileId, ok = svc.ProfileByExternalID(args[0][1:])
			} else {
				profileId, ok, err = svc.ResolveProfileByName(ctx, args[0])
				if err != nil {
					return err
				}
			}
			if !ok {
				fmt.Printf("could not find a profile for %q\n", args[0])
				for _, s := range svc.Suggest(args[0], 5) {
					fmt.Printf("  did you mean %s (%d)?\n", s.Name, s.ProfileID)
				}
				return nil
			}
		}

		if options {
			name, changes, err := svc.NextOptions(ctx, profileId)
			if err != nil {
				return err
			}
			renderOptions(name, changes)
			return nil
		}

		composition, err := svc.Party(ctx, profileId)
		if err != nil {
			return err
		}
		renderComposition(composition)
		return nil
	},
}

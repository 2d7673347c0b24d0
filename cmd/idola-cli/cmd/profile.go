package cmd

import (
	"fmt"
	"strconv"

	"idola-backend/cmd/idola-cli/globals"
	"idola-backend/cmd/idola-cli/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(registerCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a display name to a profile id using the cache, then the arena top 100.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := globals.Get(cmd.Context()).App.Service

		profileId, ok, err := svc.ResolveProfileByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if ok {
			fmt.Println(profileId)
			return nil
		}

		suggestions := svc.Suggest(args[0], 10)
		if len(suggestions) == 0 {
			fmt.Printf("no profile found for %q\n", args[0])
			return nil
		}
		t := utils.NewTable()
		t.SetTitle("no exact match, closest cached names")
		t.AppendHeader(table.Row{"Name", "Profile ID", "Similarity"})
		for _, s := range suggestions {
			t.AppendRow(table.Row{s.Name, s.ProfileID, fmt.Sprintf("%.2f", s.Similarity)})
		}
		t.Render()
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <external id> <profile id>",
	Short: "Link an external (chat) user id to a profile id.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := globals.Get(cmd.Context()).App.Service

		profileId, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("profile id: %w", err)
		}
		svc.RegisterExternalID(args[0], profileId)
		fmt.Printf("%s -> %d\n", args[0], profileId)
		return nil
	},
}

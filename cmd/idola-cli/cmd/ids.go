package cmd

import (
	"fmt"

	"idola-backend/cmd/idola-cli/globals"
	"idola-backend/cmd/idola-cli/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	lookupCmd.Flags().Int("limit", 10, "Maximum number of matches.")
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(statusCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Search the character, symbol and idomag tables by name.",
	Args:  cobra.ExactArgs(1),

	// identity tables are local, no login needed
	Annotations: map[string]string{offline: "true"},

	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		identity := globals.Get(cmd.Context()).App.Identity

		t := utils.NewTable()
		t.AppendHeader(table.Row{"ID Prefix", "Name", "Similarity"})
		for _, m := range identity.Search(args[0], limit) {
			t.AppendRow(table.Row{m.Key, m.Name, fmt.Sprintf("%.2f", m.Similarity)})
		}
		t.Render()
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state and local table sizes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := globals.Get(cmd.Context()).App
		session := a.Client.Session()

		t := utils.NewTable()
		t.AppendRows([]table.Row{
			{"Session", a.Client.State().String()},
			{"App version", session.AppVersion},
			{"Resource version", session.ResourceVersion},
			{"Identity entries", a.Identity.Table().Len()},
			{"Cached profiles", fmt.Sprintf("%d / %d", a.Cache.Len(), a.Cache.Capacity())},
			{"Registered external ids", a.Registry.Len()},
		})
		t.Render()
		return nil
	},
}

package cmd

import (
	"fmt"

	"idola-backend/cmd/idola-cli/globals"
	"idola-backend/cmd/idola-cli/utils"
	"idola-backend/internal/service"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(borderCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(endCmd)
}

var borderCmd = &cobra.Command{
	Use:   "border <arena|suppression|creation> <rank>...",
	Short: "Show the score at exactly the given ranks of the current event.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := globals.Get(cmd.Context()).App.Service

		kind, err := utils.ParseKind(args[0])
		if err != nil {
			return err
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Rank", "Score"})
		for _, arg := range args[1:] {
			tier, err := utils.ParsePositive(arg, "rank")
			if err != nil {
				return err
			}
			result, err := svc.Border(cmd.Context(), kind, tier)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{tier, service.FormatBorder(result)})
		}
		t.Render()
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top <arena|suppression|creation> <n>",
	Short: "List the top n players of the current event.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := globals.Get(cmd.Context()).App.Service

		kind, err := utils.ParseKind(args[0])
		if err != nil {
			return err
		}
		n, err := utils.ParsePositive(args[1], "n")
		if err != nil {
			return err
		}

		entries, err := svc.TopN(cmd.Context(), kind, n)
		if err != nil {
			return err
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Rank", "Name", "Score", "Profile ID"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Rank, e.DisplayName, humanize.Comma(e.Score), e.ProfileID})
		}
		t.Render()
		return nil
	},
}

var endCmd = &cobra.Command{
	Use:   "end <arena|suppression|creation>",
	Short: "Show when the current event ends.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := globals.Get(cmd.Context()).App.Service

		kind, err := utils.ParseKind(args[0])
		if err != nil {
			return err
		}
		timing, err := svc.EventEndDate(cmd.Context(), kind)
		if err != nil {
			return err
		}
		fmt.Printf(
			"event %d ends %s (%s left)\n",
			timing.EventID,
			timing.EndDate.Format("2006-01-02 15:04:05 MST-0700"),
			timing.TimeLeft,
		)
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finanze/internal/cli"
	"finanze/internal/report"
)

func listCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent transactions of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := e.withPeriod(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			items := rt.App.Views().Recent
			if all, _ := cmd.Flags().GetBool("all"); all {
				txns := rt.App.Filtered()
				items = make([]report.Item, 0, len(txns))
				for _, tx := range report.Recent(txns, len(txns)) {
					items = append(items, report.NewItem(tx))
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.NewRenderer(cmd.OutOrStdout()).Transactions(items))
			return nil
		},
	}
	addPeriodFlag(cmd)
	cmd.Flags().BoolP("all", "a", false, fmt.Sprintf("show every transaction instead of the last %d", report.RecentLimit))
	return cmd
}

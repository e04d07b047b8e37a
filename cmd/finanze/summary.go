package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finanze/internal/cli"
)

func summaryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, statistics and the expense breakdown of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := e.withPeriod(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			fmt.Fprint(cmd.OutOrStdout(), cli.NewRenderer(cmd.OutOrStdout()).Summary(rt.App.Views()))
			return nil
		},
	}
	addPeriodFlag(cmd)
	return cmd
}

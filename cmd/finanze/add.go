package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finanze/internal/app"
	"finanze/internal/cli"
	"finanze/internal/core"
	"finanze/internal/ledger"
	"finanze/internal/report"
)

func addCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <income|expense> <amount>",
		Short: "Record a transaction",
		Example: `  finanze add expense 12,50 --category Cibo
  finanze add income 1500 --date 2024-01-27`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := core.ParseKind(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", app.MsgInvalidKind, err)
			}
			rt, err := e.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			date := flagString(cmd, "date")
			if date == "" {
				date = rt.App.Today().String()
			}

			tx, err := rt.App.Add(cmd.Context(), core.Draft{
				Kind:     kind,
				Category: flagString(cmd, "category"),
				Date:     date,
				Amount:   args[1],
			})
			r := cli.NewRenderer(cmd.OutOrStdout())
			switch {
			case err == nil:
				fmt.Fprintln(cmd.OutOrStdout(), r.Success(app.MsgAdded))
			case errors.Is(err, ledger.ErrPersistenceWrite):
				fmt.Fprintln(cmd.OutOrStdout(), r.Warning(app.MsgSaveFailed))
				return err
			default:
				return fmt.Errorf("%s: %w", app.Message(err), err)
			}
			fmt.Fprint(cmd.OutOrStdout(), r.Transactions([]report.Item{report.NewItem(tx)}))
			return nil
		},
	}
	cmd.Flags().StringP("category", "c", "", "expense category ("+fmt.Sprint(report.Categories)+")")
	cmd.Flags().StringP("date", "d", "", "date as YYYY-MM-DD (default today)")
	return cmd
}

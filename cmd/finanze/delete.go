package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"finanze/internal/app"
	"finanze/internal/cli"
	"finanze/internal/ledger"
	"finanze/internal/report"
)

func deleteCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}

			rt, err := e.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			r := cli.NewRenderer(out)
			tx, err := rt.App.RequestDelete(id)
			if err != nil {
				return fmt.Errorf("%s: %w", app.Message(err), err)
			}
			fmt.Fprint(out, r.Transactions([]report.Item{report.NewItem(tx)}))

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := cli.Confirm(cmd.Context(), cmd.InOrStdin(), out, "Eliminare questa transazione?")
				if err != nil || !ok {
					rt.App.CancelDelete()
					fmt.Fprintln(out, "Annullato")
					return err
				}
			}

			removed, err := rt.App.ConfirmDelete(cmd.Context())
			if errors.Is(err, ledger.ErrPersistenceWrite) {
				fmt.Fprintln(out, r.Warning(app.MsgSaveFailed))
				return err
			}
			if err != nil {
				return err
			}
			if !removed {
				return errors.New(app.MsgNotFound)
			}
			fmt.Fprintln(out, r.Success(app.MsgDeleted))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

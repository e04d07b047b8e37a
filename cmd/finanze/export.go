package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finanze/internal/app"
	"finanze/internal/cli"
	"finanze/internal/export"
)

func exportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the transactions of a period to CSV or Google Sheets",
		Example: `  finanze export --period month
  finanze export -o - | less
  finanze export --sheets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := e.withPeriod(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			r := cli.NewRenderer(out)

			if toSheets, _ := cmd.Flags().GetBool("sheets"); toSheets {
				txns := rt.App.Filtered()
				if len(txns) == 0 {
					fmt.Fprintln(out, r.Warning(app.MsgNothingToSend))
					return export.ErrEmptyExportSet
				}
				w, err := rt.SheetWriter(cmd.Context())
				if err != nil {
					return err
				}
				ref, err := w.WriteTransactions(cmd.Context(), txns)
				if err != nil {
					return fmt.Errorf("write to Google Sheets: %w", err)
				}
				fmt.Fprintln(out, r.Success(fmt.Sprintf("%s (%d → %s)", app.MsgExported, len(txns), ref)))
				return nil
			}

			data, name, err := rt.App.Export()
			if errors.Is(err, export.ErrEmptyExportSet) {
				fmt.Fprintln(out, r.Warning(app.MsgNothingToSend))
				return err
			}
			if err != nil {
				return err
			}

			target := flagString(cmd, "output")
			if target == "-" {
				_, err := out.Write(append(data, '\n'))
				return err
			}
			if target == "" {
				target = name
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintln(out, r.Success(app.MsgExported+" "+target))
			return nil
		},
	}
	addPeriodFlag(cmd)
	cmd.Flags().StringP("output", "o", "", `output file, "-" for stdout (default transazioni_<date>.csv)`)
	cmd.Flags().Bool("sheets", false, "write to the configured Google spreadsheet instead of a file")
	return cmd
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finanze/internal/amqp"
	"finanze/internal/cli"
	"finanze/internal/log"
	"finanze/internal/worker"
)

func eventsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print ledger events published to RabbitMQ",
		Long: `events consumes the ledger event queue and prints every created or
deleted transaction until interrupted. It needs AMQP_URL.

With --sync-sheets it also keeps the configured Google Sheet in step with the
ledger, starting from the ledger as it is stored now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !e.cfg.AMQPEnabled() {
				return errors.New("AMQP_URL is not set")
			}
			ctx, cancel := cli.GracefulShutdown(cmd.Context(), e.logger)
			defer cancel()

			var mirror *worker.SyncWorker
			if syncSheets, _ := cmd.Flags().GetBool("sync-sheets"); syncSheets {
				opts := e.opts
				opts.SkipEvents = true
				rt, err := cli.Bootstrap(ctx, e.cfg, e.logger, opts)
				if err != nil {
					return err
				}
				defer rt.Close()

				writer, err := rt.SheetWriter(ctx)
				if err != nil {
					return err
				}
				mirror = worker.NewSyncWorker(writer, e.logger)
				if err := mirror.StartupSync(ctx, rt.Ledger.List()); err != nil {
					return fmt.Errorf("startup sync: %w", err)
				}
			}

			client, err := amqp.NewClient(e.cfg.AMQPURL, e.cfg.AMQPExchange, e.cfg.AMQPQueue, e.logger)
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			r := cli.NewRenderer(out)
			e.logger.Info("Consuming ledger events",
				"queue", e.cfg.AMQPQueue,
				"sync_sheets", mirror != nil,
				log.FieldOperation, log.OpStartup)

			err = client.ConsumeWithRetry(ctx, func(ev *amqp.LedgerEvent) error {
				if _, err := fmt.Fprintln(out, r.Event(ev)); err != nil {
					return err
				}
				if mirror == nil {
					return nil
				}
				return mirror.HandleEvent(ctx, ev)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Bool("sync-sheets", false, "mirror the ledger into the configured Google Sheet")
	return cmd
}

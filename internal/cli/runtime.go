package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finanze/internal/amqp"
	"finanze/internal/app"
	"finanze/internal/backend"
	"finanze/internal/config"
	"finanze/internal/ledger"
	"finanze/internal/log"
	"finanze/internal/sheets"
	"finanze/internal/sheets/google"
	"finanze/internal/storage"
)

// Runtime is the wired application shared by every subcommand.
type Runtime struct {
	Config    *config.Config
	Logger    *log.Logger
	App       *app.App
	Ledger    *ledger.Store
	Publisher *amqp.Client

	backend *backend.BackendResult
}

// RuntimeOptions override parts of the wiring, mostly for tests.
type RuntimeOptions struct {
	Clock   func() time.Time
	Factory backend.Factory
	// SkipEvents leaves the AMQP publisher unconnected even when configured.
	SkipEvents bool
}

// Bootstrap builds the blob store, loads the ledger and creates the App.
// A ledger that cannot be read starts empty. An unreachable broker only
// disables event publishing.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger, opts RuntimeOptions) (*Runtime, error) {
	factory := opts.Factory
	if factory == nil {
		factory = backend.NewFactory(logger)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	store, err := ledger.Load(ctx, result.Store, ledger.Options{
		Key:    cfg.LedgerKey,
		Clock:  opts.Clock,
		Logger: logger,
	})
	if err != nil {
		logger.Warn("Starting with an empty ledger", log.FieldError, err, log.FieldOperation, log.OpStartup)
	}

	rt := &Runtime{
		Config:  cfg,
		Logger:  logger,
		Ledger:  store,
		backend: result,
	}

	appOpts := app.Options{
		Clock:          opts.Clock,
		Logger:         logger,
		NotifyDuration: cfg.NotifyDuration,
	}
	if cfg.AMQPEnabled() && !opts.SkipEvents {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Ledger events disabled, broker unreachable", log.FieldError, err)
		} else {
			rt.Publisher = client
			appOpts.Publisher = client
		}
	}

	rt.App = app.New(store, appOpts)
	return rt, nil
}

// SheetWriter returns the configured Google Sheets export sink.
func (rt *Runtime) SheetWriter(ctx context.Context) (sheets.TransactionWriter, error) {
	if !rt.Config.SheetsEnabled() {
		return nil, errors.New("GOOGLE_SPREADSHEET_ID is not set")
	}
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:      rt.Config.GoogleSpreadsheetID,
		SheetName:          rt.Config.GoogleSheetName,
		YearPrefix:         rt.Config.GoogleSheetYearPrefix,
		ServiceAccountJSON: rt.Config.GoogleServiceAccountJSON,
		ServiceAccountFile: rt.Config.GoogleServiceAccountFile,
	}, rt.Logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Ready checks that the blob store answers. An absent ledger is fine.
func (rt *Runtime) Ready(ctx context.Context) error {
	_, err := rt.backend.Store.Load(ctx, rt.Config.LedgerKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// Close releases the broker connection and the blob store.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Publisher != nil {
		errs = append(errs, rt.Publisher.Close())
	}
	errs = append(errs, rt.backend.Close())
	return errors.Join(errs...)
}

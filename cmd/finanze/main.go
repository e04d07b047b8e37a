// Command finanze records income and expenses and reports on them, from the
// terminal or through a small web UI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"finanze/internal/cli"
	"finanze/internal/config"
	"finanze/internal/log"
	"finanze/internal/period"
)

// env carries what every subcommand needs once the root pre-run is done.
type env struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *log.Logger

	in  io.Reader
	out io.Writer
	err io.Writer

	envFile string
	opts    cli.RuntimeOptions
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "finanze",
		Short: "💰 Personal income and expense ledger",
		Long: `finanze keeps a ledger of income and expenses, summarises it by period
and exports it to CSV or Google Sheets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.LoadEnvFile(e.envFile); err != nil {
				return fmt.Errorf("load %s: %w", e.envFile, err)
			}
			cfg, err := cli.LoadAndValidateConfig(e.v)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = cli.SetupLogger(cfg, e.err)
			return nil
		},
	}
	root.SetIn(e.in)
	root.SetOut(e.out)
	root.SetErr(e.err)

	flags := root.PersistentFlags()
	flags.StringVar(&e.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.String("backend", "", "storage backend (memory, file, sqlite)")
	flags.String("data-dir", "", "data directory for the file backend")
	flags.String("sqlite-path", "", "database path for the sqlite backend")
	flags.String("ledger-key", "", "blob key holding the ledger")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	_ = e.v.BindPFlag(config.KeyDataBackend, flags.Lookup("backend"))
	_ = e.v.BindPFlag(config.KeyDataDir, flags.Lookup("data-dir"))
	_ = e.v.BindPFlag(config.KeySQLiteDBPath, flags.Lookup("sqlite-path"))
	_ = e.v.BindPFlag(config.KeyLedgerKey, flags.Lookup("ledger-key"))
	_ = e.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = e.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	root.AddCommand(
		serveCmd(e),
		addCmd(e),
		listCmd(e),
		deleteCmd(e),
		summaryCmd(e),
		exportCmd(e),
		eventsCmd(e),
	)
	return root
}

func main() {
	e := &env{
		v:   config.NewViper(),
		in:  os.Stdin,
		out: os.Stdout,
		err: os.Stderr,
	}
	if err := newRootCmd(e).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// runtime wires the application for one command run. The caller closes it.
func (e *env) runtime(ctx context.Context) (*cli.Runtime, error) {
	return cli.Bootstrap(ctx, e.cfg, e.logger, e.opts)
}

// withPeriod bootstraps the runtime and selects the --period flag's value.
func (e *env) withPeriod(cmd *cobra.Command) (*cli.Runtime, error) {
	p, err := period.Parse(flagString(cmd, "period"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (use one of %v)", err, flagString(cmd, "period"), period.Periods())
	}
	rt, err := e.runtime(cmd.Context())
	if err != nil {
		return nil, err
	}
	rt.App.SetPeriod(p)
	return rt, nil
}

func addPeriodFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("period", "p", string(period.All), "period filter (all, week, month, 30days)")
}

func flagString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}

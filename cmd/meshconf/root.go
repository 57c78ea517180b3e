package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"meshconf/pkg/config"
	"meshconf/pkg/consul"
	"meshconf/pkg/db"
	"meshconf/pkg/generator"
	"meshconf/pkg/journal"
	"meshconf/pkg/logging"
	"meshconf/pkg/store"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	log     *slog.Logger
	closers []func() error
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	root := &cobra.Command{
		Use:   "meshconf",
		Short: "Generate WireGuard mesh configs from node definitions",
		Long: `meshconf reads one definition file per node (nodes/<name>.wg by default),
decides which nodes peer with each other and writes wg-quick configs
(conf_output/<name>.conf, or <name>:<peer>.conf for SplitFiles nodes).

Nothing is written when any definition is invalid.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE: a.setup,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd.Context(), cmd.OutOrStdout(), false)
		}),
	}
	flags := root.PersistentFlags()
	flags.String("nodes-dir", "nodes", "directory holding node definitions")
	flags.String("ext", ".wg", "definition file extension")
	flags.String("output-dir", "conf_output", "directory to write rendered configs")
	flags.String("split-separator", ":", "separator between node and peer in split output names")
	flags.String("source", config.SourceDir, "definition source: dir|consul")
	flags.String("sink", config.SinkDir, "output sink: dir|consul|mysql|stdout")
	flags.String("consul-addr", "127.0.0.1:8500", "consul address (source/sink consul)")
	flags.String("consul-prefix", "meshconf", "consul KV prefix")
	flags.String("mysql-dsn", "", "MySQL DSN (sink mysql)")
	flags.String("journal", "", "SQLite run journal path (empty disables)")
	flags.Int("workers", 4, "nodes rendered concurrently")
	flags.String("log-level", "info", "debug|info|warn|error")
	flags.String("log-format", "text", "text|json")
	flags.VisitAll(func(f *pflag.Flag) {
		_ = a.v.BindPFlag(flagKey(f.Name), f)
	})

	root.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(a),
		newPeersCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	stderr := cmd.ErrOrStderr()
	a.log, err = logging.New(stderr, cfg.LogLevel, cfg.LogFormat, !isTerminal(stderr))
	if err != nil {
		return err
	}
	slog.SetDefault(a.log)
	return nil
}

// run wraps a command body and closes the handles it opened, also when it
// fails.
func (a *app) run(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, a.close())
		}()
		return fn(cmd, args)
	}
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) source() (store.Source, error) {
	switch a.cfg.Source {
	case config.SourceConsul:
		return consul.NewStore(a.cfg.ConsulAddr, a.cfg.ConsulPrefix, a.cfg.SplitSeparator)
	default:
		return store.DirSource{Dir: a.cfg.NodesDir, Ext: a.cfg.Ext}, nil
	}
}

func (a *app) sink(out io.Writer, dryRun bool) (store.Sink, error) {
	if dryRun {
		return store.WriterSink{W: out, Sep: a.cfg.SplitSeparator}, nil
	}
	switch a.cfg.Sink {
	case config.SinkStdout:
		return store.WriterSink{W: out, Sep: a.cfg.SplitSeparator}, nil
	case config.SinkConsul:
		return consul.NewStore(a.cfg.ConsulAddr, a.cfg.ConsulPrefix, a.cfg.SplitSeparator)
	case config.SinkMySQL:
		s, err := db.Open(a.cfg.MySQLDSN, a.cfg.SplitSeparator)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		return store.DirSink{Dir: a.cfg.OutputDir, Sep: a.cfg.SplitSeparator}, nil
	}
}

func (a *app) openJournal(ctx context.Context) (*journal.Journal, error) {
	if a.cfg.Journal == "" {
		return nil, nil
	}
	j, err := journal.Open(ctx, a.cfg.Journal)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, j.Close)
	return j, nil
}

func (a *app) generator(ctx context.Context, out io.Writer, dryRun bool) (*generator.Generator, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	sink, err := a.sink(out, dryRun)
	if err != nil {
		return nil, err
	}
	opts := []generator.Option{
		generator.WithLogger(a.log),
		generator.WithWorkers(a.cfg.Workers),
		generator.WithSeparator(a.cfg.SplitSeparator),
	}
	if !dryRun {
		j, err := a.openJournal(ctx)
		if err != nil {
			return nil, err
		}
		if j != nil {
			opts = append(opts, generator.WithJournal(j))
		}
	}
	return generator.New(src, sink, opts...), nil
}

// flagKey maps a flag name such as nodes-dir to its config key nodes_dir.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/symgraph"
	"github.com/hupe1980/symgraph/blobstore"
	"github.com/hupe1980/symgraph/codec"
	"github.com/hupe1980/symgraph/persistence"
	"github.com/hupe1980/symgraph/resource"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	storeKind  string
	storePath  string
	logLevel   string
	jsonLogs   bool

	cfg    Config
	store  blobstore.BlobStore
	rc     *resource.Controller
	logger *symgraph.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "symgraph",
		Short: "Symbol tables and reference graphs",
		Long: "Build, inspect and rank symbol table snapshots kept in a local directory, " +
			"an S3 bucket or a MinIO endpoint.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "symgraph.yaml", "configuration file")
	flags.StringVar(&a.storeKind, "store", "", "store kind: local, memory, s3 or minio")
	flags.StringVarP(&a.storePath, "dir", "d", "", "directory of a local store")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "log as JSON")

	root.AddCommand(
		a.buildCmd(),
		a.listCmd(),
		a.inspectCmd(),
		a.atCmd(),
		a.usagesCmd(),
		a.treeCmd(),
		a.rankCmd(),
		a.exportCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.storeKind != "" {
		cfg.Store.Kind = a.storeKind
	}
	if a.storePath != "" {
		cfg.Store.Path = a.storePath
		if a.storeKind == "" {
			cfg.Store.Kind = "local"
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if a.jsonLogs {
		a.logger = symgraph.NewLogger(slog.NewJSONHandler(os.Stderr, handlerOpts))
	} else {
		a.logger = symgraph.NewLogger(slog.NewTextHandler(os.Stderr, handlerOpts))
	}

	a.rc = resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.Resources.MemoryLimitBytes,
		MaxWorkers:         cfg.Resources.MaxWorkers,
		IOLimitBytesPerSec: cfg.Resources.IOLimitBytesPerSec,
	})

	a.store, err = openStore(cmd.Context(), cfg, a.rc)
	return err
}

// options returns the facade options derived from the configuration.
func (a *app) options() []symgraph.Option {
	compression, _ := persistence.ParseCompression(a.cfg.Compression)
	c, _ := codec.ByName(a.cfg.Codec)
	return []symgraph.Option{
		symgraph.WithLogger(a.logger),
		symgraph.WithResourceController(a.rc),
		symgraph.WithCompression(compression),
		symgraph.WithCodec(c),
	}
}

// load reads the snapshot named by args[i], or the published HEAD when
// that argument is missing or "HEAD".
func (a *app) load(ctx context.Context, args []string, i int) (*symgraph.Table, string, error) {
	if i >= len(args) || args[i] == blobstore.HeadName {
		return symgraph.LoadHead(ctx, a.store, a.options()...)
	}
	t, err := symgraph.Load(ctx, a.store, args[i], a.options()...)
	return t, args[i], err
}

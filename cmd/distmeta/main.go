package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pg-sharding/distmeta/pkg"
	"github.com/pg-sharding/distmeta/pkg/catalog"
	"github.com/pg-sharding/distmeta/pkg/config"
	"github.com/pg-sharding/distmeta/pkg/dmlog"
	"github.com/pg-sharding/distmeta/pkg/models/dmerror"
	"github.com/pg-sharding/distmeta/qdb"
)

var (
	cfgPath  string
	logLevel string
	lockMode string
	storage  string
	minValue string
	maxValue string
)

var rootCmd = &cobra.Command{
	Use:     "distmeta --config `path-to-config`",
	Short:   "Inspect and maintain shard distribution metadata",
	Version: pkg.DistmetaVersionRevision,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// env is what every subcommand needs: the loaded configuration, the store
// and the catalog built on top of it.
type env struct {
	cfg *config.Catalog
	db  qdb.QDB
	cat *catalog.Catalog
}

func (e *env) Close() {
	if err := e.cat.Close(); err != nil {
		dmlog.Zero.Error().Err(err).Msg("close catalog")
	}
	if err := e.db.Close(); err != nil {
		dmlog.Zero.Error().Err(err).Msg("close qdb")
	}
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.LoadCatalogCfg(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := dmlog.ReloadLogger(cfg.LogFileName, cfg.LogLevel, cfg.PrettyLogs); err != nil {
		return nil, err
	}
	if logLevel != "" {
		if err := dmlog.UpdateZeroLogLevel(logLevel); err != nil {
			return nil, err
		}
	}
	dmlog.Zero.Debug().Str("config", cfg.String()).Msg("running config")

	db, err := qdb.NewQDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &env{cfg: cfg, db: db, cat: cat}, nil
}

var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Create the metadata schema, tables and sequences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		pg, ok := e.db.(*qdb.PgQDB)
		if !ok {
			return fmt.Errorf("init-schema requires qdb_type %q", config.QdbTypePostgres)
		}
		if err := pg.InitSchema(cmd.Context()); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema %s is ready\n", e.cfg.Layout.Schema)
		return err
	},
}

var nextIDCmd = &cobra.Command{
	Use:       "next-id shard|placement",
	Short:     "Allocate a new shard or placement id",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"shard", "placement"},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		var id uint64
		switch args[0] {
		case "shard":
			id, err = e.cat.NextShardID(cmd.Context())
		case "placement":
			id, err = e.cat.NextPlacementID(cmd.Context())
		default:
			return fmt.Errorf("unknown sequence kind %q", args[0])
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
		return err
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe relation-oid",
	Short: "Print partitioning, shard intervals and placements of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid relation oid %q: %w", args[0], err)
		}
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		return describe(cmd.Context(), e.cat, e.db, qdb.RelationID(relID), cmd.OutOrStdout())
	},
}

var deletePlacementCmd = &cobra.Command{
	Use:   "delete-placement placement-id shard-id",
	Short: "Delete one shard placement while holding the shard lock",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		placementID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid placement id %q: %w", args[0], err)
		}
		shardID, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid shard id %q: %w", args[1], err)
		}
		mode, err := catalog.ParseLockMode(lockMode)
		if err != nil {
			return err
		}
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := deletePlacement(cmd.Context(), e.cat, e.db, shardID, placementID, mode); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "placement %d deleted\n", placementID)
		return err
	},
}

var insertShardCmd = &cobra.Command{
	Use:   "insert-shard relation-oid",
	Short: "Allocate a shard id and store a shard interval for a distributed table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid relation oid %q: %w", args[0], err)
		}
		var lo, hi *string
		if cmd.Flags().Changed("min") {
			lo = &minValue
		}
		if cmd.Flags().Changed("max") {
			hi = &maxValue
		}
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		shardID, err := insertShard(cmd.Context(), e.cat, e.db, qdb.RelationID(relID), storage, lo, hi)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), shardID)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "/etc/distmeta/config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "overrides log_level from the config file")
	deletePlacementCmd.Flags().StringVar(&lockMode, "lock-mode", "ExclusiveLock", "shard lock mode taken before the delete")

	insertShardCmd.Flags().StringVar(&storage, "storage", "table", "shard storage: table, foreign or columnar")
	insertShardCmd.Flags().StringVar(&minValue, "min", "", "lower bound of the shard interval")
	insertShardCmd.Flags().StringVar(&maxValue, "max", "", "upper bound of the shard interval")

	rootCmd.AddCommand(initSchemaCmd, nextIDCmd, describeCmd, insertShardCmd, deletePlacementCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		dmlog.Zero.Error().Str("sqlstate", dmerror.Code(err)).Msg(describeError(err))
		os.Exit(1)
	}
}

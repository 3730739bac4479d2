package main

import (
	"context"
	"fmt"
	"log/slog"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"imi_backend/internal/app/di"
	"imi_backend/internal/app/seed"
	"imi_backend/internal/feature/signals/usecase"
	"imi_backend/internal/platform/db"
	platformredis "imi_backend/internal/platform/redis"
)

const defaultRealizeLimit = 50

// deps はコマンドが利用する外部リソースの生成関数です。テストで差し替えます。
type deps struct {
	openDB    func() (*gorm.DB, error)
	openRedis func(ctx context.Context) *redisv9.Client
}

func defaultDeps() deps {
	return deps{
		openDB: func() (*gorm.DB, error) {
			return db.Open(db.LoadConfigFromEnv())
		},
		openRedis: func(ctx context.Context) *redisv9.Client {
			rdb, err := platformredis.NewRedisClient(ctx, platformredis.LoadConfig())
			if err != nil {
				slog.Warn("Redis unavailable. Cache will not be invalidated.", "error", err)
				return nil
			}
			return rdb
		},
	}
}

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "imictl",
		Short:         "IMI backend maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newMigrateCmd(d), newSeedCmd(d), newRealizeCmd(d))
	return root
}

func newMigrateCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := d.openDB()
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb, di.Models()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}

func newSeedCmd(d deps) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert default themes and signals into empty tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := seed.Load(file)
			if err != nil {
				return err
			}
			gdb, err := d.openDB()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rdb := d.openRedis(ctx)
			if rdb != nil {
				defer rdb.Close()
			}

			signalUC := di.NewSignalUsecase(gdb, rdb)
			signals, err := signalUC.SeedSignals(ctx, data.Signals)
			if err != nil {
				return fmt.Errorf("seed signals: %w", err)
			}
			themes, err := di.NewThemeUsecase(gdb, signalUC, data).SeedThemes(ctx, data.Themes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signals: %d stored, themes: %d inserted\n", len(signals), themes)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file (defaults to the embedded data)")
	return cmd
}

func newRealizeCmd(d deps) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "realize",
		Short: "Record realized excess returns for signals whose horizon has elapsed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			gdb, err := d.openDB()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rdb := d.openRedis(ctx)
			if rdb != nil {
				defer rdb.Close()
			}

			report, err := di.NewRealizeUsecase(gdb, rdb).RealizeDue(ctx, limit)
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultRealizeLimit, "maximum number of signals to realize")
	return cmd
}

func printReport(cmd *cobra.Command, r usecase.RealizeReport) {
	fmt.Fprintf(cmd.OutOrStdout(), "due: %d, realized: %d, skipped: %d\n", r.Due, r.Realized, r.Skipped)
}

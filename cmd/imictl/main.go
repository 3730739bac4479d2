// Command imictl はIMIバックエンドの運用コマンド（migrate, seed, realize）を提供します。
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"imi_backend/internal/platform/logger"
)

func main() {
	_ = godotenv.Load()

	zl, err := logger.New()
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	logger.Install(zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultDeps()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

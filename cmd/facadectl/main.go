package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-http-facade/internal/config"
	"github.com/samvad-hq/samvad-http-facade/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "facadectl failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer logger.Close()

	root := newRootCmd(deps{
		loadConfig: config.Load,
		initLogger: logger.Init,
	})
	return root.ExecuteContext(ctx)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"taxdesk/internal/config"
	"taxdesk/internal/logging"
)

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"), "console")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(config.ClientAPIURL())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

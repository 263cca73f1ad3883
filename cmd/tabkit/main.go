// Command tabkit runs ingest jobs described in YAML files.
//
//	tabkit run job.yaml --config config.yml --events
//	tabkit check
//	tabkit version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

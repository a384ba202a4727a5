// Command taxcalc computes Indian income tax, compares regimes and runs
// monthly payroll with TDS.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/incometax/taxcalc/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

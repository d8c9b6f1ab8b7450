package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/randalmurphal/pipekit/cli"
	clierrors "github.com/randalmurphal/pipekit/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(clierrors.ExitCode(err))
}

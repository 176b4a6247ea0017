package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gsms/gsms/internal/cmd"
	gerrors "github.com/gsms/gsms/internal/errors"
	"github.com/gsms/gsms/internal/exitcode"
	"github.com/gsms/gsms/internal/ux"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitcode.Success
	case ctx.Err() != nil:
		fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
		return exitcode.Interrupted
	}

	// Structured errors carry their own suggestions.
	if gerrors.CodeOf(err) == "" {
		err = ux.EnhanceError(err)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitcode.DetermineExitCode(err)
}

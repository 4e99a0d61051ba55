// Command defectdojo queries and manages DefectDojo resources from the shell.
//
// Connection settings come from DEFECTDOJO_* environment variables, optionally
// layered over a dotenv file given with --env-file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

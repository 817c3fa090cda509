// Concord merges independent quality assessments of one artifact into a
// single consensus report.
//
// Usage:
//
//	concord run --inputs ./assessments --rubric rubric.yaml --mapping mapping.yaml
//	concord gen --out fixtures          # generate a synthetic fixture set
//	concord version
//
// Exit codes: 0 success, 1 configuration error, 2 no valid assessments,
// 3 unreadable inputs or unwritable output.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/concord/internal/cli"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(cli.RunContext(ctx))
}

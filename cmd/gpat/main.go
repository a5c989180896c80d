// Command gpat keeps a linear git history and a directory of timestamped
// patch files in sync.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

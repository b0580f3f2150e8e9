// Command sync harvests the order history of one platform into the local
// store.
//
//	sync -platform swiggy [-store sqlite] [-incremental] [-max-pages N] [-verbose]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/foodtracker/internal/cli"
)

func main() {
	flags, err := cli.ParseSyncFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync: %v\n", err)
		os.Exit(2)
	}

	// Ctrl-C stops paging; whatever was fetched is still stored.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.RunSync(ctx, flags, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sync: %v\n", err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}

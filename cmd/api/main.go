// Command api serves the sync trigger, sync jobs, stored orders and
// analytics over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/eshaffer321/foodtracker/internal/cli"
)

func main() {
	flags, err := cli.ParseServeFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if err := cli.RunServe(context.Background(), flags); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

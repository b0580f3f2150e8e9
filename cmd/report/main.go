// Command report prints spending and ordering analytics for one platform.
//
//	report -platform zomato [-range 30] [-start 2024-01-01] [-end 2024-03-31] [-json]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/eshaffer321/foodtracker/internal/cli"
)

func main() {
	flags, err := cli.ParseReportFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(2)
	}

	if err := cli.RunReport(context.Background(), flags, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/de-tools/mpesa-etl/pkg/runtime/terminal"
	sqlsink "github.com/de-tools/mpesa-etl/pkg/store/sql"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Sinks:  sqlsink.DefaultRegistry(),
		Output: os.Stdout,
		Errors: os.Stderr,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/grocer/internal/cli"
)

func main() {
	// Root flags (apply to every subcommand)
	plain := flag.Bool("plain", false, "render ls as a static panel instead of the interactive list")
	flag.Parse()

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	code := cli.Run(args, cli.Options{
		Plain: *plain,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}

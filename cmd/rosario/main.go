// Command rosario plays a guided Rosary recitation.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/santorosario/rosario/internal/cli"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return cli.Execute(cli.Options{
		Version: version,
		IsTerminal: func() bool {
			in, out := os.Stdin.Fd(), os.Stdout.Fd()
			return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
				(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
		},
	})
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	qwikerrors "github.com/GustavoMelloGit/qwik/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗ ┬ ┬┬┬┌─
  ║═╬╗││││├┴┐
  ╚═╝╚└┴┘┴┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "qwik",
		Short: "Resumable task runtime for Go",
		Long: `Qwik is a resumable reactive task runtime for Go.

Components declare effects, watches, and mounts against a container;
the runtime tracks their dependencies, re-runs them when tracked state
changes, and defers client work behind load and visibility triggers.

  • Dependency-tracked watches and effects
  • Single-flight async execution per descriptor
  • Deferred re-invocation via chunk#symbol references
  • Server and client execution environments`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, qwikerrors.Format(err))
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

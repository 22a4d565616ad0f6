package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐ ┬ ┬┌─┐┌┐┌┌┬┐┌─┐
  │─┼┐│ │├─┤│││ │ ├─┤
  └─┘└└─┘┴ ┴┘└┘ ┴ ┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "quanta",
		Short: "Granular observable state for Go",
		Long: `Quanta is a granular observable state library for Go.

Cells hold values and notify observers synchronously, in
registration order, with per-observer panic isolation. The CLI
provides development tooling:

  • Live cell inspector with WebSocket change stream
  • Prometheus metrics endpoint
  • Notification throughput benchmarks
  • Error code reference`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		inspectCmd(),
		benchCmd(),
		explainCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the quanta ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}

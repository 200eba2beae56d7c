// Command streamssr serves the streaming SSR demo and generates its
// static shell.
package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/streamssr/streamssr/internal/config"
	"github.com/streamssr/streamssr/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// useColor is decided once from stdout.
var useColor = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func main() {
	if !useColor {
		errors.DisableColors()
	}

	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "streamssr",
		Short: "Streaming server-side rendering demo",
		Long: `streamssr renders a storefront page as one streamed HTML document.

The static shell paints immediately, data sections stream in as they
resolve, and a small client runtime activates the page and mounts
federated widgets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		generateShellCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the process configuration.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

func paint(code, text string) string {
	if !useColor {
		return text
	}
	return code + text + "\033[0m"
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}

// printError prints coded errors with their hint, others on one line.
func printError(w io.Writer, err error) {
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		fmt.Fprint(w, coded.Format())
		return
	}
	fmt.Fprintf(w, "%s %s\n", paint("\033[31m", "Error:"), err)
}

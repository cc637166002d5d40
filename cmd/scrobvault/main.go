package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scrobvault/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "scrobvault",
	Short: "Archive your last.fm scrobble history",
	Long:  `scrobvault downloads a last.fm user's scrobble history into local JSON archives and fills coverage gaps on every run`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "configuration file (default "+defaultConfigHint+")")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Bool("no-ui", false, "disable the interactive progress display")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// shouldUseTUI decides between the interactive display and plain output.
func shouldUseTUI(noUI bool) bool {
	if noUI {
		return false
	}
	return isTerminal(os.Stdout)
}

func applyColorMode(mode string) {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		// auto: fatih/color detects the terminal on its own.
	}
}

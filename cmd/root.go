// Package cmd holds the respctl command line: a RESP echo server, an
// interactive client and stdin/stdout codec tools.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fzft/go-resp/log"
)

var (
	// Path of an optional TOML config file
	configFile string

	logLevel string

	// Output flags shared by cli and decode
	rawOutput   bool
	noRawOutput bool
	jsonOutput  bool
)

var RootCmd = &cobra.Command{
	Use:           "respctl",
	Short:         "RESP codec tools",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.InitLogger(logLevel)
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path of a TOML config file")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	for _, c := range []*cobra.Command{CliCmd, DecodeCmd} {
		c.Flags().BoolVar(&rawOutput, "raw", false, "Use raw formatting for replies (default when STDOUT is not a tty)")
		c.Flags().BoolVar(&noRawOutput, "no-raw", false, "Force formatted output even when STDOUT is not a tty")
		c.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	}

	RootCmd.AddCommand(ServeCmd, CliCmd, DecodeCmd, EncodeCmd)
}

// Execute runs the command line. version is shown by --version.
func Execute(version string) error {
	RootCmd.Version = version
	defer log.Sync()
	return RootCmd.Execute()
}

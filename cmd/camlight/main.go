// Camlight switches the illuminator of IP cameras that speak the
// JSON-RPC web protocol.
//
// It logs in with the camera's challenge handshake, rewrites the
// Lighting_V2 configuration and reports the outcome. The same command
// handling is available as a long-running bridge that accepts commands over
// MQTT and HTTP.
//
// Usage:
//
//	camlight [command] [flags]
//
// See 'camlight --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/camlight/internal/logging"
	"github.com/muurk/camlight/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		// Failures already rendered as a result box only set the exit code
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "camlight",
	Short: "IP camera light control",
	Long: `Control the built-in illuminator of IP cameras.

Cameras are addressed by the names configured with 'camlight device add',
or directly by address with --device. Passwords are never stored: they are
read from the environment variable named in the device entry, the
--password flag, or an interactive prompt.

Logging is silent unless --log-level or CAMLIGHT_LOG_LEVEL is set.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/camlight/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "camlight %s\n", version.Full())
	},
}

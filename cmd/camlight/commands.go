package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/camlight/internal/config"
	"github.com/muurk/camlight/internal/discovery"
	"github.com/muurk/camlight/internal/lighting"
	"github.com/muurk/camlight/internal/status"
	"github.com/muurk/camlight/internal/ui"
)

const (
	formatDetailed = "detailed"
	formatJSON     = "json"
)

// logoutTimeout bounds the logout sent after a one-shot command
const logoutTimeout = 5 * time.Second

// Device command flags
var (
	deviceRef    string
	username     string
	password     string
	outputFormat string
	scanTimeout  int
	scanFilter   string
)

func init() {
	for _, c := range []*cobra.Command{setCmd, showCmd} {
		c.Flags().StringVarP(&deviceRef, "device", "d", "", "Configured device name or camera address")
		c.Flags().StringVarP(&username, "username", "u", "", "Login user (default from config, or admin)")
		c.Flags().StringVar(&password, "password", "", "Login password (prompted when not configured)")
		c.Flags().StringVar(&outputFormat, "format", formatDetailed, "Output format (detailed, json)")
	}

	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(scanCmd)
}

// setCmd applies a light command
var setCmd = &cobra.Command{
	Use:   "set <command>",
	Short: "Switch the camera light",
	Long: `Log in to the camera and apply a light command.

Commands (case-insensitive):
  <0-100>             light on at that brightness
  on                  light on at full brightness
  auto [brightness]   automatic mode, full brightness when omitted or 0
  off                 light off

Anything else turns the light off.`,
	Example: `  # Turn the light on at full brightness
  camlight set on --device garage

  # Light on at 40%
  camlight set 40 --device garage

  # Automatic mode at 60% on the only configured camera
  camlight set auto 60

  # Address a camera directly and print JSON
  camlight set off --device 192.168.1.108 --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")
	opts, err := deviceOptions(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := ui.NewPrinter(out)
	if outputFormat != formatJSON {
		printer.PrintHeader(ui.NewHeader("Set light", "camlight set "+command,
			ui.Param{Key: "Device", Value: opts.Name},
			ui.Param{Key: "Address", Value: opts.Address},
		))
	}

	var res lighting.OperationResult
	err = ui.RunWithSpinner(cmd.Context(), spinnerOutput(out), lighting.LabelLoggingIn,
		func(ctx context.Context, r status.Reporter) error {
			opts.Reporter = r
			d := lighting.NewDevice(opts)
			defer closeDevice(d)
			res = d.HandleCommand(ctx, command)
			return nil
		})
	if err != nil {
		return err
	}

	if outputFormat == formatJSON {
		if err := writeJSON(out, res); err != nil {
			return err
		}
	} else {
		printer.PrintResult(ui.CommandResult(opts.Name, command, res))
	}
	if !res.Success {
		return errReported
	}
	return nil
}

// showCmd reads the current light settings
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the camera light settings",
	Long: `Log in to the camera and print the current Lighting_V2 mode and brightness.`,
	Example: `  camlight show --device garage
  camlight show --device 192.168.1.108 --format json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	opts, err := deviceOptions(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := ui.NewPrinter(out)
	if outputFormat != formatJSON {
		printer.PrintHeader(ui.NewHeader("Show light", "camlight show",
			ui.Param{Key: "Device", Value: opts.Name},
			ui.Param{Key: "Address", Value: opts.Address},
		))
	}

	var state *lighting.LightingState
	err = ui.RunWithSpinner(cmd.Context(), spinnerOutput(out), lighting.LabelLoggingIn,
		func(ctx context.Context, r status.Reporter) error {
			opts.Reporter = r
			d := lighting.NewDevice(opts)
			defer closeDevice(d)
			var err error
			state, err = d.Lighting(ctx)
			return err
		})
	if err != nil {
		if outputFormat == formatJSON {
			return err
		}
		printer.PrintResult(ui.NewFailureResult("Could not read light settings", err))
		return errReported
	}

	if outputFormat == formatJSON {
		return writeJSON(out, state)
	}
	printer.PrintResult(ui.LightingResult(opts.Name, state))
	return nil
}

// scanCmd discovers cameras on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for cameras on the network",
	Long: `Scan for hosts advertising a web interface over mDNS/DNS-SD.

Configured devices that answer are marked as seen in the config file.`,
	Example: `  # Scan for 5 seconds (default)
  camlight scan

  # Only hosts whose name contains "ipc"
  camlight scan --filter ipc --timeout 10`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	scanCmd.Flags().StringVar(&scanFilter, "filter", "", "Only show hosts whose name contains this text")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader(ui.NewHeader("Scan", "camlight scan",
		ui.Param{Key: "Service", Value: discovery.ServiceType},
		ui.Param{Key: "Timeout", Value: fmt.Sprintf("%ds", scanTimeout)},
	))

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	scanner.Filter = scanFilter

	var devices []*discovery.Device
	err = ui.RunWithSpinner(cmd.Context(), cmd.OutOrStdout(), "Scanning...",
		func(ctx context.Context, _ status.Reporter) error {
			var err error
			devices, err = scanner.Scan(ctx)
			return err
		})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	configured := configuredAddresses(cfg)
	printer.Println(ui.RenderDeviceCards(devices, configured, printer.Width()))

	if seen := markSeen(cfg, devices, configured, time.Now()); seen > 0 {
		if err := cfg.Save(configPath); err != nil {
			return err
		}
	}
	return nil
}

// configuredAddresses maps each configured address to its device name
func configuredAddresses(cfg *config.Config) map[string]string {
	m := make(map[string]string, len(cfg.Devices))
	for _, name := range cfg.DeviceNames() {
		m[cfg.Devices[name].Address] = name
	}
	return m
}

// markSeen records scan hits for configured devices and returns how many matched
func markSeen(cfg *config.Config, devices []*discovery.Device, configured map[string]string, at time.Time) int {
	n := 0
	for _, d := range devices {
		if name, ok := configured[d.Address()]; ok {
			cfg.MarkSeen(name, at)
			n++
		}
	}
	return n
}

// deviceOptions loads the config and resolves --device into connection options
func deviceOptions(cmd *cobra.Command) (lighting.DeviceOptions, error) {
	if outputFormat != formatDetailed && outputFormat != formatJSON {
		return lighting.DeviceOptions{}, fmt.Errorf("invalid --format %q (use detailed or json)", outputFormat)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return lighting.DeviceOptions{}, err
	}
	t, err := resolveTarget(cfg, deviceRef, username)
	if err != nil {
		return lighting.DeviceOptions{}, err
	}
	return t.options(password, os.Stdin, cmd.ErrOrStderr())
}

// spinnerOutput hides the spinner when the output is machine-readable
func spinnerOutput(out io.Writer) io.Writer {
	if outputFormat == formatJSON {
		return io.Discard
	}
	return out
}

func closeDevice(d *lighting.Device) {
	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()
	_ = d.Close(ctx)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/camlight/internal/config"
	"github.com/muurk/camlight/internal/ui"
)

// Device add flags
var (
	addUsername    string
	addPasswordEnv string
	addTimeout     time.Duration
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage configured cameras",
}

var deviceAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Add or replace a camera",
	Long: `Add a camera to the config file, replacing any entry with the same name.

The password is not stored. Name an environment variable holding it with
--password-env, or enter it when prompted.`,
	Example: `  camlight device add garage 192.168.1.108 --password-env GARAGE_CAM_PASSWORD
  camlight device add porch http://porch-cam.lan:8080 --username operator`,
	Args: cobra.ExactArgs(2),
	RunE: runDeviceAdd,
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured cameras",
	Args:  cobra.NoArgs,
	RunE:  runDeviceList,
}

var deviceRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a camera",
	Args:    cobra.ExactArgs(1),
	RunE:    runDeviceRemove,
}

func init() {
	deviceAddCmd.Flags().StringVarP(&addUsername, "username", "u", "", "Login user (default "+config.DefaultUsername+")")
	deviceAddCmd.Flags().StringVar(&addPasswordEnv, "password-env", "", "Environment variable holding the password")
	deviceAddCmd.Flags().DurationVar(&addTimeout, "timeout", 0, "Per-call timeout (default 10s)")

	deviceCmd.AddCommand(deviceAddCmd, deviceListCmd, deviceRemoveCmd)
	rootCmd.AddCommand(deviceCmd)
}

func runDeviceAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	name, address := args[0], strings.TrimSpace(args[1])
	d := &config.Device{
		Address:     address,
		Username:    addUsername,
		PasswordEnv: addPasswordEnv,
		Timeout:     addTimeout,
	}
	cfg.SetDevice(name, d)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintResult(ui.NewSuccessResult("Device saved",
		ui.Param{Key: "Name", Value: name},
		ui.Param{Key: "Address", Value: d.Address},
		ui.Param{Key: "User", Value: d.User()},
		ui.Param{Key: "Password", Value: passwordSource(d)},
	))
	return nil
}

func runDeviceList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	names := cfg.DeviceNames()
	if len(names) == 0 {
		printer.PrintResult(ui.NewWarningResult("No devices configured",
			ui.Param{Key: "Add one", Value: "camlight device add <name> <address>"},
		))
		return nil
	}

	res := ui.NewSuccessResult(fmt.Sprintf("%d device(s) configured", len(names)))
	for _, name := range names {
		d := cfg.Devices[name]
		line := d.User() + "@" + d.Address
		if !d.LastSeen.IsZero() {
			line += " (seen " + d.LastSeen.Format("2006-01-02 15:04") + ")"
		}
		res.AddDetail(name, line)
	}
	printer.PrintResult(res)
	return nil
}

func runDeviceRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	name := args[0]
	if _, err := cfg.Device(name); err != nil {
		return err
	}
	delete(cfg.Devices, name)
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintResult(ui.NewSuccessResult("Device removed",
		ui.Param{Key: "Name", Value: name},
	))
	return nil
}

func passwordSource(d *config.Device) string {
	if d.PasswordEnv == "" {
		return "prompt"
	}
	return "$" + d.PasswordEnv
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/muurk/camlight/internal/config"
	"github.com/muurk/camlight/internal/lighting"
)

// errReported marks a failure whose details were already printed
var errReported = errors.New("command failed")

// target is a camera picked from the config file or given by address
type target struct {
	name     string
	address  string
	username string
	timeout  time.Duration
	device   *config.Device // nil for an ad-hoc address
}

// resolveTarget picks the camera named by ref. ref may be a configured name
// or an address. An empty ref selects the only configured device.
func resolveTarget(cfg *config.Config, ref, username string) (*target, error) {
	if ref == "" {
		names := cfg.DeviceNames()
		switch len(names) {
		case 0:
			return nil, errors.New("no devices configured. Use --device <address> or 'camlight device add'")
		case 1:
			ref = names[0]
		default:
			return nil, fmt.Errorf("multiple devices configured (%s). Use --device to pick one", strings.Join(names, ", "))
		}
	}

	if d, ok := cfg.Devices[ref]; ok && d != nil {
		t := &target{
			name:     ref,
			address:  d.Address,
			username: d.User(),
			timeout:  d.Timeout,
			device:   d,
		}
		if username != "" {
			t.username = username
		}
		return t, nil
	}

	if !looksLikeAddress(ref) {
		_, err := cfg.Device(ref)
		return nil, err
	}
	if username == "" {
		username = config.DefaultUsername
	}
	return &target{name: ref, address: ref, username: username}, nil
}

func looksLikeAddress(ref string) bool {
	return strings.ContainsAny(ref, ".:") || strings.HasPrefix(ref, "http")
}

// options builds the device options, resolving the password from the flag,
// then the configured environment variable, then an interactive prompt.
func (t *target) options(password string, in *os.File, out io.Writer) (lighting.DeviceOptions, error) {
	if password == "" && t.device != nil {
		password, _ = t.device.Password()
	}
	if password == "" {
		if in == nil || !term.IsTerminal(int(in.Fd())) {
			return lighting.DeviceOptions{}, t.missingPassword()
		}
		pw, err := promptPassword(in, out, fmt.Sprintf("Password for %s@%s: ", t.username, t.name))
		if err != nil {
			return lighting.DeviceOptions{}, fmt.Errorf("failed to read password: %w", err)
		}
		password = pw
	}

	return lighting.DeviceOptions{
		Name:     t.name,
		Address:  t.address,
		Username: t.username,
		Password: password,
		Timeout:  t.timeout,
	}, nil
}

func (t *target) missingPassword() error {
	if t.device != nil && t.device.PasswordEnv != "" {
		return fmt.Errorf("no password for %q: %s is not set and stdin is not a terminal", t.name, t.device.PasswordEnv)
	}
	return fmt.Errorf("no password for %q: use --password or set password_env in the config", t.name)
}

func promptPassword(in *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	pw, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

package lighting

import (
	"context"
	"time"

	"github.com/muurk/camlight/internal/rpc"
	"github.com/muurk/camlight/internal/session"
	"github.com/muurk/camlight/internal/status"
)

// DeviceOptions describes how to reach one camera
type DeviceOptions struct {
	Name     string
	Address  string
	Username string
	Password string

	// Timeout bounds each RPC; zero means rpc.DefaultTimeout
	Timeout time.Duration

	// Reporter receives status updates; nil discards them
	Reporter status.Reporter
}

// Device wires a transport, session cache, authenticator and controller
// behind one Handler
type Device struct {
	*Handler
	auth *session.Authenticator
}

// NewDevice builds the full command stack for one camera
func NewDevice(opts DeviceOptions) *Device {
	client := rpc.NewClient(opts.Address)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	cache := session.NewCache()
	auth := session.NewAuthenticator(client, opts.Username, opts.Password, cache)
	return &Device{
		Handler: NewHandler(opts.Name, auth, NewController(client, cache), opts.Reporter),
		auth:    auth,
	}
}

// Close logs out of the session held for the device, if any
func (d *Device) Close(ctx context.Context) error {
	return d.auth.Logout(ctx)
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/camlight/internal/bridge"
	"github.com/muurk/camlight/internal/lighting"
	"github.com/muurk/camlight/internal/logging"
	"github.com/muurk/camlight/internal/status"
)

// DefaultShutdownTimeout bounds draining queued commands and logging out
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	// Listen is the HTTP API address. Empty disables the API.
	Listen string

	// MQTT enables the MQTT bridge when non-nil
	MQTT *bridge.MQTTOptions

	// TopicPrefix is the MQTT topic root, e.g. "camlight"
	TopicPrefix string

	ShutdownTimeout time.Duration
}

// MQTTDialer connects to a broker
type MQTTDialer func(opts bridge.MQTTOptions) (bridge.ClientAPI, error)

// Option configures a Server
type Option func(*Server)

// WithMQTTDialer replaces the paho dialer, mainly for tests
func WithMQTTDialer(d MQTTDialer) Option {
	return func(s *Server) { s.dialMQTT = d }
}

// Server runs the HTTP API and the MQTT bridge for a set of cameras
type Server struct {
	config   *Config
	options  []lighting.DeviceOptions
	dialMQTT MQTTDialer
	log      *zap.Logger

	registry *bridge.Registry
	devices  []*lighting.Device
	mqtt     bridge.ClientAPI
	bridge   *bridge.MQTTBridge
	httpSrv  *http.Server
	listener net.Listener

	// base outlives the Start context so queued commands can drain on shutdown
	base       context.Context
	cancelBase context.CancelFunc

	ready    chan struct{}
	errs     chan error
	shutdown sync.Once
}

// New creates a Server for devices
func New(config *Config, devices []lighting.DeviceOptions, opts ...Option) (*Server, error) {
	if len(devices) == 0 {
		return nil, errors.New("no devices configured")
	}
	if config.Listen == "" && config.MQTT == nil {
		return nil, errors.New("nothing to serve: enable the HTTP API or the MQTT bridge")
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		config:   config,
		options:  devices,
		dialMQTT: dialPaho,
		log:      logging.Named("server"),
		registry: bridge.NewRegistry(),
		ready:    make(chan struct{}),
		errs:     make(chan error, 1),
	}
	s.base, s.cancelBase = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func dialPaho(opts bridge.MQTTOptions) (bridge.ClientAPI, error) {
	c, err := bridge.DialMQTT(opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Ready is closed once the server accepts commands
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the HTTP API listen address, or "" when the API is disabled
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start runs until ctx ends, SIGINT/SIGTERM arrives or the HTTP server fails,
// then shuts down
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.setup(); err != nil {
		_ = s.Shutdown(context.Background())
		return err
	}
	close(s.ready)

	s.log.Info("camlight server running",
		zap.String("http", s.Addr()),
		zap.Bool("mqtt", s.bridge != nil),
		zap.Strings("devices", s.registry.Names()),
	)

	var runErr error
	select {
	case <-ctx.Done():
		s.log.Info("Shutdown signal received, stopping server...")
	case runErr = <-s.errs:
		s.log.Error("HTTP server failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (s *Server) setup() error {
	if s.config.MQTT != nil {
		opts := *s.config.MQTT
		if opts.StateTopic == "" {
			opts.StateTopic = s.config.TopicPrefix + "/bridge/state"
		}
		client, err := s.dialMQTT(opts)
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		s.mqtt = client
		s.bridge = bridge.NewMQTTBridge(client, s.config.TopicPrefix, s.registry)
	}

	for _, opts := range s.options {
		reporters := []status.Reporter{
			status.NewLogReporter(logging.Named("status").With(zap.String("device", opts.Name))),
		}
		if s.bridge != nil {
			reporters = append(reporters, s.bridge.StatusReporter(opts.Name))
		}
		opts.Reporter = status.Multi(reporters...)

		d := lighting.NewDevice(opts)
		s.devices = append(s.devices, d)
		s.registry.Add(d)
	}

	if s.bridge != nil {
		if err := s.bridge.Start(s.base); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if s.config.Listen != "" {
		ln, err := net.Listen("tcp", s.config.Listen)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
		}
		s.listener = ln
		s.httpSrv = &http.Server{
			Handler:           bridge.NewAPI(s.registry),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.errs <- err
			}
		}()
	}
	return nil
}

// Shutdown stops accepting commands, drains queued ones, disconnects from
// the broker and logs out of every camera. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdown.Do(func() {
		s.log.Info("Shutting down server...")

		if s.httpSrv != nil {
			if e := s.httpSrv.Shutdown(ctx); e != nil {
				s.log.Warn("HTTP shutdown incomplete", zap.Error(e))
				err = e
			}
		}
		if s.bridge != nil {
			if e := s.bridge.Stop(ctx); e != nil {
				s.log.Warn("MQTT bridge did not drain", zap.Error(e))
				err = errors.Join(err, e)
			}
		}
		s.teardown()
	})
	return err
}

// teardown releases whatever setup acquired
func (s *Server) teardown() {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}

	logoutCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	for _, d := range s.devices {
		if err := d.Close(logoutCtx); err != nil {
			s.log.Warn("Logout failed", zap.String("device", d.Name()), zap.Error(err))
		}
	}

	s.cancelBase()
	logging.Sync()
}

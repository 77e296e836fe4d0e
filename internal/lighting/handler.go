package lighting

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/camlight/internal/logging"
	"github.com/muurk/camlight/internal/metrics"
	"github.com/muurk/camlight/internal/rpc"
	"github.com/muurk/camlight/internal/session"
	"github.com/muurk/camlight/internal/status"
)

// Status labels reported while a command runs
const (
	LabelLoggingIn   = "Logging in..."
	LabelLoginFailed = "Login failed"
	LabelSetting     = "Setting light..."
	LabelRelogin     = "Re-login..."
	LabelRetrying    = "Retrying..."
)

// Authenticator provides a usable session. *session.Authenticator implements it.
type Authenticator interface {
	Authenticate(ctx context.Context) (*session.Session, error)
}

// Lights applies and reads light settings. *Controller implements it.
type Lights interface {
	SetLight(ctx context.Context, sess *session.Session, mode Mode, brightness int) OperationResult
	GetLighting(ctx context.Context, sess *session.Session) (*LightingState, error)
}

// Handler runs commands for one device. Commands are handled one at a time.
type Handler struct {
	name     string
	auth     Authenticator
	lights   Lights
	reporter status.Reporter
	log      *zap.Logger

	mu sync.Mutex
}

// NewHandler creates a handler. A nil reporter discards status updates.
func NewHandler(name string, auth Authenticator, lights Lights, reporter status.Reporter) *Handler {
	if reporter == nil {
		reporter = status.Nop
	}
	return &Handler{
		name:     name,
		auth:     auth,
		lights:   lights,
		reporter: reporter,
		log:      logging.Named("handler").With(zap.String("device", name)),
	}
}

// Name returns the device name the handler was created for
func (h *Handler) Name() string {
	return h.name
}

// HandleCommand logs in, applies raw and returns the outcome. When the device
// rejects the session the login and the write are repeated exactly once.
func (h *Handler) HandleCommand(ctx context.Context, raw string) OperationResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	label := strings.TrimSpace(raw)
	h.log.Info("Received command", zap.String("command", label))
	h.report(status.Info, LabelLoggingIn)

	sess, err := h.auth.Authenticate(ctx)
	if err != nil {
		h.log.Error("Failed to login to camera", zap.Error(err))
		h.report(status.Error, LabelLoginFailed)
		metrics.Commands.WithLabelValues(h.name, "none", "login_failed").Inc()
		return Failed(MsgLoginFailed)
	}

	h.report(status.Warn, LabelSetting)

	cmd := ParseCommand(raw)
	h.log.Debug("Parsed command", zap.Stringer("command", cmd))

	result := h.lights.SetLight(ctx, sess, cmd.Mode, cmd.Brightness)
	if result.RetryRequested {
		h.log.Info("Retrying with new session")
		h.report(status.Info, LabelRelogin)
		metrics.Reauthentications.WithLabelValues(h.name).Inc()

		sess, err = h.auth.Authenticate(ctx)
		if err != nil {
			h.log.Error("Re-login failed", zap.Error(err))
			result = Failed(MsgReloginFailed)
		} else {
			h.report(status.Warn, LabelRetrying)
			result = h.lights.SetLight(ctx, sess, cmd.Mode, cmd.Brightness)
		}
	}

	h.log.Info("Final result",
		zap.Bool("result", result.Success),
		zap.String("error", result.Error),
	)

	outcome := "failed"
	if result.Success {
		outcome = "ok"
		h.report(status.Info, label+" ✓")
	} else {
		h.report(status.Error, label+" ✗")
	}
	metrics.Commands.WithLabelValues(h.name, string(cmd.Mode), outcome).Inc()

	return result
}

// Lighting returns the current light settings, logging in again once if the
// device rejects the cached session.
func (h *Handler) Lighting(ctx context.Context) (*LightingState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, err := h.auth.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	state, err := h.lights.GetLighting(ctx, sess)
	if !rpc.IsSessionInvalid(err) {
		return state, err
	}

	h.log.Info("Session rejected while reading lighting, logging in again")
	metrics.Reauthentications.WithLabelValues(h.name).Inc()
	if sess, err = h.auth.Authenticate(ctx); err != nil {
		return nil, err
	}
	return h.lights.GetLighting(ctx, sess)
}

func (h *Handler) report(level status.Level, label string) {
	h.reporter.Report(status.Update{Level: level, Label: label})
}

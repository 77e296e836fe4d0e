package lighting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/muurk/camlight/internal/logging"
	"github.com/muurk/camlight/internal/metrics"
	"github.com/muurk/camlight/internal/rpc"
	"github.com/muurk/camlight/internal/session"
)

// ConfigName is the configuration block holding the light settings
const ConfigName = "Lighting_V2"

// Field names inside a Lighting_V2 entry
const (
	fieldMode        = "Mode"
	fieldBrightness  = "PercentOfMaxBrightness"
	fieldMiddleLight = "MiddleLight"
	fieldLight       = "Light"
)

var errConfigRejected = errors.New("device rejected getConfig")

// Invalidator drops a cached session. *session.Cache implements it.
type Invalidator interface {
	Invalidate()
}

// LightingState is the light configuration currently applied on a device
type LightingState struct {
	Mode       Mode `json:"mode"`
	Brightness int  `json:"brightness"`

	// ManualLight is the manual-zone level, when the table has one
	ManualLight *int `json:"manual_light,omitempty"`
}

// Controller reads and writes the Lighting_V2 block of one device
type Controller struct {
	transport session.Transport
	sessions  Invalidator
	log       *zap.Logger
}

// NewController creates a controller. sessions is cleared when the device
// rejects the session.
func NewController(transport session.Transport, sessions Invalidator) *Controller {
	return &Controller{
		transport: transport,
		sessions:  sessions,
		log:       logging.Named("lighting"),
	}
}

// SetLight applies mode and brightness. It never returns an error; every
// failure is described by the result. RetryRequested is set, and the session
// cache cleared, when the device no longer accepts sess.
func (c *Controller) SetLight(ctx context.Context, sess *session.Session, mode Mode, brightness int) OperationResult {
	c.log.Info("Setting light", zap.String("mode", string(mode)), zap.Int("brightness", brightness))

	table, err := c.getConfig(ctx, sess)
	if err != nil {
		return c.fetchFailure(err)
	}

	if err := applyLighting(table, mode, brightness); err != nil {
		c.log.Error("Cannot modify lighting table", zap.Error(err))
		return Failed(err.Error())
	}

	return c.write(ctx, sess, table)
}

// GetLighting returns the current light settings. A rejected session clears
// the cache and is reported as an rpc.ErrTypeSessionInvalid error.
func (c *Controller) GetLighting(ctx context.Context, sess *session.Session) (*LightingState, error) {
	table, err := c.getConfig(ctx, sess)
	if err != nil {
		if rpc.IsSessionInvalid(err) {
			c.sessions.Invalidate()
		}
		return nil, err
	}

	entry, err := lightingEntry(table)
	if err != nil {
		return nil, err
	}
	return stateFromEntry(entry), nil
}

func (c *Controller) fetchFailure(err error) OperationResult {
	var rpcErr *rpc.RPCError
	switch {
	case rpc.IsSessionInvalid(err):
		c.log.Info("Session rejected, clearing cache", zap.Error(err))
		c.sessions.Invalidate()
		return sessionRejected()
	case rpc.IsHTTPError(err) && errors.As(err, &rpcErr):
		c.log.Error("HTTP error getting config", zap.Int("status_code", rpcErr.StatusCode))
		return Failed(fmt.Sprintf(msgHTTPStatusFormat, rpcErr.StatusCode))
	case errors.Is(err, errConfigRejected):
		c.log.Error("Failed to get config", zap.Error(err))
		return Failed(MsgGetConfigFailed)
	default:
		c.log.Error("Set light error", zap.Error(err))
		return Failed(err.Error())
	}
}

// getConfig fetches the Lighting_V2 table. Numbers are kept as json.Number
// so untouched fields are written back byte for byte.
func (c *Controller) getConfig(ctx context.Context, sess *session.Session) (any, error) {
	req := &rpc.Request{
		Method:  rpc.MethodGetConfig,
		Params:  rpc.GetConfigParams{Name: ConfigName},
		ID:      rpc.IDGetConfig,
		Session: sess.ID,
	}

	reply, err := c.transport.Send(ctx, c.transport.RPCURL(), req, sess.Cookie)
	if err != nil {
		return nil, err
	}
	if reply.StatusCode != http.StatusOK {
		return nil, rpc.NewHTTPError(rpc.MethodGetConfig, reply.StatusCode)
	}

	body := reply.Body
	if !body.OK() {
		if body != nil && body.Error.IsSessionInvalid() {
			return nil, rpc.NewFaultError(rpc.MethodGetConfig, body.Error)
		}
		var fault *rpc.Fault
		if body != nil {
			fault = body.Error
		}
		return nil, fmt.Errorf("%w: %w", errConfigRejected, rpc.NewFaultError(rpc.MethodGetConfig, fault))
	}

	var params struct {
		Table any `json:"table"`
	}
	if err := body.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.Table == nil {
		return nil, rpc.NewProtocolError(rpc.MethodGetConfig, "response has no table", nil)
	}
	return params.Table, nil
}

// write stores table with configManager.setConfig, falling back once to the
// same call wrapped in system.multicall.
func (c *Controller) write(ctx context.Context, sess *session.Session, table any) OperationResult {
	set := rpc.NewSetConfigRequest(ConfigName, table, sess.ID)

	reply, err := c.transport.Send(ctx, c.transport.RPCURL(), set, sess.Cookie)
	if err != nil {
		c.log.Error("Set light error", zap.Error(err))
		return Failed(err.Error())
	}
	if reply.StatusCode == http.StatusOK && reply.Body.OK() {
		c.log.Info("Light configuration written")
		return Succeeded()
	}

	c.log.Info("Standard method failed, trying system.multicall", zap.Int("status_code", reply.StatusCode))
	metrics.WriteFallbacks.Inc()

	reply, err = c.transport.Send(ctx, c.transport.RPCURL(), rpc.NewMulticallRequest(sess.ID, set), sess.Cookie)
	if err != nil {
		c.log.Error("Set light error", zap.Error(err))
		return Failed(err.Error())
	}
	result := writeResult(reply)
	if !result.Success {
		c.log.Error("Failed to set config", zap.String("error", result.Error))
	}
	return result
}

// writeResult interprets the final write response. A multicall answer with
// result=true still fails when one of the wrapped calls failed.
func writeResult(reply *rpc.Reply) OperationResult {
	if reply.StatusCode != http.StatusOK {
		return Failed(fmt.Sprintf(msgHTTPStatusFormat, reply.StatusCode))
	}

	body := reply.Body
	if body.OK() {
		inner, ok := failedInnerCall(body)
		if !ok {
			return Succeeded()
		}
		body = inner
	}

	if body != nil && body.Error != nil && body.Error.Message != "" {
		return Failed(body.Error.Message)
	}
	return Failed(MsgSetConfigFailed)
}

// failedInnerCall returns the first unsuccessful response of a multicall
// answer whose params hold per-call results.
func failedInnerCall(body *rpc.Response) (*rpc.Response, bool) {
	if len(body.Params) == 0 {
		return nil, false
	}
	var inner []*rpc.Response
	if err := json.Unmarshal(body.Params, &inner); err != nil {
		return nil, false
	}
	for _, r := range inner {
		if !r.OK() {
			return r, true
		}
	}
	return nil, false
}

// applyLighting sets the mode and brightness of the first entry in place.
// The manual-zone level is only written in Manual mode.
func applyLighting(table any, mode Mode, brightness int) error {
	entry, err := lightingEntry(table)
	if err != nil {
		return err
	}

	entry[fieldMode] = string(mode)
	entry[fieldBrightness] = brightness

	if mode == ModeManual {
		zone, err := middleLight(entry)
		if err != nil {
			return err
		}
		zone[fieldLight] = brightness
	}
	return nil
}

// lightingEntry returns table[0][0][0]
func lightingEntry(table any) (map[string]any, error) {
	node := table
	for depth := 0; depth < 3; depth++ {
		list, ok := node.([]any)
		if !ok || len(list) == 0 {
			return nil, rpc.NewProtocolError(rpc.MethodGetConfig,
				fmt.Sprintf("unexpected %s table layout at depth %d", ConfigName, depth), nil)
		}
		node = list[0]
	}

	entry, ok := node.(map[string]any)
	if !ok {
		return nil, rpc.NewProtocolError(rpc.MethodGetConfig,
			fmt.Sprintf("unexpected %s entry type %T", ConfigName, node), nil)
	}
	return entry, nil
}

// middleLight returns entry.MiddleLight[0]
func middleLight(entry map[string]any) (map[string]any, error) {
	zones, ok := entry[fieldMiddleLight].([]any)
	if !ok || len(zones) == 0 {
		return nil, rpc.NewProtocolError(rpc.MethodGetConfig, ConfigName+" entry has no MiddleLight zone", nil)
	}
	zone, ok := zones[0].(map[string]any)
	if !ok {
		return nil, rpc.NewProtocolError(rpc.MethodGetConfig, ConfigName+" MiddleLight zone is not an object", nil)
	}
	return zone, nil
}

func stateFromEntry(entry map[string]any) *LightingState {
	state := &LightingState{}
	if mode, ok := entry[fieldMode].(string); ok {
		state.Mode = Mode(mode)
	}
	if n, ok := toInt(entry[fieldBrightness]); ok {
		state.Brightness = n
	}
	if zone, err := middleLight(entry); err == nil {
		if n, ok := toInt(zone[fieldLight]); ok {
			state.ManualLight = &n
		}
	}
	return state
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

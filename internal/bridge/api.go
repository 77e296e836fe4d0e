package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/camlight/internal/logging"
	"github.com/muurk/camlight/internal/metrics"
	"github.com/muurk/camlight/internal/rpc"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// maxCommandBody bounds a POSTed command document
const maxCommandBody = 4 << 10

type requestIDKey struct{}

// RequestID returns the id assigned to the request carried by ctx
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// CommandRequest is the body of POST /api/devices/{name}/light.
// An empty command is valid and turns the light off.
type CommandRequest struct {
	Command *string `json:"command"`
}

// API serves light commands over HTTP
type API struct {
	devices *Registry
	log     *zap.Logger
	router  chi.Router
}

// NewAPI builds the router for devices
func NewAPI(devices *Registry) *API {
	a := &API{
		devices: devices,
		log:     logging.Named("bridge.http"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.requestID)
	r.Use(a.accessLog)

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/devices", func(r chi.Router) {
		r.Get("/", a.handleListDevices)
		r.Get("/{name}/light", a.handleGetLight)
		r.Post("/{name}/light", a.handleSetLight)
	})

	a.router = r
	return a
}

// ServeHTTP implements http.Handler
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"devices": a.devices.Names(),
	})
}

func (a *API) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.devices.Names())
}

func (a *API) handleGetLight(w http.ResponseWriter, r *http.Request) {
	cmd, ok := a.device(w, r)
	if !ok {
		return
	}

	// A client hang-up must not abort a login the camera has already accepted
	state, err := cmd.Lighting(context.WithoutCancel(r.Context()))
	if err != nil {
		a.log.Warn("Reading lighting failed",
			zap.String("device", cmd.Name()),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": rpc.ShortMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) handleSetLight(w http.ResponseWriter, r *http.Request) {
	cmd, ok := a.device(w, r)
	if !ok {
		return
	}

	var body CommandRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBody))
	if err := dec.Decode(&body); err != nil {
		metrics.BridgeCommands.WithLabelValues("http", "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Command == nil {
		metrics.BridgeCommands.WithLabelValues("http", "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field 'command' is required"})
		return
	}
	metrics.BridgeCommands.WithLabelValues("http", "accepted").Inc()

	res := cmd.HandleCommand(context.WithoutCancel(r.Context()), *body.Command)
	code := http.StatusOK
	if !res.Success {
		code = http.StatusBadGateway
	}
	writeJSON(w, code, res)
}

// device resolves {name}, writing a 404 when it is not registered
func (a *API) device(w http.ResponseWriter, r *http.Request) (Commander, bool) {
	name := chi.URLParam(r, "name")
	cmd, ok := a.devices.Get(name)
	if !ok {
		metrics.BridgeCommands.WithLabelValues("http", "unknown_device").Inc()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown device " + name})
		return nil, false
	}
	return cmd, true
}

func (a *API) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", RequestID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

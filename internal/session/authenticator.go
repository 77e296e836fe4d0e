package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/muurk/camlight/internal/logging"
	"github.com/muurk/camlight/internal/metrics"
	"github.com/muurk/camlight/internal/rpc"
)

// BusyBackoff is the pause before repeating a login the device answered with code 486
const BusyBackoff = 2 * time.Second

const (
	clientType    = "Web3.0"
	authorityType = "Default"
)

// Transport sends a single RPC request. *rpc.Client implements it.
type Transport interface {
	Send(ctx context.Context, url string, req *rpc.Request, cookie string) (*rpc.Reply, error)
	RPCURL() string
	LoginURL() string
}

// Option configures an Authenticator
type Option func(*Authenticator)

// WithBusyBackoff overrides BusyBackoff
func WithBusyBackoff(d time.Duration) Option {
	return func(a *Authenticator) {
		a.backoff = d
	}
}

// WithLogger sets the logger used for login progress and failures
func WithLogger(log *zap.Logger) Option {
	return func(a *Authenticator) {
		a.log = log
	}
}

// Authenticator logs in to a single device and keeps the session in a Cache
type Authenticator struct {
	transport Transport
	username  string
	password  string
	cache     *Cache
	backoff   time.Duration
	log       *zap.Logger

	// mu serialises every read-check-act sequence on the cache
	mu    sync.Mutex
	group singleflight.Group
}

// NewAuthenticator creates an authenticator storing sessions in cache
func NewAuthenticator(transport Transport, username, password string, cache *Cache, opts ...Option) *Authenticator {
	a := &Authenticator{
		transport: transport,
		username:  username,
		password:  password,
		cache:     cache,
		backoff:   BusyBackoff,
		log:       logging.Named("session"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cache returns the cache holding the current session
func (a *Authenticator) Cache() *Cache {
	return a.cache
}

// Authenticate returns a usable session, logging in when the cache holds none.
//
// On failure the returned error is an *rpc.RPCError: ErrTypeAuth when the
// challenge answer was rejected, ErrTypeHTTP on a non-200 status,
// ErrTypeProtocol on any unexpected response, or a transport kind.
//
// Cancelling ctx does not abort a login in flight: the session the camera
// opens must be cached so it can be logged out later. Each call is bounded
// by the transport timeout instead.
func (a *Authenticator) Authenticate(ctx context.Context) (*Session, error) {
	ctx = context.WithoutCancel(ctx)
	v, err, shared := a.group.Do("login", func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.authenticate(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		a.log.Debug("Joined in-flight login")
	}
	return v.(*Session).clone(), nil
}

// Logout ends the held session on the device and clears the cache. The cache
// is cleared even when the device call fails.
func (a *Authenticator) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.cache.Take()
	if s == nil {
		return nil
	}
	return a.logout(ctx, s)
}

func (a *Authenticator) authenticate(ctx context.Context) (*Session, error) {
	if s, ok := a.cache.Get(); ok {
		a.log.Debug("Using cached session", zap.Stringer("session", s.ID))
		metrics.Logins.WithLabelValues("cached").Inc()
		return s, nil
	}

	// Anything still held has expired; it is logged out before being replaced.
	if stale := a.cache.Take(); stale != nil {
		if err := a.logout(ctx, stale); err != nil {
			a.log.Warn("Logout of expired session failed", zap.Error(err))
		}
	}

	a.log.Info("Starting login", zap.String("url", a.transport.LoginURL()))
	s, err := a.login(ctx, false)
	if err != nil {
		metrics.Logins.WithLabelValues("failed").Inc()
		a.log.Error("Login failed", zap.Error(err))
		return nil, err
	}
	return s, nil
}

// login runs the first-login request. retried is set on the single repeat
// after a busy answer.
func (a *Authenticator) login(ctx context.Context, retried bool) (*Session, error) {
	req := &rpc.Request{
		Method: rpc.MethodLogin,
		Params: rpc.LoginParams{
			UserName:   a.username,
			Password:   "",
			ClientType: clientType,
		},
		ID: rpc.IDLogin,
	}

	reply, err := a.transport.Send(ctx, a.transport.LoginURL(), req, "")
	if err != nil {
		return nil, err
	}
	if reply.StatusCode != http.StatusOK {
		return nil, rpc.NewHTTPError(rpc.MethodLogin, reply.StatusCode)
	}
	body := reply.Body
	if body == nil {
		return nil, rpc.NewProtocolError(rpc.MethodLogin, "empty login response", nil)
	}

	if challenge, ok := parseChallenge(body); ok {
		return a.answerChallenge(ctx, challenge, body.Session, reply.Cookie)
	}

	if body.OK() {
		a.log.Info("Direct login successful", zap.Stringer("session", body.Session))
		return a.store(body.Session, reply.Cookie, "direct"), nil
	}

	if body.Error.IsBusy() && !retried {
		a.log.Warn("Camera busy, retrying login", zap.Duration("backoff", a.backoff))
		time.Sleep(a.backoff)
		return a.login(ctx, true)
	}

	var cause error
	if body.Error != nil {
		cause = rpc.NewFaultError(rpc.MethodLogin, body.Error)
	}
	return nil, rpc.NewProtocolError(rpc.MethodLogin, "unexpected login response", cause)
}

func (a *Authenticator) answerChallenge(ctx context.Context, challenge rpc.ChallengeParams, id rpc.SessionID, cookie string) (*Session, error) {
	a.log.Debug("Challenge received",
		zap.String("realm", challenge.Realm),
		zap.String("random", challenge.Random),
		zap.Stringer("session", id),
	)

	req := &rpc.Request{
		Method: rpc.MethodLogin,
		Params: rpc.LoginParams{
			UserName:      a.username,
			Password:      ComputeAnswer(a.username, challenge.Realm, challenge.Random, a.password),
			ClientType:    clientType,
			AuthorityType: authorityType,
		},
		ID:      rpc.IDChallenge,
		Session: id,
	}

	reply, err := a.transport.Send(ctx, a.transport.LoginURL(), req, cookie)
	if err != nil {
		return nil, err
	}
	if reply.StatusCode != http.StatusOK {
		return nil, rpc.NewHTTPError(rpc.MethodLogin, reply.StatusCode)
	}
	if !reply.Body.OK() {
		authErr := rpc.NewAuthError("challenge answer rejected")
		if reply.Body != nil && reply.Body.Error != nil {
			authErr.Code = reply.Body.Error.Code
			authErr.Err = rpc.NewFaultError(rpc.MethodLogin, reply.Body.Error)
		}
		return nil, authErr
	}

	// Some firmware omits the session or cookies on the answer; the ones
	// from the challenge stay valid in that case.
	if !reply.Body.Session.IsZero() {
		id = reply.Body.Session
	}
	if reply.Cookie != "" {
		cookie = reply.Cookie
	}

	a.log.Info("Login successful", zap.Stringer("session", id))
	return a.store(id, cookie, "challenge"), nil
}

func (a *Authenticator) store(id rpc.SessionID, cookie, outcome string) *Session {
	metrics.Logins.WithLabelValues(outcome).Inc()
	return a.cache.Set(id, cookie)
}

// logout sends global.logout for s. Callers treat failures as non-fatal.
func (a *Authenticator) logout(ctx context.Context, s *Session) error {
	a.log.Info("Logging out session", zap.Stringer("session", s.ID))

	req := &rpc.Request{
		Method:  rpc.MethodLogout,
		Params:  nil,
		ID:      rpc.IDLogout,
		Session: s.ID,
	}
	reply, err := a.transport.Send(ctx, a.transport.RPCURL(), req, s.Cookie)
	if err != nil {
		return err
	}
	if reply.StatusCode != http.StatusOK {
		return rpc.NewHTTPError(rpc.MethodLogout, reply.StatusCode)
	}
	return nil
}

func parseChallenge(body *rpc.Response) (rpc.ChallengeParams, bool) {
	var challenge rpc.ChallengeParams
	if body.OK() || len(body.Params) == 0 {
		return challenge, false
	}
	if err := body.DecodeParams(&challenge); err != nil {
		return challenge, false
	}
	return challenge, challenge.Random != ""
}

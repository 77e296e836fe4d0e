// Package rpctest provides a scriptable fake camera for tests of the RPC flow.
package rpctest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/muurk/camlight/internal/rpc"
)

// Call is a request received by the fake server
type Call struct {
	Path    string
	Method  string
	Params  json.RawMessage
	ID      int
	Session rpc.SessionID
	Cookie  string
}

// DecodeParams unmarshals the call params into v
func (c Call) DecodeParams(v any) error {
	return json.Unmarshal(c.Params, v)
}

// Reply is what the fake server answers with
type Reply struct {
	Status    int      // defaults to 200
	Body      any      // JSON-encoded unless RawBody is set
	RawBody   string   // sent verbatim when non-empty
	SetCookie []string // one Set-Cookie header per entry
}

// HandlerFunc scripts the server's answers
type HandlerFunc func(call Call) Reply

// Server is an httptest server speaking the camera RPC wire format
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	calls   []Call
	handler HandlerFunc
}

// NewServer starts a server that answers every call with handler
func NewServer(handler HandlerFunc) *Server {
	s := &Server{handler: handler}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
		ID      int             `json:"id"`
		Session rpc.SessionID   `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	call := Call{
		Path:    r.URL.Path,
		Method:  req.Method,
		Params:  req.Params,
		ID:      req.ID,
		Session: req.Session,
		Cookie:  r.Header.Get("Cookie"),
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	reply := s.handler(call)
	for _, c := range reply.SetCookie {
		w.Header().Add("Set-Cookie", c)
	}
	w.Header().Set("Content-Type", "application/json")
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if reply.RawBody != "" {
		_, _ = w.Write([]byte(reply.RawBody))
		return
	}
	if reply.Body != nil {
		_ = json.NewEncoder(w).Encode(reply.Body)
	}
}

// Calls returns a copy of every call received so far
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many calls were received
func (s *Server) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Methods returns the method name of every call in order
func (s *Server) Methods() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

// Client returns an rpc.Client pointed at the server
func (s *Server) Client() *rpc.Client {
	return rpc.NewClientWithURL(s.URL)
}

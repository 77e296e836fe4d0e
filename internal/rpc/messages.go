package rpc

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Endpoint paths on the device
const (
	// RPCPath serves every authenticated call
	RPCPath = "/RPC2"

	// LoginPath serves global.login only
	LoginPath = "/RPC2_Login"
)

// Method names used by the light control flow
const (
	MethodLogin     = "global.login"
	MethodLogout    = "global.logout"
	MethodGetConfig = "configManager.getConfig"
	MethodSetConfig = "configManager.setConfig"
	MethodMulticall = "system.multicall"
)

// Request ids mirror the ones the device web UI sends.
const (
	IDLogin     = 1
	IDChallenge = 2
	IDGetConfig = 10
	IDSetConfig = 20
	IDMulticall = 21
	IDLogout    = 999
)

// Device fault codes with a protocol-defined meaning
const (
	// CodeDeviceBusy is returned by global.login while the device is still
	// processing a previous login.
	CodeDeviceBusy = 486

	// CodeNoSuchSession and CodeInvalidSession are returned by any
	// authenticated call once the device has dropped the session.
	CodeNoSuchSession  = 287637504
	CodeInvalidSession = 287637505
)

// SessionID is the opaque session token issued by global.login.
// The raw JSON encoding is kept so string and numeric tokens round-trip unchanged.
type SessionID []byte

// NewSessionID returns a SessionID holding the JSON string s.
func NewSessionID(s string) SessionID {
	return SessionID(strconv.Quote(s))
}

// MarshalJSON implements json.Marshaler
func (s SessionID) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte(s), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (s *SessionID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	*s = append((*s)[:0], data...)
	return nil
}

// IsZero reports whether no session token is held
func (s SessionID) IsZero() bool {
	return len(s) == 0
}

// String returns the token without JSON quoting
func (s SessionID) String() string {
	var str string
	if err := json.Unmarshal(s, &str); err == nil {
		return str
	}
	return string(s)
}

// Request is a single JSON-RPC call
type Request struct {
	Method  string    `json:"method"`
	Params  any       `json:"params"`
	ID      int       `json:"id"`
	Session SessionID `json:"session,omitempty"`
}

// Fault is the "error" member of a response
type Fault struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IsSessionInvalid reports whether the device no longer accepts the session
func (f *Fault) IsSessionInvalid() bool {
	return f != nil && (f.Code == CodeNoSuchSession || f.Code == CodeInvalidSession)
}

// IsBusy reports whether the device asked the caller to retry later
func (f *Fault) IsBusy() bool {
	return f != nil && f.Code == CodeDeviceBusy
}

// Response is a decoded response body
type Response struct {
	Result  json.RawMessage `json:"result"`
	Params  json.RawMessage `json:"params,omitempty"`
	Session SessionID       `json:"session,omitempty"`
	Error   *Fault          `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// OK reports whether the device signalled success ("result": true)
func (r *Response) OK() bool {
	if r == nil {
		return false
	}
	return bytes.Equal(bytes.TrimSpace(r.Result), []byte("true"))
}

// DecodeParams unmarshals the "params" member into v, preserving numbers as json.Number
func (r *Response) DecodeParams(v any) error {
	if len(r.Params) == 0 {
		return NewProtocolError("", "response has no params", nil)
	}
	dec := json.NewDecoder(bytes.NewReader(r.Params))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return NewParseError("failed to decode response params", err)
	}
	return nil
}

// LoginParams are the params of global.login
type LoginParams struct {
	UserName      string `json:"userName"`
	Password      string `json:"password"`
	ClientType    string `json:"clientType"`
	AuthorityType string `json:"authorityType,omitempty"`
}

// ChallengeParams are returned by a first global.login that requires a digest answer
type ChallengeParams struct {
	Realm      string `json:"realm"`
	Random     string `json:"random"`
	Encryption string `json:"encryption,omitempty"`
}

// GetConfigParams are the params of configManager.getConfig
type GetConfigParams struct {
	Name string `json:"name"`
}

// SetConfigParams are the params of configManager.setConfig
type SetConfigParams struct {
	Name    string `json:"name"`
	Table   any    `json:"table"`
	Options []any  `json:"options"`
}

// NewSetConfigRequest builds a configManager.setConfig call for the named block
func NewSetConfigRequest(name string, table any, session SessionID) *Request {
	return &Request{
		Method:  MethodSetConfig,
		Params:  SetConfigParams{Name: name, Table: table, Options: []any{}},
		ID:      IDSetConfig,
		Session: session,
	}
}

// NewMulticallRequest wraps calls in a single system.multicall request
func NewMulticallRequest(session SessionID, calls ...*Request) *Request {
	return &Request{
		Method:  MethodMulticall,
		Params:  calls,
		ID:      IDMulticall,
		Session: session,
	}
}

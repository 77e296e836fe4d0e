package rpctest

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/muurk/camlight/internal/rpc"
)

// DefaultLightingTable is a Lighting_V2 table as returned by a single-channel camera
const DefaultLightingTable = `[[[{
	"Correction": 50,
	"FarLight": [{"Angle": 50, "Light": 0}],
	"LightType": "WhiteLight",
	"MiddleLight": [{"Angle": 50, "Light": 30}],
	"Mode": "Auto",
	"NearLight": [{"Angle": 50, "Light": 0}],
	"PercentOfMaxBrightness": 30,
	"Sensitive": 3
}]]]`

// Camera emulates the login handshake and the Lighting_V2 config block of a camera.
// Its Handle method is a HandlerFunc.
type Camera struct {
	Username string
	Password string
	Realm    string
	Random   string

	// DirectLogin answers the first login with success instead of a challenge
	DirectLogin bool

	// BusyLogins is the number of first logins answered with code 486
	BusyLogins int

	// RejectStandardSet fails configManager.setConfig unless sent through system.multicall
	RejectStandardSet bool

	mu       sync.Mutex
	table    any
	pending  map[string]bool
	sessions map[string]bool
	next     int
}

// NewCamera returns a camera that requires a challenge-response login
func NewCamera(username, password string) *Camera {
	var table any
	if err := json.Unmarshal([]byte(DefaultLightingTable), &table); err != nil {
		panic(err)
	}
	return &Camera{
		Username: username,
		Password: password,
		Realm:    "Login to 7H0B6C3PAZ21F4E",
		Random:   "1536416791",
		table:    table,
		pending:  make(map[string]bool),
		sessions: make(map[string]bool),
	}
}

// ExpireSessions drops every active session, as the device does after its own timeout
func (c *Camera) ExpireSessions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = make(map[string]bool)
}

// ActiveSessions returns the number of sessions the camera currently accepts
func (c *Camera) ActiveSessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Entry returns a copy of the first Lighting_V2 entry
func (c *Camera) Entry() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, _ := json.Marshal(c.table)
	var table [][][]map[string]any
	if err := json.Unmarshal(data, &table); err != nil {
		return nil
	}
	return table[0][0][0]
}

// Mode returns the current light mode
func (c *Camera) Mode() string {
	mode, _ := c.Entry()["Mode"].(string)
	return mode
}

// Brightness returns PercentOfMaxBrightness
func (c *Camera) Brightness() int {
	v, _ := c.Entry()["PercentOfMaxBrightness"].(float64)
	return int(v)
}

// ManualLight returns MiddleLight[0].Light
func (c *Camera) ManualLight() int {
	middle, _ := c.Entry()["MiddleLight"].([]any)
	if len(middle) == 0 {
		return -1
	}
	zone, _ := middle[0].(map[string]any)
	v, _ := zone["Light"].(float64)
	return int(v)
}

// Handle answers a single call
func (c *Camera) Handle(call Call) Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.Path == rpc.LoginPath {
		return c.login(call)
	}
	if call.Path != rpc.RPCPath {
		return Reply{Status: 404, RawBody: "<html>Not Found</html>"}
	}

	if !c.sessions[call.Session.String()] {
		return fault(call.ID, rpc.CodeInvalidSession, "Invalid session in request data!")
	}
	return c.dispatch(call)
}

func (c *Camera) dispatch(call Call) Reply {
	switch call.Method {
	case rpc.MethodGetConfig:
		var params rpc.GetConfigParams
		if err := call.DecodeParams(&params); err != nil || params.Name != "Lighting_V2" {
			return fault(call.ID, 268959743, "Unknown config name")
		}
		return Reply{Body: map[string]any{
			"id":     call.ID,
			"result": true,
			"params": map[string]any{"table": c.table},
		}}

	case rpc.MethodSetConfig:
		if c.RejectStandardSet {
			return fault(call.ID, 268894209, "Method not supported")
		}
		return c.setConfig(call)

	case rpc.MethodMulticall:
		var inner []Call
		if err := json.Unmarshal(call.Params, &inner); err != nil {
			return fault(call.ID, 268894210, "Invalid params")
		}
		results := make([]any, 0, len(inner))
		for _, sub := range inner {
			r := c.setConfig(sub)
			results = append(results, r.Body)
		}
		return Reply{Body: map[string]any{"id": call.ID, "result": true, "params": results}}

	case rpc.MethodLogout:
		delete(c.sessions, call.Session.String())
		return Reply{Body: map[string]any{"id": call.ID, "result": true}}

	default:
		return fault(call.ID, 268894209, "Method not found")
	}
}

func (c *Camera) setConfig(call Call) Reply {
	var params struct {
		Name    string `json:"name"`
		Table   any    `json:"table"`
		Options []any  `json:"options"`
	}
	if err := call.DecodeParams(&params); err != nil || params.Name != "Lighting_V2" || params.Table == nil {
		return fault(call.ID, 268959743, "Invalid config")
	}
	c.table = params.Table
	return Reply{Body: map[string]any{"id": call.ID, "result": true}}
}

func (c *Camera) login(call Call) Reply {
	var params rpc.LoginParams
	if err := call.DecodeParams(&params); err != nil {
		return fault(call.ID, 268894210, "Invalid params")
	}

	if params.Password == "" {
		if c.BusyLogins > 0 {
			c.BusyLogins--
			return fault(call.ID, rpc.CodeDeviceBusy, "Device is busy")
		}
		c.next++
		id := fmt.Sprintf("S%d", c.next)
		if c.DirectLogin {
			c.sessions[id] = true
			return Reply{
				Body:      map[string]any{"id": call.ID, "result": true, "session": id},
				SetCookie: []string{"WebClientSessionID=" + id},
			}
		}
		c.pending[id] = true
		return Reply{
			Body: map[string]any{
				"id":      call.ID,
				"result":  false,
				"session": id,
				"error":   map[string]any{"code": 268632079, "message": "Component error: login challenge!"},
				"params": map[string]any{
					"encryption": "Default",
					"random":     c.Random,
					"realm":      c.Realm,
				},
			},
			SetCookie: []string{"WebClientSessionID=" + id},
		}
	}

	pendingID := call.Session.String()
	if !c.pending[pendingID] {
		return fault(call.ID, rpc.CodeNoSuchSession, "No such session")
	}
	delete(c.pending, pendingID)

	if params.UserName != c.Username || params.Password != Answer(c.Username, c.Realm, c.Random, c.Password) {
		return fault(call.ID, 268632071, "Password is wrong")
	}

	c.next++
	id := fmt.Sprintf("S%d", c.next)
	c.sessions[id] = true
	return Reply{
		Body: map[string]any{
			"id":      call.ID,
			"result":  true,
			"session": id,
			"params":  map[string]any{"keepAliveInterval": 60},
		},
		SetCookie: []string{"WebClientSessionID=" + id, "username=" + c.Username},
	}
}

// Answer computes the expected challenge answer independently of the session package
func Answer(username, realm, random, password string) string {
	inner := md5.Sum([]byte(username + ":" + realm + ":" + password))
	outer := md5.Sum([]byte(username + ":" + random + ":" + strings.ToUpper(hex.EncodeToString(inner[:]))))
	return strings.ToUpper(hex.EncodeToString(outer[:]))
}

func fault(id, code int, message string) Reply {
	return Reply{Body: map[string]any{
		"id":     id,
		"result": false,
		"error":  map[string]any{"code": code, "message": message},
	}}
}

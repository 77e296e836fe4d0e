// Package rpc implements the JSON-RPC-over-HTTP transport spoken by IP camera
// firmware on the /RPC2 and /RPC2_Login endpoints.
//
// The package is deliberately thin: Client.Send posts a single JSON request,
// optionally carrying the session cookie, and hands back the decoded body,
// the HTTP status and any cookies the device set. It never retries and never
// interprets the body beyond decoding it. Interpretation (challenge detection,
// busy handling, session invalidation) lives in the session and lighting
// packages.
//
// # Wire Format
//
// Requests are POSTed as JSON:
//
//	{"method": "configManager.getConfig", "params": {"name": "Lighting_V2"}, "id": 10, "session": "..."}
//
// Responses carry a boolean "result", optional "params", "session" and
// "error" members:
//
//	{"result": false, "error": {"code": 287637505, "message": "Invalid session in request data!"}, "id": 10}
//
// The session token is opaque. Depending on firmware it is a JSON string or a
// JSON number, so SessionID keeps the raw encoding and echoes it back verbatim.
//
// # Error Handling
//
// Every failure is an *RPCError with an ErrorType. Network failures are
// classified (timeout, connection refused, DNS) the same way for every call,
// and device faults are mapped onto ErrTypeDeviceBusy or ErrTypeSessionInvalid
// when they carry one of the reserved codes.
package rpc

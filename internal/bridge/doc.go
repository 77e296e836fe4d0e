// Package bridge exposes camera light commands to home automation systems.
//
// Two transports share one Registry of devices:
//
//   - MQTTBridge subscribes to "<prefix>/<device>/set". The payload is the raw
//     command text ("on", "auto 60", "off"). The OperationResult is published
//     as JSON to "<prefix>/<device>/result" and every status label to the
//     retained topic "<prefix>/<device>/status".
//   - API serves "POST /api/devices/{name}/light" with {"command": "..."}
//     and "GET /api/devices/{name}/light" for the current state, plus
//     "/healthz" and "/metrics".
//
// Commands for one device are handled one at a time, in arrival order.
// Different devices proceed in parallel.
package bridge

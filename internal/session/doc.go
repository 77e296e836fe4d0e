// Package session implements the camera login handshake and the cache that
// holds the resulting session between commands.
//
// # Login flow
//
// A first global.login is sent with an empty password. The device answers in
// one of three ways:
//
//   - result=false with params.realm/params.random: a challenge. The client
//     answers on the same session id with ComputeAnswer.
//   - result=true: no challenge is required and the session is usable.
//   - error code 486: the device is busy. The client waits BusyBackoff and
//     repeats the first login exactly once.
//
// Anything else is a failure. Authenticate never retries beyond the single
// busy retry.
//
// # Caching
//
// A successful login is stored in a Cache for DefaultTTL (25 minutes), which is
// below the device's own session timeout. An expired session is logged out
// (best effort) before a new login replaces it:
//
//	cache := session.NewCache()
//	auth := session.NewAuthenticator(rpc.NewClient("192.168.1.108"), "admin", password, cache)
//
//	sess, err := auth.Authenticate(ctx)
//	if err != nil {
//		return err
//	}
//
// Authenticate is safe for concurrent use. Concurrent callers share a single
// login, so two logins never race and orphan a session on the device.
package session

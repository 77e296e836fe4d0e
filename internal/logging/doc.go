// Package logging provides structured logging for camlight.
//
// This package wraps a zap logger with convenience functions used throughout
// the client. The logger is silent until Initialize is called with a level or
// the CAMLIGHT_LOG_LEVEL environment variable is set, so CLI output stays clean
// by default.
//
// # Log Levels
//
//   - Debug: RPC round trips and (redacted) request/response bodies
//   - Info: logins, session reuse, commands handled
//   - Warn: recoverable failures (busy device, rejected session, logout errors)
//   - Error: failed logins and failed commands
//
// # Structured Logging
//
//	logging.Info("Login successful",
//	    zap.String("session", sess.ID.String()),
//	    zap.String("path", "challenge"),
//	)
//
// Components that want a scoped logger use Named:
//
//	log := logging.Named("session")
//
// # Credentials
//
// LogRPCPayload masks the "password" parameter of login calls before the body
// reaches the log. The challenge answer is a digest rather than the password,
// but it is still replayable within the challenge window and is never logged.
package logging

// Package lighting turns light commands into Lighting_V2 configuration writes.
//
// A Handler drives one command end to end:
//
//	auth := session.NewAuthenticator(client, user, password, cache)
//	lights := lighting.NewController(client, cache)
//	handler := lighting.NewHandler("porch", auth, lights, reporter)
//
//	result := handler.HandleCommand(ctx, "auto 60")
//
// The Controller reads the current Lighting_V2 table, changes only the mode
// and brightness fields and writes the table back. Firmware that rejects
// configManager.setConfig is retried once through system.multicall.
//
// When the device reports that the session is no longer valid, the Controller
// clears the session cache and returns a result with RetryRequested set. The
// Handler then logs in again and repeats the command exactly once.
package lighting

// Package server runs camlight as a long-lived bridge between home
// automation and one or more cameras.
//
// A Server builds the command stack for every configured camera and exposes
// it through the HTTP API, the MQTT bridge, or both:
//
//	srv, err := server.New(&server.Config{
//	    Listen:      ":8080",
//	    MQTT:        &bridge.MQTTOptions{Broker: "tcp://broker:1883"},
//	    TopicPrefix: "camlight",
//	}, devices)
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
//
// Start blocks until the context ends or SIGINT/SIGTERM arrives. Shutdown
// then lets queued commands finish, marks the bridge offline on the
// "<prefix>/bridge/state" topic and logs out of every camera session.
package server

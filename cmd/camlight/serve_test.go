package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/camlight/internal/config"
	"github.com/muurk/camlight/internal/server"
)

func resetServeFlags(t *testing.T) {
	t.Helper()
	serveListen, serveBroker, serveTopicPrefix, serveNoHTTP = "", "", "", false
	serveShutdown = server.DefaultShutdownTimeout
	t.Cleanup(func() {
		serveListen, serveBroker, serveTopicPrefix, serveNoHTTP = "", "", "", false
	})
}

func TestServerConfig_Defaults(t *testing.T) {
	resetServeFlags(t)

	sc, err := serverConfig(config.New())
	require.NoError(t, err)
	assert.Equal(t, config.DefaultListen, sc.Listen)
	assert.Nil(t, sc.MQTT)
	assert.Equal(t, server.DefaultShutdownTimeout, sc.ShutdownTimeout)
}

func TestServerConfig_FromFile(t *testing.T) {
	resetServeFlags(t)
	t.Setenv("CAMLIGHT_TEST_BROKER_PW", "secret")

	cfg := config.New()
	cfg.MQTT = &config.MQTTConfig{
		Broker:      "tcp://broker:1883",
		TopicPrefix: "home/cams/",
		Username:    "bridge",
		PasswordEnv: "CAMLIGHT_TEST_BROKER_PW",
	}

	sc, err := serverConfig(cfg)
	require.NoError(t, err)
	assert.Empty(t, sc.Listen, "mqtt only when no http section")
	require.NotNil(t, sc.MQTT)
	assert.Equal(t, "tcp://broker:1883", sc.MQTT.Broker)
	assert.Equal(t, "bridge", sc.MQTT.Username)
	assert.Equal(t, "secret", sc.MQTT.Password)
	assert.Equal(t, "home/cams", sc.TopicPrefix)

	cfg.HTTP = &config.HTTPConfig{Listen: "127.0.0.1:9000"}
	sc, err = serverConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", sc.Listen)
}

func TestServerConfig_Flags(t *testing.T) {
	resetServeFlags(t)
	serveBroker = "mqtts://broker.lan"
	serveTopicPrefix = "lab"
	serveListen = ":9999"

	cfg := config.New()
	cfg.MQTT = &config.MQTTConfig{Broker: "tcp://old:1883", ClientID: "cam-1"}

	sc, err := serverConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, ":9999", sc.Listen)
	assert.Equal(t, "mqtts://broker.lan", sc.MQTT.Broker)
	assert.Equal(t, "cam-1", sc.MQTT.ClientID)
	assert.Equal(t, "lab", sc.TopicPrefix)
	assert.Equal(t, "tcp://old:1883", cfg.MQTT.Broker, "config must not be modified")
}

func TestServerConfig_NothingToServe(t *testing.T) {
	resetServeFlags(t)
	serveNoHTTP = true

	_, err := serverConfig(config.New())
	assert.ErrorContains(t, err, "--no-http needs an MQTT broker")
}

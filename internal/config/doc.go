// Package config provides user configuration management for camlight.
//
// This package manages a YAML-based configuration file that names the cameras
// camlight controls and, optionally, the MQTT broker and HTTP listener used by
// 'camlight serve'. The configuration follows OS-specific conventions for
// storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/camlight/config.yaml or $HOME/.config/camlight/config.yaml
//   - macOS: $HOME/.config/camlight/config.yaml
//   - Windows: %LOCALAPPDATA%\camlight\config.yaml
//
// # Example
//
//	version: 1
//	devices:
//	  porch:
//	    address: 192.168.1.108
//	    username: admin
//	    password_env: PORCH_CAMERA_PASSWORD
//	mqtt:
//	  broker: tcp://localhost:1883
//	  topic_prefix: camlight
//	http:
//	  listen: ":8080"
//
// # Security
//
// IMPORTANT: This package NEVER stores passwords. Device entries name an
// environment variable holding the password instead.
//
// # Thread Safety
//
// Save is protected by a mutex and writes through a temporary file and rename.
package config

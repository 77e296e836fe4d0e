package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "camlight") {
		t.Errorf("GetConfigDir() = %v, should contain 'camlight'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME is only honoured on Unix-like systems")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join("/tmp/xdg-test", "camlight") {
		t.Errorf("GetConfigDir() = %s", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Version != 1 {
		t.Errorf("New().Version = %v, want 1", cfg.Version)
	}
	if cfg.Devices == nil {
		t.Error("New().Devices should not be nil")
	}
	if cfg.MQTT != nil || cfg.HTTP != nil {
		t.Error("New() should leave optional sections empty")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Version != 1 || len(cfg.Devices) != 0 {
		t.Errorf("Load() of a missing file = %+v, want defaults", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
devices:
  porch:
    address: 192.168.1.108
    password_env: PORCH_PW
    timeout: 5s
  garage:
    address: http://10.0.0.20:8080
    username: operator
mqtt:
  broker: tcp://localhost:1883
  topic_prefix: home/cameras/
http:
  listen: 127.0.0.1:9090
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	porch, err := cfg.Device("porch")
	if err != nil {
		t.Fatalf("Device(porch) error = %v", err)
	}
	if porch.Address != "192.168.1.108" || porch.User() != "admin" || porch.Timeout != 5*time.Second {
		t.Errorf("porch = %+v", porch)
	}

	garage, _ := cfg.Device("garage")
	if garage.User() != "operator" {
		t.Errorf("garage.User() = %s", garage.User())
	}

	if cfg.MQTT.Prefix() != "home/cameras" {
		t.Errorf("MQTT.Prefix() = %s", cfg.MQTT.Prefix())
	}
	if cfg.HTTP.ListenAddr() != "127.0.0.1:9090" {
		t.Errorf("HTTP.ListenAddr() = %s", cfg.HTTP.ListenAddr())
	}
	if got := cfg.DeviceNames(); len(got) != 2 || got[0] != "garage" || got[1] != "porch" {
		t.Errorf("DeviceNames() = %v", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "version: [", "failed to parse"},
		{"bad version", "version: 2\n", "unsupported config version"},
		{"missing address", "version: 1\ndevices:\n  porch:\n    username: admin\n", "address is required"},
		{"wildcard name", "version: 1\ndevices:\n  a/b:\n    address: x\n", "must not contain"},
		{"mqtt without broker", "version: 1\nmqtt:\n  topic_prefix: x\n", "broker is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := New()
	cfg.SetDevice("porch", &Device{Address: "192.168.1.108", PasswordEnv: "PORCH_PW", Timeout: 3 * time.Second})
	cfg.MQTT = &MQTTConfig{Broker: "tcp://broker:1883"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# camlight configuration file") {
		t.Error("saved file should start with the header comment")
	}
	if strings.Contains(string(data), "password:") {
		t.Error("saved file must not contain a password field")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
		}
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	porch, err := loaded.Device("porch")
	if err != nil {
		t.Fatal(err)
	}
	if porch.Address != "192.168.1.108" || porch.PasswordEnv != "PORCH_PW" || porch.Timeout != 3*time.Second {
		t.Errorf("round trip device = %+v", porch)
	}
	if loaded.MQTT == nil || loaded.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("round trip mqtt = %+v", loaded.MQTT)
	}
}

func TestDevice_NotFound(t *testing.T) {
	cfg := New()
	_, err := cfg.Device("porch")
	if err == nil || !strings.Contains(err.Error(), "no devices configured") {
		t.Errorf("Device() error = %v", err)
	}

	cfg.SetDevice("garage", &Device{Address: "x"})
	_, err = cfg.Device("porch")
	if err == nil || !strings.Contains(err.Error(), "garage") {
		t.Errorf("Device() error should list configured names, got %v", err)
	}
}

func TestDevice_Password(t *testing.T) {
	d := &Device{Address: "x"}
	if _, ok := d.Password(); ok {
		t.Error("Password() without PasswordEnv should report false")
	}

	d.PasswordEnv = "CAMLIGHT_TEST_PW"
	t.Setenv("CAMLIGHT_TEST_PW", "")
	if _, ok := d.Password(); ok {
		t.Error("Password() with an empty variable should report false")
	}

	t.Setenv("CAMLIGHT_TEST_PW", "s3cret")
	if pw, ok := d.Password(); !ok || pw != "s3cret" {
		t.Errorf("Password() = %q, %v", pw, ok)
	}
}

func TestMarkSeen(t *testing.T) {
	cfg := New()
	cfg.SetDevice("porch", &Device{Address: "x"})

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg.MarkSeen("porch", at)
	cfg.MarkSeen("unknown", at)

	if !cfg.Devices["porch"].LastSeen.Equal(at) {
		t.Errorf("LastSeen = %v", cfg.Devices["porch"].LastSeen)
	}
}

func TestDefaults(t *testing.T) {
	var h *HTTPConfig
	if h.ListenAddr() != ":8080" {
		t.Errorf("nil HTTPConfig.ListenAddr() = %s", h.ListenAddr())
	}
	if (&MQTTConfig{}).Prefix() != "camlight" {
		t.Error("empty topic prefix should default to camlight")
	}
}

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deevus/gtnh-translator-tui/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[servers.local]
url = "http://localhost:8000/"

[servers.lab]
url = "https://translator.lab.example.com"
ws_path = "/live"
request_timeout = "3s"
reconnect = false
reconnect_base_delay = "500ms"
reconnect_max_delay = "5s"
`)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(cfg.Servers))
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}

	local := cfg.Servers["local"]
	if local.URL != "http://localhost:8000" {
		t.Errorf("expected trailing slash trimmed, got %s", local.URL)
	}
	if local.WSPath != "/ws" {
		t.Errorf("expected default ws_path /ws, got %s", local.WSPath)
	}
	if local.RequestTimeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %s", local.RequestTimeout)
	}
	if !local.ReconnectEnabled() {
		t.Error("expected reconnect to default to true")
	}
	if local.ReconnectBaseDelay != time.Second || local.ReconnectMaxDelay != 30*time.Second {
		t.Errorf("unexpected default delays %s/%s", local.ReconnectBaseDelay, local.ReconnectMaxDelay)
	}

	lab := cfg.Servers["lab"]
	if lab.WSPath != "/live" {
		t.Errorf("expected ws_path /live, got %s", lab.WSPath)
	}
	if lab.RequestTimeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", lab.RequestTimeout)
	}
	if lab.ReconnectEnabled() {
		t.Error("expected reconnect=false for lab")
	}
	if lab.ReconnectBaseDelay != 500*time.Millisecond || lab.ReconnectMaxDelay != 5*time.Second {
		t.Errorf("unexpected delays %s/%s", lab.ReconnectBaseDelay, lab.ReconnectMaxDelay)
	}
}

func TestLoad_WithSSH(t *testing.T) {
	path := writeConfig(t, `
[servers.box]
url = "http://127.0.0.1:8000"

[servers.box.ssh]
host = "build-box"
port = 2222
username = "root"
private_key_path = "/home/test/.ssh/id_ed25519"
host_key_fingerprint = "SHA256:abc123"
`)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ssh := cfg.Servers["box"].SSH
	if ssh == nil {
		t.Fatal("expected SSH config")
	}
	if ssh.Host != "build-box" {
		t.Errorf("expected ssh host build-box, got %s", ssh.Host)
	}
	if ssh.Port != 2222 {
		t.Errorf("expected ssh port 2222, got %d", ssh.Port)
	}
	if ssh.Username != "root" {
		t.Errorf("expected ssh username root, got %s", ssh.Username)
	}
	if ssh.HostKeyFingerprint != "SHA256:abc123" {
		t.Errorf("expected fingerprint SHA256:abc123, got %s", ssh.HostKeyFingerprint)
	}
}

func TestLoad_SSHDefaults(t *testing.T) {
	t.Setenv("USER", "tester")
	path := writeConfig(t, `
[servers.box]
url = "http://build-box:8000"

[servers.box.ssh]
private_key_path = "/home/test/.ssh/id_ed25519"
host_key_fingerprint = "SHA256:abc123"
`)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ssh := cfg.Servers["box"].SSH
	if ssh.Port != 22 {
		t.Errorf("expected default ssh port 22, got %d", ssh.Port)
	}
	if ssh.Host != "build-box" {
		t.Errorf("expected ssh host to default to url host, got %s", ssh.Host)
	}
	if ssh.Username != "tester" {
		t.Errorf("expected ssh username from $USER, got %s", ssh.Username)
	}
}

func TestLoad_ExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	path := writeConfig(t, `
[servers.box]
url = "http://localhost:8000"

[servers.box.ssh]
private_key_path = "~/.ssh/id_ed25519"
host_key_fingerprint = "SHA256:abc123"
`)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := filepath.Join(home, ".ssh", "id_ed25519")
	if cfg.Servers["box"].SSH.PrivateKeyPath != expected {
		t.Errorf("expected expanded path %s, got %s", expected, cfg.Servers["box"].SSH.PrivateKeyPath)
	}
}

func TestLoad_ExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_LOG_DIR", "/custom/logs")
	path := writeConfig(t, `
[log]
file = "$TEST_LOG_DIR/tui.log"

[servers.local]
url = "http://localhost:8000"
`)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.File != "/custom/logs/tui.log" {
		t.Errorf("expected expanded log file, got %s", cfg.Log.File)
	}
}

func TestLoad_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "ftp://localhost", "http://"} {
		path := writeConfig(t, "[servers.bad]\nurl = \""+raw+"\"\n")
		if _, err := config.LoadFrom(path); err == nil {
			t.Errorf("expected error for url %q", raw)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.LoadFrom("/nonexistent/config.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_EmptyServers(t *testing.T) {
	path := writeConfig(t, ``)

	_, err := config.LoadFrom(path)
	if !errors.Is(err, config.ErrNoServers) {
		t.Fatalf("expected ErrNoServers, got %v", err)
	}
}

func TestConfig_ServerNames(t *testing.T) {
	path := writeConfig(t, `
[servers.beta]
url = "http://b.local:8000"

[servers.alpha]
url = "http://a.local:8000"
`)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := cfg.ServerNames()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	if names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected [alpha beta], got %v", names)
	}
}

func TestConfig_Select(t *testing.T) {
	single, err := config.AdHoc("http://localhost:8000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	name, server, err := single.Select("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "default" || server.URL != "http://localhost:8000" {
		t.Errorf("unexpected selection %s %+v", name, server)
	}

	multi := &config.Config{Servers: map[string]config.ServerConfig{
		"a": {URL: "http://a"},
		"b": {URL: "http://b"},
	}}
	if _, _, err := multi.Select(""); err == nil {
		t.Error("expected error selecting among multiple servers")
	}
	if _, _, err := multi.Select("c"); err == nil {
		t.Error("expected error for unknown server")
	}
	if name, _, err := multi.Select("b"); err != nil || name != "b" {
		t.Errorf("expected b, got %s (%v)", name, err)
	}
}

func TestAdHoc_InvalidURL(t *testing.T) {
	if _, err := config.AdHoc("not a url"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDefaultPath(t *testing.T) {
	path := config.DefaultPath()
	if path == "" {
		t.Fatal("expected non-empty default path")
	}
	if filepath.Base(filepath.Dir(path)) != "gtnh-translator-tui" {
		t.Errorf("expected app directory in %s", path)
	}
}

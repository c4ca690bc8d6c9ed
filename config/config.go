package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultWSPath             = "/ws"
	DefaultRequestTimeout     = 10 * time.Second
	DefaultReconnectBaseDelay = time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultSSHPort            = 22
)

// ErrNoServers is returned when a config file defines no server profiles.
var ErrNoServers = errors.New("config has no servers defined")

// Config is the top-level configuration.
type Config struct {
	Log     LogConfig               `toml:"log"`
	Servers map[string]ServerConfig `toml:"servers"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ServerConfig holds connection details for one translation server.
type ServerConfig struct {
	URL                string        `toml:"url"`
	WSPath             string        `toml:"ws_path"`
	RequestTimeout     time.Duration `toml:"request_timeout"`
	Reconnect          *bool         `toml:"reconnect"`
	ReconnectBaseDelay time.Duration `toml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `toml:"reconnect_max_delay"`
	SSH                *SSHConfig    `toml:"ssh"`
}

// SSHConfig holds optional SSH tunnel details for servers bound to the
// remote host's loopback interface.
type SSHConfig struct {
	Host               string `toml:"host"`
	Port               int    `toml:"port"`
	Username           string `toml:"username"`
	PrivateKeyPath     string `toml:"private_key_path"`
	HostKeyFingerprint string `toml:"host_key_fingerprint"`
}

// ReconnectEnabled reports whether the live channel should redial after a drop.
func (s ServerConfig) ReconnectEnabled() bool {
	return s.Reconnect == nil || *s.Reconnect
}

// DefaultPath returns the default config file path using XDG conventions.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "gtnh-translator-tui", "config.toml")
}

// LoadFrom reads and parses the config file at the given path.
// It applies defaults and validates every server profile.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if len(cfg.Servers) == 0 {
		return nil, ErrNoServers
	}
	for name, server := range cfg.Servers {
		server, err := normalize(server)
		if err != nil {
			return nil, fmt.Errorf("server %q: %w", name, err)
		}
		cfg.Servers[name] = server
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	return &cfg, nil
}

// AdHoc builds a single-profile config for a server URL given on the command line.
func AdHoc(rawURL string) (*Config, error) {
	server, err := normalize(ServerConfig{URL: rawURL})
	if err != nil {
		return nil, err
	}
	return &Config{Servers: map[string]ServerConfig{"default": server}}, nil
}

// Select returns the named profile, or the only profile when name is empty.
func (c *Config) Select(name string) (string, ServerConfig, error) {
	if name == "" {
		names := c.ServerNames()
		if len(names) != 1 {
			return "", ServerConfig{}, fmt.Errorf("multiple servers configured, use --server (available: %s)", strings.Join(names, ", "))
		}
		name = names[0]
	}
	server, ok := c.Servers[name]
	if !ok {
		return "", ServerConfig{}, fmt.Errorf("server %q not found in config", name)
	}
	return name, server, nil
}

func normalize(server ServerConfig) (ServerConfig, error) {
	u, err := url.Parse(server.URL)
	if err != nil {
		return server, fmt.Errorf("invalid url %q: %w", server.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return server, fmt.Errorf("url %q must be http(s)://host[:port]", server.URL)
	}
	server.URL = strings.TrimRight(server.URL, "/")

	if server.WSPath == "" {
		server.WSPath = DefaultWSPath
	}
	if server.RequestTimeout <= 0 {
		server.RequestTimeout = DefaultRequestTimeout
	}
	if server.ReconnectBaseDelay <= 0 {
		server.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if server.ReconnectMaxDelay <= 0 {
		server.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if server.ReconnectMaxDelay < server.ReconnectBaseDelay {
		server.ReconnectMaxDelay = server.ReconnectBaseDelay
	}

	if server.SSH != nil {
		ssh := *server.SSH
		if ssh.Host == "" {
			ssh.Host = u.Hostname()
		}
		if ssh.Port == 0 {
			ssh.Port = DefaultSSHPort
		}
		if ssh.Username == "" {
			ssh.Username = os.Getenv("USER")
		}
		ssh.PrivateKeyPath = expandPath(ssh.PrivateKeyPath)
		server.SSH = &ssh
	}
	return server, nil
}

// expandPath expands ~ to $HOME and then expands all environment variables.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = "$HOME" + path[1:]
	}
	return os.ExpandEnv(path)
}

// ServerNames returns the sorted list of server profile names.
func (c *Config) ServerNames() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

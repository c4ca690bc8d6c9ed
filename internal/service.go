package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/deevus/gtnh-translator-tui/config"
	"github.com/deevus/gtnh-translator-tui/internal/api"
	"github.com/deevus/gtnh-translator-tui/internal/live"
	"github.com/deevus/gtnh-translator-tui/internal/state"
	"github.com/deevus/gtnh-translator-tui/internal/tunnel"
	"github.com/google/uuid"
)

// Services holds the connections to one translation server.
type Services struct {
	API    *api.Client
	Tunnel *tunnel.Tunnel // nil unless the profile has an [ssh] section

	server     config.ServerConfig
	wsURL      string
	sessionID  string
	httpClient *http.Client
	log        *slog.Logger
}

// NewServices opens the SSH tunnel when configured and builds the API client.
// The push channel is created separately with Channel.
func NewServices(ctx context.Context, server config.ServerConfig, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wsURL, err := live.WebsocketURL(server.URL, server.WSPath)
	if err != nil {
		return nil, err
	}

	svc := &Services{
		server:    server,
		wsURL:     wsURL,
		sessionID: uuid.NewString(),
		log:       logger,
	}

	var dial func(ctx context.Context, network, addr string) (net.Conn, error)
	if server.SSH != nil {
		tun, err := openTunnel(ctx, server.SSH, logger)
		if err != nil {
			return nil, err
		}
		svc.Tunnel = tun
		dial = tun.DialContext
		svc.httpClient = &http.Client{Transport: &http.Transport{DialContext: tun.DialContext}}
	}

	svc.API = api.New(api.Options{
		BaseURL:     server.URL,
		Timeout:     server.RequestTimeout,
		DialContext: dial,
		SessionID:   svc.sessionID,
		Logger:      logger,
	})
	return svc, nil
}

func openTunnel(ctx context.Context, cfg *config.SSHConfig, logger *slog.Logger) (*tunnel.Tunnel, error) {
	key, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading SSH private key %s: %w", cfg.PrivateKeyPath, err)
	}
	return tunnel.Open(ctx, tunnel.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.Username,
		PrivateKey:         key,
		HostKeyFingerprint: cfg.HostKeyFingerprint,
	}, logger)
}

// WebsocketURL returns the push channel endpoint.
func (s *Services) WebsocketURL() string {
	return s.wsURL
}

// Channel builds a push channel client reporting transitions to onState.
func (s *Services) Channel(onState func(state.ConnState)) *live.Client {
	header := http.Header{}
	header.Set(api.HeaderSessionID, s.sessionID)
	return live.New(live.Options{
		URL:            s.wsURL,
		HTTPClient:     s.httpClient,
		Header:         header,
		Reconnect:      s.server.ReconnectEnabled(),
		RetryBaseDelay: s.server.ReconnectBaseDelay,
		RetryMaxDelay:  s.server.ReconnectMaxDelay,
		OnState:        onState,
		Logger:         s.log,
	})
}

// Close releases the SSH tunnel, if any.
func (s *Services) Close() error {
	if s.Tunnel == nil {
		return nil
	}
	return s.Tunnel.Close()
}

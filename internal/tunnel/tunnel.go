// Package tunnel carries the client's HTTP and websocket traffic over SSH,
// for servers that only listen on the remote host's loopback interface.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

const dialTimeout = 10 * time.Second

// ErrNoFingerprint is returned when a tunnel is configured without a pinned host key.
var ErrNoFingerprint = errors.New("host_key_fingerprint is required for SSH")

// Config describes the SSH hop.
type Config struct {
	Host               string
	Port               int
	User               string
	PrivateKey         []byte
	HostKeyFingerprint string // SHA256:... as printed by ssh-keygen -lf
	// HandshakeTimeout bounds the TCP connect and SSH handshake. Zero means 10s.
	HandshakeTimeout time.Duration
}

// Tunnel is an open SSH connection used as a dialer.
type Tunnel struct {
	client *ssh.Client
	addr   string
	log    *slog.Logger
}

// Open connects to the SSH server, verifying its host key against the pinned fingerprint.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Tunnel, error) {
	if cfg.HostKeyFingerprint == "" {
		return nil, ErrNoFingerprint
	}
	signer, err := ssh.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parsing SSH private key: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = dialTimeout
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: pinnedHostKey(cfg.HostKeyFingerprint),
		Timeout:         timeout,
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	// NewClientConn has no timeout of its own.
	_ = conn.SetDeadline(time.Now().Add(timeout))
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	stop()
	if err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("SSH handshake with %s: %w", addr, ctx.Err())
		}
		return nil, fmt.Errorf("SSH handshake with %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	logger.Info("ssh tunnel open", "addr", addr, "user", cfg.User)
	return &Tunnel{
		client: ssh.NewClient(c, chans, reqs),
		addr:   addr,
		log:    logger,
	}, nil
}

// DialContext opens a connection to addr from the SSH server's side.
func (t *Tunnel) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := t.client.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("tunnel dial %s via %s: %w", addr, t.addr, err)
	}
	return conn, nil
}

// Close shuts down the SSH connection and every connection dialed through it.
func (t *Tunnel) Close() error {
	t.log.Debug("ssh tunnel closing", "addr", t.addr)
	return t.client.Close()
}

// pinnedHostKey rejects any host key whose SHA256 fingerprint differs from want.
func pinnedHostKey(want string) ssh.HostKeyCallback {
	return func(hostname string, _ net.Addr, key ssh.PublicKey) error {
		got := ssh.FingerprintSHA256(key)
		if got != want {
			return fmt.Errorf("host key mismatch for %s: got %s, want %s", hostname, got, want)
		}
		return nil
	}
}

// ScanHostKey connects to an SSH server and returns the host key fingerprint.
func ScanHostKey(host string, port int) (string, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var fingerprint string
	cfg := &ssh.ClientConfig{
		User: "probe",
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			fingerprint = ssh.FingerprintSHA256(key)
			return nil
		},
		Timeout: 5 * time.Second,
	}
	conn, err := ssh.Dial("tcp", addr, cfg)
	if conn != nil {
		conn.Close()
	}
	if fingerprint != "" {
		return fingerprint, nil
	}
	return "", fmt.Errorf("could not connect to %s: %v", addr, err)
}

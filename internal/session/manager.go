// Package session lazily derives exchange API credentials from the wallet
// key on first authenticated use, exactly once per successful derivation.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alanyoungcy/polygate/internal/crypto"
	"github.com/alanyoungcy/polygate/internal/domain"
	"github.com/alanyoungcy/polygate/internal/platform/polymarket"
)

// Session is an authenticated trading context: the wallet signer, the derived
// API credentials, and a CLOB client carrying both.
type Session struct {
	Signer *crypto.Signer
	Creds  *crypto.APICreds
	Clob   *polymarket.ClobClient
}

// Address returns the wallet address the session trades as.
func (s *Session) Address() string {
	return s.Signer.Address().Hex()
}

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	stateFailed
)

// attempt is one in-flight derivation. Waiters block on done; sess and err
// are written exactly once before done is closed.
type attempt struct {
	done chan struct{}
	sess *Session
	err  error
}

// Config holds what the manager needs to build a session.
type Config struct {
	ClobBaseURL string
	ChainID     int64
	Keys        crypto.KeySource
}

// Manager guards session initialization. Concurrent EnsureReady calls during
// an in-flight derivation join that attempt rather than starting their own; a
// failed derivation resets the manager so a later call retries. A missing
// wallet key fails the manager permanently.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	st       state
	inflight *attempt
	sess     *Session
	fatalErr error
}

// NewManager creates a manager. No network or key material is touched until
// the first EnsureReady call.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "session")),
	}
}

// EnsureReady returns the ready session, deriving credentials on first use.
// The caller that finds the manager uninitialized performs the derivation;
// everyone else waits for its outcome or their own ctx, whichever ends first.
func (m *Manager) EnsureReady(ctx context.Context) (*Session, error) {
	m.mu.Lock()

	switch m.st {
	case stateReady:
		sess := m.sess
		m.mu.Unlock()
		return sess, nil

	case stateFailed:
		err := m.fatalErr
		m.mu.Unlock()
		return nil, err

	case stateInitializing:
		att := m.inflight
		m.mu.Unlock()
		select {
		case <-att.done:
			return att.sess, att.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Uninitialized. A missing key can never succeed, so fail for good.
	if m.cfg.Keys.IsEmpty() {
		m.st = stateFailed
		m.fatalErr = fmt.Errorf("session: no wallet key configured: %w", domain.ErrMissingCredential)
		err := m.fatalErr
		m.mu.Unlock()
		return nil, err
	}

	att := &attempt{done: make(chan struct{})}
	m.inflight = att
	m.st = stateInitializing
	m.mu.Unlock()

	sess, err := m.initialize(ctx)

	m.mu.Lock()
	if err != nil {
		m.st = stateUninitialized
		m.inflight = nil
	} else {
		m.st = stateReady
		m.sess = sess
		m.inflight = nil
	}
	m.mu.Unlock()

	att.sess = sess
	att.err = err
	close(att.done)

	return sess, err
}

// initialize loads the key, signs the auth challenge, and exchanges it for
// API credentials.
func (m *Manager) initialize(ctx context.Context) (*Session, error) {
	keyHex, err := crypto.LoadKey(m.cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("session: load key: %w", err)
	}

	signer, err := crypto.NewSigner(keyHex, m.cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("session: build signer: %w", err)
	}

	bootstrap := polymarket.NewClobClient(m.cfg.ClobBaseURL, signer, nil)
	creds, err := bootstrap.DeriveAPICreds(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "credential derivation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("session: derive credentials: %w", err)
	}

	m.logger.InfoContext(ctx, "session ready",
		slog.String("address", signer.Address().Hex()),
		slog.String("api_key", creds.Key),
	)

	return &Session{
		Signer: signer,
		Creds:  creds,
		Clob:   polymarket.NewClobClient(m.cfg.ClobBaseURL, signer, creds),
	}, nil
}

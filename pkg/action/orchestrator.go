package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mchmarny/topbar/pkg/metric"
	"github.com/mchmarny/topbar/pkg/nav"
	"golang.org/x/sync/singleflight"
)

const (
	resultSuccess     = "success"
	resultRejected    = "rejected"
	resultError       = "error"
	resultUnavailable = "unavailable"
	resultBlocked     = "blocked"

	logoutKey = "logout"
)

// WalletState is the wallet connection state of one mount.
type WalletState int

const (
	// Disconnected accepts a connect trigger.
	Disconnected WalletState = iota
	// Connecting is waiting on the provider.
	Connecting
	// Connected is terminal; the trigger is disabled.
	Connected
	// Failed is the outcome of a failed attempt and accepts retries like Disconnected.
	Failed
)

// String returns the state name.
func (s WalletState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Orchestrator runs the logout and connect-wallet flows for one mount.
type Orchestrator struct {
	terminator Terminator
	wallet     WalletProvider
	logger     *slog.Logger

	logoutCounter  metric.IncrementalCounter
	connectCounter metric.IncrementalCounter

	logout singleflight.Group

	mu      sync.Mutex
	state   WalletState
	address string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for flow outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithCounters sets the counters incremented per flow outcome.
// Both are labeled by result.
func WithCounters(logout, connect metric.IncrementalCounter) Option {
	return func(o *Orchestrator) {
		o.logoutCounter = logout
		o.connectCounter = connect
	}
}

// New returns an Orchestrator ending sessions through t. A nil wallet
// means no wallet provider is installed.
func New(t Terminator, wallet WalletProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		terminator: t,
		wallet:     wallet,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// logoutOutcome is what every caller of one logout request shows.
type logoutOutcome struct {
	notice   string
	redirect string
}

// Logout ends the session. On success it notifies the user and navigates
// to the login route; on failure it only notifies. Overlapping calls join
// the one in flight: a single request is sent and each caller's surface
// shows the shared outcome.
func (o *Orchestrator) Logout(ctx context.Context, s Surface) error {
	v, err, shared := o.logout.Do(logoutKey, func() (interface{}, error) {
		return o.runLogout(ctx)
	})

	if shared {
		o.logger.Debug("logout shared in-flight request")
	}

	out, _ := v.(logoutOutcome)
	if err != nil {
		s.Error(out.notice)
		return err
	}

	s.Info(out.notice)

	if err := s.Navigate(ctx, out.redirect); err != nil {
		return fmt.Errorf("navigate to %s: %w", out.redirect, err)
	}

	return nil
}

func (o *Orchestrator) runLogout(ctx context.Context) (logoutOutcome, error) {
	if o.terminator == nil {
		o.count(o.logoutCounter, resultError)
		return logoutOutcome{notice: MsgLogoutError}, errors.New("no session terminator configured")
	}

	if err := o.terminator.Terminate(ctx); err != nil {
		if errors.Is(err, ErrSessionRejected) {
			o.count(o.logoutCounter, resultRejected)
			o.logger.Error("logout rejected", "error", err)
			return logoutOutcome{notice: MsgLogoutFailed}, fmt.Errorf("logout: %w", err)
		}

		o.count(o.logoutCounter, resultError)
		o.logger.Error("logout error", "error", err)
		return logoutOutcome{notice: MsgLogoutError}, fmt.Errorf("logout: %w", err)
	}

	o.count(o.logoutCounter, resultSuccess)
	o.logger.Info("logged out", "redirect", nav.Login)

	return logoutOutcome{notice: MsgLoggedOut, redirect: nav.Login}, nil
}

// ConnectWallet requests account access from the wallet provider and
// stores the first account. Once connected, further calls return
// ErrAlreadyConnected without contacting the provider. A failed attempt
// leaves the address unset and permits a retry.
func (o *Orchestrator) ConnectWallet(ctx context.Context, n Notifier) (string, error) {
	o.mu.Lock()
	switch o.state {
	case Connected:
		o.mu.Unlock()
		o.count(o.connectCounter, resultBlocked)
		return "", ErrAlreadyConnected
	case Connecting:
		o.mu.Unlock()
		o.count(o.connectCounter, resultBlocked)
		return "", ErrConnectInProgress
	}

	if o.wallet == nil {
		o.mu.Unlock()
		o.count(o.connectCounter, resultUnavailable)
		o.logger.Warn("wallet provider not available")
		n.Error(MsgWalletMissing)
		return "", ErrWalletUnavailable
	}

	o.state = Connecting
	o.mu.Unlock()

	accounts, err := o.wallet.RequestAccounts(ctx)
	if err == nil && len(accounts) == 0 {
		err = ErrNoAccounts
	}

	o.mu.Lock()
	if err != nil {
		o.state = Failed
		o.mu.Unlock()

		o.count(o.connectCounter, resultError)
		o.logger.Error("wallet connect failed", "error", err)
		n.Error(MsgWalletFailed)
		return "", fmt.Errorf("request accounts: %w", err)
	}

	o.state = Connected
	o.address = accounts[0]
	o.mu.Unlock()

	o.count(o.connectCounter, resultSuccess)
	o.logger.Info("wallet connected", "address", accounts[0])
	n.Info(ConnectedMessage(accounts[0]))

	return accounts[0], nil
}

// WalletAddress returns the connected address, if any.
func (o *Orchestrator) WalletAddress() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.address, o.state == Connected
}

// CanConnect reports whether the connect trigger is enabled.
func (o *Orchestrator) CanConnect() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == Disconnected || o.state == Failed
}

// State returns the current wallet state.
func (o *Orchestrator) State() WalletState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) count(c metric.IncrementalCounter, result string) {
	if c != nil {
		c.Increment(result)
	}
}

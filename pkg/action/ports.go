// Package action runs the top bar's side-effecting flows: ending the
// session and connecting a wallet. Both report their outcome through a
// Notifier and never retry on their own.
package action

import (
	"context"
	"errors"
)

var (
	// ErrSessionRejected is returned by a Terminator when the endpoint
	// answered but did not report success.
	ErrSessionRejected = errors.New("session termination rejected")

	// ErrWalletUnavailable means no wallet provider is installed.
	ErrWalletUnavailable = errors.New("wallet provider not available")

	// ErrAlreadyConnected means the wallet trigger is disabled for this mount.
	ErrAlreadyConnected = errors.New("wallet already connected")

	// ErrConnectInProgress means a connect attempt is still awaiting the provider.
	ErrConnectInProgress = errors.New("wallet connect in progress")

	// ErrNoAccounts means the provider approved the request but returned no account.
	ErrNoAccounts = errors.New("wallet returned no accounts")
)

// Notifier surfaces a terminal outcome to the user.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Surface is where a flow shows its outcome.
type Surface interface {
	Notifier
	Navigator
}

// Terminator ends the user's session. A nil error means the endpoint
// reported success.
type Terminator interface {
	Terminate(ctx context.Context) error
}

// WalletProvider requests account access from an external wallet. The
// call may block until the user approves or denies it in the wallet.
type WalletProvider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
}

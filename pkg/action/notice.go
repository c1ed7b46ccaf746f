package action

import (
	"context"
	"sync"
)

// Notice messages shown to the user.
const (
	MsgLoggedOut       = "Logged out"
	MsgLogoutFailed    = "Logout failed"
	MsgLogoutError     = "An error occurred during logout"
	MsgWalletMissing   = "MetaMask is not installed!"
	MsgWalletFailed    = "❌ Failed to connect wallet. Please try again."
	msgWalletConnected = "🔗 Connected to wallet: "
)

// ConnectedMessage returns the notice shown after a successful connect.
func ConnectedMessage(address string) string {
	return msgWalletConnected + address
}

// Level is the notice variant.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is one recorded notification.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Recorder is a Surface that keeps notices and the last navigation in
// memory. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	notices  []Notice
	redirect string
}

// Info records an info notice.
func (r *Recorder) Info(msg string) {
	r.add(LevelInfo, msg)
}

// Error records an error notice.
func (r *Recorder) Error(msg string) {
	r.add(LevelError, msg)
}

func (r *Recorder) add(l Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: l, Message: msg})
}

// Navigate records path as the redirect target.
func (r *Recorder) Navigate(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirect = path
	return nil
}

// Notices returns a copy of the recorded notices in order.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Redirect returns the last navigation target, empty if none.
func (r *Recorder) Redirect() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirect
}

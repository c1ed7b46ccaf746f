// Package topbar hosts the navigation bar: each page load creates a
// mount that reads the verification signal once, computes the visible
// navigation and owns its own wallet connection state.
package topbar

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/topbar/pkg/action"
	"github.com/mchmarny/topbar/pkg/nav"
	"github.com/mchmarny/topbar/pkg/session"
)

// Mount is one instance of the bar.
type Mount struct {
	ID      string
	Created time.Time
	Status  session.Status
	Bar     nav.Bar
	Actions *action.Orchestrator

	mu   sync.Mutex
	menu nav.MenuState
}

// NewMount reads the verification signal from src and builds the bar.
func NewMount(ctx context.Context, src session.Source, actions *action.Orchestrator) *Mount {
	st := session.Read(ctx, src)

	return &Mount{
		ID:      uuid.NewString(),
		Created: time.Now(),
		Status:  st,
		Bar:     nav.Build(st.Verified),
		Actions: actions,
	}
}

// ToggleMenu flips the compact-layout menu.
func (m *Mount) ToggleMenu() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.menu.Toggle()
}

// MenuOpen reports whether the compact-layout menu is expanded.
func (m *Mount) MenuOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.menu.Open()
}

// WalletView is the wallet part of a mount's JSON representation.
type WalletView struct {
	Address    string `json:"address,omitempty"`
	State      string `json:"state"`
	CanConnect bool   `json:"can_connect"`
}

// View is the JSON representation of a mount.
type View struct {
	Mount    string      `json:"mount"`
	Verified bool        `json:"verified"`
	Entries  []nav.Entry `json:"entries"`
	Badge    nav.Badge   `json:"badge"`
	Wallet   WalletView  `json:"wallet"`
	MenuOpen bool        `json:"menu_open"`
}

// View returns the current representation of m.
func (m *Mount) View() View {
	addr, _ := m.Actions.WalletAddress()

	return View{
		Mount:    m.ID,
		Verified: m.Status.Verified,
		Entries:  m.Bar.Entries,
		Badge:    m.Bar.Badge,
		Wallet: WalletView{
			Address:    addr,
			State:      m.Actions.State().String(),
			CanConnect: m.Actions.CanConnect(),
		},
		MenuOpen: m.MenuOpen(),
	}
}

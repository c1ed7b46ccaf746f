package topbar

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/mchmarny/topbar/pkg/action"
	"github.com/mchmarny/topbar/pkg/client"
	"github.com/mchmarny/topbar/pkg/metric"
	"github.com/mchmarny/topbar/pkg/session"
)

// Topbar serves the navigation bar and its actions over HTTP.
type Topbar struct {
	// Title is shown in the rendered page.
	Title string

	// Version of the server.
	Version string

	store   *Store
	logout  *client.LogoutClient
	wallet  action.WalletProvider
	metrics *metric.Set
}

// New returns a Topbar whose mounts end sessions through logout and
// connect wallets through wallet. A nil wallet means no provider is
// installed.
func New(title, version string, store *Store, logout *client.LogoutClient, wallet action.WalletProvider, metrics *metric.Set) *Topbar {
	return &Topbar{
		Title:   title,
		Version: version,
		store:   store,
		logout:  logout,
		wallet:  wallet,
		metrics: metrics,
	}
}

// Mount creates and stores a mount for the page load r.
func (t *Topbar) Mount(r *http.Request) *Mount {
	opts := []action.Option{}
	if t.metrics != nil {
		opts = append(opts, action.WithCounters(t.metrics.Logout, t.metrics.Connect))
	}

	var term action.Terminator
	if t.logout != nil {
		term = t.logout.ForRequest(r)
	}

	m := NewMount(r.Context(), session.CookieSource(r), action.New(term, t.wallet, opts...))
	t.store.Put(m)

	if t.metrics != nil {
		t.metrics.Mounts.Increment(strconv.FormatBool(m.Status.Verified))
	}

	slog.Info("mounted", "mount", m.ID, "verified", m.Status.Verified)

	return m
}

// RegisterHandlers registers the bar routes.
func (t *Topbar) RegisterHandlers(register func(pattern string, handler http.Handler)) {
	register("GET /bar", http.HandlerFunc(t.handleMount))
	register("GET /bar.html", http.HandlerFunc(t.handleRender))
	register("GET /bar/{mount}", t.withMount(t.handleView))
	register("POST /bar/{mount}/logout", t.withMount(t.handleLogout))
	register("POST /bar/{mount}/wallet", t.withMount(t.handleWallet))
	register("POST /bar/{mount}/menu", t.withMount(t.handleMenu))
}

func (t *Topbar) withMount(h func(http.ResponseWriter, *http.Request, *Mount)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("mount")
		m, ok := t.store.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown mount")
			return
		}
		h(w, r, m)
	})
}

func (t *Topbar) handleMount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, t.Mount(r).View())
}

func (t *Topbar) handleRender(w http.ResponseWriter, r *http.Request) {
	templ.Handler(Page(t.Title, t.Mount(r).View())).ServeHTTP(w, r)
}

func (t *Topbar) handleView(w http.ResponseWriter, _ *http.Request, m *Mount) {
	writeJSON(w, http.StatusOK, m.View())
}

type logoutResponse struct {
	OK       bool            `json:"ok"`
	Notices  []action.Notice `json:"notices"`
	Redirect string          `json:"redirect,omitempty"`
}

func (t *Topbar) handleLogout(w http.ResponseWriter, r *http.Request, m *Mount) {
	rec := &action.Recorder{}

	// a started flow runs to completion even if the caller goes away
	err := m.Actions.Logout(context.WithoutCancel(r.Context()), rec)

	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}

	writeJSON(w, status, logoutResponse{
		OK:       err == nil,
		Notices:  rec.Notices(),
		Redirect: rec.Redirect(),
	})
}

type walletResponse struct {
	OK      bool            `json:"ok"`
	Notices []action.Notice `json:"notices"`
	Wallet  WalletView      `json:"wallet"`
}

func (t *Topbar) handleWallet(w http.ResponseWriter, r *http.Request, m *Mount) {
	rec := &action.Recorder{}
	_, err := m.Actions.ConnectWallet(context.WithoutCancel(r.Context()), rec)

	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, action.ErrAlreadyConnected), errors.Is(err, action.ErrConnectInProgress):
		status = http.StatusConflict
	case errors.Is(err, action.ErrWalletUnavailable):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, walletResponse{
		OK:      err == nil,
		Notices: rec.Notices(),
		Wallet:  m.View().Wallet,
	})
}

func (t *Topbar) handleMenu(w http.ResponseWriter, _ *http.Request, m *Mount) {
	writeJSON(w, http.StatusOK, map[string]bool{"menu_open": m.ToggleMenu()})
}

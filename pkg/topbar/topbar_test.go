package topbar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/mchmarny/topbar/pkg/action"
	"github.com/mchmarny/topbar/pkg/client"
	"github.com/mchmarny/topbar/pkg/config"
	"github.com/mchmarny/topbar/pkg/metric"
	"github.com/mchmarny/topbar/pkg/nav"
	"github.com/mchmarny/topbar/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type walletFunc func(ctx context.Context) ([]string, error)

func (f walletFunc) RequestAccounts(ctx context.Context) ([]string, error) { return f(ctx) }

func newMux(t *testing.T, logoutStatus int, wallet action.WalletProvider) (*http.ServeMux, *Store) {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, nav.LogoutEndpoint, r.URL.Path)
		w.WriteHeader(logoutStatus)
	}))
	t.Cleanup(upstream.Close)

	store := NewStore(8)
	tb := New("test", "v0", store, client.NewLogoutClient(upstream.URL, upstream.Client()), wallet, metric.NewSet(prometheus.NewRegistry()))

	mux := http.NewServeMux()
	tb.RegisterHandlers(func(pattern string, h http.Handler) { mux.Handle(pattern, h) })

	return mux, store
}

func do(t *testing.T, mux http.Handler, method, path string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var body map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}

	return rec, body
}

func mount(t *testing.T, mux http.Handler, verified bool) map[string]interface{} {
	t.Helper()

	var cookies []*http.Cookie
	if verified {
		cookies = append(cookies, &http.Cookie{Name: session.CookieName, Value: "12"})
	}

	rec, body := do(t, mux, http.MethodGet, "/bar", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	return body
}

func TestMountUnverified(t *testing.T) {
	mux, store := newMux(t, http.StatusOK, nil)

	body := mount(t, mux, false)
	assert.Equal(t, false, body["verified"])
	assert.Len(t, body["entries"], 2)
	badge := body["badge"].(map[string]interface{})
	assert.Equal(t, nav.Verification, badge["target"])
	assert.Equal(t, 1, store.Len())
}

func TestMountVerified(t *testing.T) {
	mux, _ := newMux(t, http.StatusOK, nil)

	body := mount(t, mux, true)
	assert.Equal(t, true, body["verified"])
	assert.Len(t, body["entries"], 4)
	badge := body["badge"].(map[string]interface{})
	assert.Equal(t, true, badge["verified"])
	assert.Nil(t, badge["target"])
}

func TestLogoutSuccessRedirects(t *testing.T) {
	mux, _ := newMux(t, http.StatusOK, nil)
	id := mount(t, mux, true)["mount"].(string)

	rec, body := do(t, mux, http.MethodPost, "/bar/"+id+"/logout")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, nav.Login, body["redirect"])

	notices := body["notices"].([]interface{})
	require.Len(t, notices, 1)
	assert.Equal(t, action.MsgLoggedOut, notices[0].(map[string]interface{})["message"])
}

func TestLogoutFailureDoesNotRedirect(t *testing.T) {
	mux, _ := newMux(t, http.StatusInternalServerError, nil)
	id := mount(t, mux, false)["mount"].(string)

	rec, body := do(t, mux, http.MethodPost, "/bar/"+id+"/logout")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Nil(t, body["redirect"])

	notice := body["notices"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, string(action.LevelError), notice["level"])
	assert.Equal(t, action.MsgLogoutFailed, notice["message"])
}

func TestLogoutDoubleClickRedirectsBoth(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	tb := New("test", "v0", NewStore(8), client.NewLogoutClient(upstream.URL, upstream.Client()), nil, nil)
	mux := http.NewServeMux()
	tb.RegisterHandlers(func(pattern string, h http.Handler) { mux.Handle(pattern, h) })
	id := mount(t, mux, true)["mount"].(string)

	bodies := make(chan map[string]interface{}, 2)
	click := func() {
		rec, body := do(t, mux, http.MethodPost, "/bar/"+id+"/logout")
		assert.Equal(t, http.StatusOK, rec.Code)
		bodies <- body
	}

	go click()
	<-started
	go click()

	time.Sleep(50 * time.Millisecond)
	close(release)

	for range 2 {
		body := <-bodies
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, nav.Login, body["redirect"])
		notices := body["notices"].([]interface{})
		require.Len(t, notices, 1)
		assert.Equal(t, action.MsgLoggedOut, notices[0].(map[string]interface{})["message"])
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestWalletUnavailable(t *testing.T) {
	mux, _ := newMux(t, http.StatusOK, nil)
	id := mount(t, mux, false)["mount"].(string)

	rec, body := do(t, mux, http.MethodPost, "/bar/"+id+"/wallet")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	notice := body["notices"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, action.MsgWalletMissing, notice["message"])
	wallet := body["wallet"].(map[string]interface{})
	assert.Nil(t, wallet["address"])
	assert.Equal(t, true, wallet["can_connect"])
}

func TestWalletConnectOnce(t *testing.T) {
	calls := 0
	mux, _ := newMux(t, http.StatusOK, walletFunc(func(context.Context) ([]string, error) {
		calls++
		return []string{"0xABC"}, nil
	}))
	id := mount(t, mux, true)["mount"].(string)

	rec, body := do(t, mux, http.MethodPost, "/bar/"+id+"/wallet")
	require.Equal(t, http.StatusOK, rec.Code)
	wallet := body["wallet"].(map[string]interface{})
	assert.Equal(t, "0xABC", wallet["address"])
	assert.Equal(t, false, wallet["can_connect"])
	assert.Contains(t, body["notices"].([]interface{})[0].(map[string]interface{})["message"], "0xABC")

	rec, body = do(t, mux, http.MethodPost, "/bar/"+id+"/wallet")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, []interface{}{}, body["notices"])
	assert.Equal(t, "0xABC", body["wallet"].(map[string]interface{})["address"])
	assert.Equal(t, 1, calls)

	// a new page load is a new mount with its own wallet state
	other := mount(t, mux, true)
	assert.Equal(t, true, other["wallet"].(map[string]interface{})["can_connect"])
}

func TestUnknownMount(t *testing.T) {
	mux, _ := newMux(t, http.StatusOK, nil)

	rec, body := do(t, mux, http.MethodPost, "/bar/nope/logout")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown mount", body["error"])
}

func TestMenuToggle(t *testing.T) {
	mux, _ := newMux(t, http.StatusOK, nil)
	id := mount(t, mux, false)["mount"].(string)

	_, body := do(t, mux, http.MethodPost, "/bar/"+id+"/menu")
	assert.Equal(t, true, body["menu_open"])

	_, body = do(t, mux, http.MethodGet, "/bar/"+id)
	assert.Equal(t, true, body["menu_open"])

	_, body = do(t, mux, http.MethodPost, "/bar/"+id+"/menu")
	assert.Equal(t, false, body["menu_open"])
}

func TestRenderHTML(t *testing.T) {
	mux, _ := newMux(t, http.StatusOK, nil)

	rec, _ := do(t, mux, http.MethodGet, "/bar.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	got := rec.Body.String()
	assert.Contains(t, got, `href="/job-listing"`)
	assert.Contains(t, got, `href="/verification"`)
	assert.NotContains(t, got, `href="/post-job"`)
	assert.NotContains(t, got, "topbar-verified")

	rec, _ = do(t, mux, http.MethodGet, "/bar.html", &http.Cookie{Name: session.CookieName, Value: "5"})
	got = rec.Body.String()
	assert.Contains(t, got, `href="/post-job"`)
	assert.Contains(t, got, `href="/work-management"`)
	assert.Contains(t, got, "topbar-verified")
	assert.NotContains(t, got, `href="/verification"`)
}

func TestBarRenderDisablesConnectedWallet(t *testing.T) {
	var b strings.Builder
	v := View{Mount: "m1", Entries: nav.Build(false).Entries, Badge: nav.Build(false).Badge, Wallet: WalletView{CanConnect: false}, MenuOpen: true}

	require.NoError(t, Bar(v).Render(context.Background(), &b))
	assert.Contains(t, b.String(), `action="/bar/m1/wallet"`)
	assert.Contains(t, b.String(), `<button class="topbar-wallet" type="submit" disabled>`)
	assert.Contains(t, b.String(), `topbar-compact`)
}

func TestPageEscapesTitleAndEnablesWallet(t *testing.T) {
	var b strings.Builder
	bar := nav.Build(true)
	v := View{Mount: "m2", Entries: bar.Entries, Badge: bar.Badge, Wallet: WalletView{CanConnect: true}}

	require.NoError(t, Page("<b>bar</b>", v).Render(context.Background(), &b))
	got := b.String()
	assert.Contains(t, got, "<title>&lt;b&gt;bar&lt;/b&gt;</title>")
	assert.Contains(t, got, `<button class="topbar-wallet" type="submit">`)
	assert.Contains(t, got, `<span class="topbar-verified">`)
	assert.NotContains(t, got, "topbar-compact")
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s := NewStore(2)
	ms := []*Mount{
		NewMount(context.Background(), nil, action.New(nil, nil)),
		NewMount(context.Background(), nil, action.New(nil, nil)),
		NewMount(context.Background(), nil, action.New(nil, nil)),
	}

	s.Put(ms[0])
	s.Put(ms[1])
	// touching the first mount keeps it alive over the second
	_, ok := s.Get(ms[0].ID)
	require.True(t, ok)
	s.Put(ms[2])

	assert.Equal(t, 2, s.Len())
	_, ok = s.Get(ms[1].ID)
	assert.False(t, ok)
	_, ok = s.Get(ms[0].ID)
	assert.True(t, ok)
	_, ok = s.Get(ms[2].ID)
	assert.True(t, ok)
}

func TestNewStoreClampsCapacity(t *testing.T) {
	s := NewStore(0)
	s.Put(NewMount(context.Background(), nil, action.New(nil, nil)))
	s.Put(NewMount(context.Background(), nil, action.New(nil, nil)))
	assert.Equal(t, 1, s.Len())
}

func TestFromConfigWithoutWallet(t *testing.T) {
	tb := FromConfig(&config.Config{Port: 1, LogoutURL: "http://localhost", MaxMounts: 4}, prometheus.NewRegistry())
	assert.Nil(t, tb.wallet)

	tb = FromConfig(&config.Config{Port: 1, LogoutURL: "http://localhost", WalletRPCURL: "http://localhost:8545", MaxMounts: 4}, prometheus.NewRegistry())
	assert.NotNil(t, tb.wallet)
}

// Package client implements the external collaborators of the top bar:
// the session-termination endpoint and a JSON-RPC wallet provider.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mchmarny/topbar/pkg/action"
	"github.com/mchmarny/topbar/pkg/nav"
)

// LogoutClient ends sessions by posting to the logout endpoint.
type LogoutClient struct {
	baseURL string
	client  *http.Client
	cookies []*http.Cookie
}

// NewLogoutClient returns a client for the endpoint under baseURL.
// A nil httpClient uses a client without timeout.
func NewLogoutClient(baseURL string, httpClient *http.Client) *LogoutClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &LogoutClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// ForRequest returns a copy of c that forwards the cookies of r, so the
// endpoint can identify the session being ended.
func (c *LogoutClient) ForRequest(r *http.Request) *LogoutClient {
	cp := *c
	if r != nil {
		cp.cookies = r.Cookies()
	}
	return &cp
}

// Terminate posts to the logout endpoint. Non-2xx answers wrap
// action.ErrSessionRejected.
func (c *LogoutClient) Terminate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+nav.LogoutEndpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}

	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post logout: %w", err)
	}
	defer resp.Body.Close()

	// body is not consumed beyond draining it for connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("logout status %d: %w", resp.StatusCode, action.ErrSessionRejected)
	}

	return nil
}

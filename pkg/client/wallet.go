package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	json "github.com/json-iterator/go"
)

// MethodRequestAccounts is the EIP-1193 account access method.
const MethodRequestAccounts = "eth_requestAccounts"

// CodeUserRejected is the EIP-1193 code for a request the user denied.
const CodeUserRejected = 4001

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is an error object returned by the wallet.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet rpc error %d: %s", e.Code, e.Message)
}

// UserRejected reports whether the user denied the request.
func (e *RPCError) UserRejected() bool {
	return e.Code == CodeUserRejected
}

// RPCWallet is a wallet provider reached over JSON-RPC 2.0 on HTTP.
type RPCWallet struct {
	url    string
	client *http.Client
	nextID atomic.Uint64
}

// NewRPCWallet returns a provider for the wallet endpoint at url.
// A nil httpClient uses a client without timeout, since the call waits
// for the user's approval.
func NewRPCWallet(url string, httpClient *http.Client) *RPCWallet {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &RPCWallet{url: url, client: httpClient}
}

// RequestAccounts asks the wallet for account access and returns the
// accounts in the wallet's order.
func (w *RPCWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := w.call(ctx, MethodRequestAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (w *RPCWallet) call(ctx context.Context, method string, out interface{}) error {
	id := w.nextID.Add(1)

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  []interface{}{},
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var res rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	if res.Error != nil {
		return res.Error
	}

	if res.ID != id {
		return fmt.Errorf("%s: response id %d does not match request id %d", method, res.ID, id)
	}

	if err := json.Unmarshal(res.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}

	return nil
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPTransport talks to arbitrary endpoint URLs. It is safe for concurrent use.
//
// When origin is set every read carries an Origin header and a response that does not
// grant that origin through Access-Control-Allow-Origin fails with ClassCORS, which is
// what a browser on that origin would observe.
type HTTPTransport struct {
	httpClient *http.Client
	origin     string
}

// NewHTTPTransport creates a transport. Deadlines come from the caller's context.
func NewHTTPTransport(origin string) *HTTPTransport {
	return &HTTPTransport{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}
				return nil
			},
		},
		origin: origin,
	}
}

// Call makes a single JSON-RPC 2.0 call and returns the raw result.
func (t *HTTPTransport) Call(ctx context.Context, url, method string, params []any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := t.read(ctx, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{StatusCode: status}
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// Get performs a GET and returns the status code. The body is drained and discarded.
func (t *HTTPTransport) Get(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	_, status, err := t.read(ctx, req)
	return status, err
}

// Reach sends a HEAD without Origin or credentials and succeeds as soon as any
// response arrives. The status code is deliberately not inspected.
func (t *HTTPTransport) Reach(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return classify(ctx, "reach", url, err)
	}
	resp.Body.Close()
	return nil
}

// Close releases idle connections.
func (t *HTTPTransport) Close() error {
	t.httpClient.CloseIdleConnections()
	return nil
}

func (t *HTTPTransport) read(ctx context.Context, req *http.Request) ([]byte, int, error) {
	url := req.URL.String()
	op := strings.ToLower(req.Method)

	if t.origin != "" {
		req.Header.Set("Origin", t.origin)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, 0, classify(ctx, op, url, err)
	}
	defer resp.Body.Close()

	if t.origin != "" && !allowsOrigin(resp.Header, t.origin) {
		return nil, resp.StatusCode, &TransportError{Class: ClassCORS, Op: op, URL: url, Err: errOriginRejected}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, classify(ctx, op, url, fmt.Errorf("read response: %w", err))
	}

	return body, resp.StatusCode, nil
}

func allowsOrigin(h http.Header, origin string) bool {
	allowed := strings.TrimSpace(h.Get("Access-Control-Allow-Origin"))
	return allowed == "*" || strings.EqualFold(allowed, origin)
}

// Package apiclient talks to the marketplace REST backend. Response bodies
// are either a raw JSON value or an envelope {success, message, data}.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jainjy/servo-sub017/internal/domain"
)

const maxBody = 4 << 20

type Client struct {
	baseURL     string
	profilePath string
	catalogPath string
	httpClient  *http.Client
}

type Options struct {
	BaseURL     string
	ProfilePath string
	CatalogPath string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		profilePath: opts.ProfilePath,
		catalogPath: opts.CatalogPath,
		httpClient:  hc,
	}
}

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// FetchProfile reads the authenticated user's profile.
func (c *Client) FetchProfile(ctx context.Context, token string) (domain.StoredIdentity, error) {
	var p remoteProfile
	data, err := c.do(ctx, http.MethodGet, c.profilePath, token, nil)
	if err != nil {
		return domain.StoredIdentity{}, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.StoredIdentity{}, &TransportError{Op: "decode profile", Err: err}
	}
	return p.identity(), nil
}

// Submit posts a form payload and returns the response data, if any.
func (c *Client) Submit(ctx context.Context, path, token string, payload map[string]any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, token, payload)
}

// ListCatalog fetches the items of a collection in server order.
func (c *Client) ListCatalog(ctx context.Context, collection string) ([]domain.CatalogItem, error) {
	data, err := c.do(ctx, http.MethodGet, c.catalogPath+"/"+collection, "", nil)
	if err != nil {
		return nil, err
	}
	var raw []remoteItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &TransportError{Op: "decode catalog", Err: err}
	}
	out := make([]domain.CatalogItem, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.item(collection))
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &TransportError{Op: "read " + path, Err: err}
	}
	return decode(resp.StatusCode, raw)
}

// decode classifies a response into data or a RejectedError. An object
// carrying a "success" key is an envelope and succeeds only when that key is
// literally true.
func decode(status int, raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	var keys map[string]json.RawMessage
	isObject := len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &keys) == nil
	var env envelope
	if isObject {
		env.Message = stringField(keys["message"])
		env.Error = stringField(keys["error"])
		env.Data = keys["data"]
	}

	if status < 200 || status >= 300 {
		return nil, &RejectedError{Status: status, Message: firstNonEmpty(env.Message, env.Error)}
	}
	if !isObject {
		return json.RawMessage(trimmed), nil
	}
	success, hasSuccess := keys["success"]
	if !hasSuccess {
		if len(env.Data) > 0 {
			return env.Data, nil
		}
		return json.RawMessage(trimmed), nil
	}
	if string(bytes.TrimSpace(success)) != "true" {
		return nil, &RejectedError{Status: status, Message: firstNonEmpty(env.Message, env.Error)}
	}
	return env.Data, nil
}

// stringField reads a JSON string, ignoring values of any other type.
func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

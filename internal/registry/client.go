package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"seahorse/internal/domain"
)

// DefaultTimeout bounds each registry call when the caller sets none.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries a per-call correlation id to the server.
const RequestIDHeader = "X-Request-Id"

// HTTPClient is a Registry backed by a registry service.
type HTTPClient struct {
	Base    string
	HTTP    *http.Client
	Timeout time.Duration
}

// NewHTTPClient returns a client for the service at base. A zero timeout
// uses DefaultTimeout.
func NewHTTPClient(base string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		Base:    strings.TrimRight(base, "/"),
		HTTP:    http.DefaultClient,
		Timeout: timeout,
	}
}

// errNotFound marks a 404. Only the lookups turn it into found == false.
var errNotFound = errors.New("not found")

// slotBody is the wire form of an encrypted data slot.
type slotBody struct {
	Data string `json:"data"`
}

// errorBody is the wire form of a failed call.
type errorBody struct {
	Error string `json:"error"`
}

func requestPath(id domain.RequestID) string {
	return "/v1/requests/" + url.PathEscape(id.String())
}

func slotPath(account domain.AccountID) string {
	return "/v1/slots/" + url.PathEscape(account.String())
}

func accountPath(account domain.AccountID) string {
	return "/v1/accounts/" + url.PathEscape(account.String())
}

func (c *HTTPClient) PutFriendRequest(ctx context.Context, id domain.RequestID, r domain.FriendRequest) error {
	return c.do(ctx, http.MethodPut, requestPath(id), r, nil)
}

func (c *HTTPClient) GetFriendRequest(ctx context.Context, id domain.RequestID) (domain.FriendRequest, bool, error) {
	var out domain.FriendRequest
	switch err := c.do(ctx, http.MethodGet, requestPath(id), nil, &out); {
	case errors.Is(err, errNotFound):
		return domain.FriendRequest{}, false, nil
	case err != nil:
		return domain.FriendRequest{}, false, err
	}
	return out, true, nil
}

func (c *HTTPClient) ListFriendRequests(ctx context.Context, f domain.RequestFilter) ([]domain.FriendRequest, error) {
	q := url.Values{}
	if f.From != "" {
		q.Set("from", f.From.String())
	}
	if f.To != "" {
		q.Set("to", f.To.String())
	}
	if f.Involving != "" {
		q.Set("involving", f.Involving.String())
	}
	if f.Status != 0 {
		q.Set("status", f.Status.String())
	}
	path := "/v1/requests"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []domain.FriendRequest
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteFriendRequest(ctx context.Context, id domain.RequestID) error {
	return c.do(ctx, http.MethodDelete, requestPath(id), nil, nil)
}

func (c *HTTPClient) PutEncryptedSlot(ctx context.Context, account domain.AccountID, ciphertext string) error {
	return c.do(ctx, http.MethodPut, slotPath(account), slotBody{Data: ciphertext}, nil)
}

func (c *HTTPClient) GetEncryptedSlot(ctx context.Context, account domain.AccountID) (string, bool, error) {
	var out slotBody
	switch err := c.do(ctx, http.MethodGet, slotPath(account), nil, &out); {
	case errors.Is(err, errNotFound):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return out.Data, true, nil
}

func (c *HTTPClient) DeleteEncryptedSlot(ctx context.Context, account domain.AccountID) error {
	return c.do(ctx, http.MethodDelete, slotPath(account), nil, nil)
}

// ClearAccount asks the service to drop everything touching account at once.
func (c *HTTPClient) ClearAccount(ctx context.Context, account domain.AccountID) error {
	return c.do(ctx, http.MethodDelete, accountPath(account), nil, nil)
}

// do performs one call. Any non-2xx status is an error; a 404 wraps
// errNotFound.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("registry %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&eb)
		msg := resp.Status
		if eb.Error != "" {
			msg += ": " + eb.Error
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("registry %s %s: %s: %w", method, path, msg, errNotFound)
		}
		return fmt.Errorf("registry %s %s: %s", method, path, msg)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("registry %s %s: decode: %w", method, path, err)
		}
	}
	return nil
}

var (
	_ domain.Registry       = (*HTTPClient)(nil)
	_ domain.AccountClearer = (*HTTPClient)(nil)
)

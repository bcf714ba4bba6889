package lockclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/SystemBuilders/StripeKey/internal/config"
	"github.com/SystemBuilders/StripeKey/internal/routing"
	"github.com/SystemBuilders/StripeKey/internal/session"
)

var _ Client = (*SimpleClient)(nil)

// SimpleClient implements Client over the daemon's HTTP API.
type SimpleClient struct {
	base    *url.URL
	http    *http.Client
	session session.Session
}

// BaseURL returns the URL of the daemon described by cfg.
func BaseURL(cfg config.Config) string {
	return "http://" + cfg.IP() + ":" + cfg.Port()
}

// NewSimpleClient returns a client of the daemon at baseURL. A nil
// httpClient uses http.DefaultClient.
func NewSimpleClient(baseURL string, httpClient *http.Client) (*SimpleClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("bad daemon url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SimpleClient{
		base:    base,
		http:    httpClient,
		session: session.NewSession(),
	}, nil
}

// Remove makes a HTTP call to the daemon and force-removes the object.
func (sc *SimpleClient) Remove(ctx context.Context, pool, oid string) error {
	_, err := sc.do(ctx, http.MethodDelete, "objects", pool, oid, nil)
	return err
}

// WriteNew makes a HTTP call to the daemon and writes the object.
func (sc *SimpleClient) WriteNew(ctx context.Context, pool, oid string, data []byte) error {
	_, err := sc.do(ctx, http.MethodPut, "objects", pool, oid, data)
	return err
}

// Stat makes a HTTP call to the daemon and stats the object.
func (sc *SimpleClient) Stat(ctx context.Context, pool, oid string) (*routing.Response, error) {
	return sc.do(ctx, http.MethodGet, "stat", pool, oid, nil)
}

// Lockers makes a HTTP call to the daemon and lists the striper lock holders.
func (sc *SimpleClient) Lockers(ctx context.Context, pool, oid string) (*routing.LockInfo, error) {
	resp, err := sc.do(ctx, http.MethodGet, "locks", pool, oid, nil)
	if err != nil {
		return nil, err
	}
	if resp.Lock == nil {
		return nil, ErrBadResponse
	}
	return resp.Lock, nil
}

// BreakLock makes a HTTP call to the daemon and breaks the striper lock.
func (sc *SimpleClient) BreakLock(ctx context.Context, pool, oid string) error {
	_, err := sc.do(ctx, http.MethodDelete, "locks", pool, oid, nil)
	return err
}

func (sc *SimpleClient) do(ctx context.Context, method, resource, pool, oid string, body []byte) (*routing.Response, error) {
	u := *sc.base
	prefix := strings.TrimSuffix(u.EscapedPath(), "/") + "/" + resource + "/"
	u.RawPath = prefix + url.PathEscape(pool) + "/" + url.PathEscape(oid)
	u.Path = strings.TrimSuffix(sc.base.Path, "/") + "/" + resource + "/" + pool + "/" + oid

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, err
	}
	reqID := sc.session.NewRequestID().String()
	req.Header.Set(routing.RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	res, err := sc.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var resp routing.Response
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrBadResponse, method, u.Path, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, &RemoteError{
			HTTPStatus: res.StatusCode,
			Kind:       resp.Kind,
			Status:     resp.Status,
			Message:    resp.Error,
			RequestID:  reqID,
		}
	}
	return &resp, nil
}

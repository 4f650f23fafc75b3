// Package client talks to the saga host's HTTP surface: the one-time state
// snapshot, the server-sent-event stream, and the command publish endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"sagaview/internal/saga"
)

// DefaultTimeout bounds the snapshot and publish requests. The stream
// request is not subject to it; it lives until the context is canceled or
// the server closes.
const DefaultTimeout = 15 * time.Second

// Client is an HTTP client for one saga instance. The company id is the
// final path segment of the saga URL and is attached to every published
// command.
type Client struct {
	base      string
	companyID string
	http      *http.Client
	stream    *http.Client
	logger    *slog.Logger
}

// New builds a client for the saga at baseURL, e.g.
// "http://host:8080/saga/acme-42".
func New(baseURL string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse saga url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse saga url: %q is not absolute", baseURL)
	}

	companyID := path.Base(strings.TrimSuffix(u.Path, "/"))
	if companyID == "." || companyID == "/" {
		companyID = ""
	}

	return &Client{
		base:      strings.TrimSuffix(u.String(), "/"),
		companyID: companyID,
		http:      &http.Client{Timeout: DefaultTimeout},
		stream:    &http.Client{},
		logger:    logger,
	}, nil
}

// CompanyID returns the saga instance id derived from the saga URL.
func (c *Client) CompanyID() string {
	return c.companyID
}

// Close releases idle connections. In-flight requests are unaffected.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
	c.stream.CloseIdleConnections()
}

// FetchState retrieves the authoritative snapshot. A non-2xx response or a
// transport failure yields an error; the caller treats either as "no
// initial state".
func (c *Client) FetchState(ctx context.Context) (*saga.StateRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/state", nil)
	if err != nil {
		return nil, fmt.Errorf("build state request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch state: unexpected status %s", resp.Status)
	}

	var rec saga.StateRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &rec, nil
}

// Publish sends cmd to the host, merging CompanyId into the body. It is
// fire-and-forget: an error only means the host did not acknowledge, local
// state is never touched.
func (c *Client) Publish(ctx context.Context, cmd saga.Command) error {
	body := make(map[string]any, len(cmd.Body)+1)
	for k, v := range cmd.Body {
		body[k] = v
	}
	body["CompanyId"] = c.companyID

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", cmd.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/publish/"+cmd.Name, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", cmd.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("publish %s: %w", cmd.Name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("publish %s: unexpected status %s", cmd.Name, resp.Status)
	}
	return nil
}

// Stream subscribes to the host's event stream and invokes handler with
// each decoded state record, strictly in arrival order. Payloads that fail
// to decode are logged and skipped. Stream returns when the context is
// done or the server closes the connection.
func (c *Client) Stream(ctx context.Context, handler func(*saga.StateRecord)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/sse", nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("open stream: unexpected status %s", resp.Status)
	}

	err = readEvents(resp.Body, func(event, data string) {
		if event != "message" {
			return
		}
		var rec saga.StateRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			c.logger.Warn("skipping malformed stream payload", "error", err)
			return
		}
		handler(&rec)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

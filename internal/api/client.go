// Package api is the HTTP side of the chat client. Every call returns the
// server's envelope payload decoded into a typed struct; the session
// credential is an opaque cookie held in the client's jar.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrServer wraps an application error the server reported through the
// envelope. The message field is surfaced verbatim to the user.
type ErrServer struct {
	Message string
}

func (e *ErrServer) Error() string { return e.Message }

// ErrTransport marks network or decode failures. Callers replace it with a
// generic fallback message; the underlying cause goes to the log only.
var ErrTransport = errors.New("request failed")

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given server base URL (no trailing
// slash). The cookie jar keeps the session credential between calls.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}
}

// HTTPClient exposes the underlying client so the realtime dialer can reuse
// the same cookie jar for the push connection handshake.
func (c *Client) HTTPClient() *http.Client { return c.http }

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// doJSON issues a JSON request and decodes the envelope into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out envelopeCarrier) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out envelopeCarrier) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return c.do(req, out)
}

// do runs the request and decodes the envelope. A non-success status in the
// envelope becomes an *ErrServer regardless of the HTTP status code.
func (c *Client) do(req *http.Request, out envelopeCarrier) error {
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", req.URL.String()).Msg("[api] transport error")
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Debug().Err(err).Str("url", req.URL.String()).Msg("[api] decode error")
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if !out.envelope().Success() {
		return &ErrServer{Message: out.envelope().Message}
	}
	return nil
}

// envelopeCarrier is implemented by every response payload struct.
type envelopeCarrier interface {
	envelope() Envelope
}

func (e Envelope) envelope() Envelope { return e }

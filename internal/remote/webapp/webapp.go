// Package webapp calls a deployed web-app endpoint with the
// {"action": op, ...params} POST body and decodes the envelope it returns.
package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"bookings/internal/remote"
)

// Web apps reject preflighted content types, so the JSON body goes out as
// plain text.
const contentType = "text/plain;charset=utf-8"

const maxResponseBytes = 8 << 20

var _ remote.Caller = (*Caller)(nil)

type Caller struct {
	url  string
	http *http.Client
}

// New returns a Caller posting to url with client. A nil client uses a
// default http.Client, which follows the 302 a web app answers with.
func New(url string, client *http.Client) (*Caller, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("missing web app URL")
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Caller{url: url, http: client}, nil
}

// NewAuthenticated builds a Caller whose requests carry Google credentials.
// Used when the web app is deployed with "only myself" or domain access.
func NewAuthenticated(ctx context.Context, url string, opts ...option.ClientOption) (*Caller, error) {
	client, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google http client: %w", err)
	}
	return New(url, client)
}

func (c *Caller) Call(ctx context.Context, op remote.Operation, params remote.Params) (remote.Envelope, error) {
	body := make(map[string]any, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	body["action"] = string(op)

	payload, err := json.Marshal(body)
	if err != nil {
		return remote.Envelope{}, fmt.Errorf("encode %s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return remote.Envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return remote.Envelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return remote.Envelope{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return remote.Envelope{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env remote.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return remote.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

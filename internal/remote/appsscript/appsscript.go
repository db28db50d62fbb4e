// Package appsscript runs the booking API through the Apps Script
// Execution API: each operation is a script function taking the params
// object and returning the envelope.
package appsscript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	script "google.golang.org/api/script/v1"

	"bookings/internal/remote"
)

// SpreadsheetsScope is what the booking script needs to read and write its
// sheets. scripts.run requires the caller to hold every scope the script uses.
const SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

var _ remote.Caller = (*Caller)(nil)

type Caller struct {
	svc      *script.Service
	scriptID string
	devMode  bool
}

// New creates a Caller for the deployed script. opts carry credentials
// (option.WithCredentialsFile / WithCredentialsJSON) or test endpoints.
func New(ctx context.Context, scriptID string, opts ...option.ClientOption) (*Caller, error) {
	scriptID = strings.TrimSpace(scriptID)
	if scriptID == "" {
		return nil, errors.New("missing script id")
	}
	svc, err := script.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create script service: %w", err)
	}
	return &Caller{svc: svc, scriptID: scriptID}, nil
}

// DevMode makes calls run the most recently saved script version instead of
// the deployed one. Only the script owner may do this.
func (c *Caller) DevMode(on bool) *Caller {
	c.devMode = on
	return c
}

type executionResponse struct {
	Result json.RawMessage `json:"result"`
}

type scriptError struct {
	ErrorMessage string `json:"errorMessage"`
}

func (c *Caller) Call(ctx context.Context, op remote.Operation, params remote.Params) (remote.Envelope, error) {
	if params == nil {
		params = remote.Params{}
	}
	req := &script.ExecutionRequest{
		Function:   string(op),
		Parameters: []interface{}{params},
		DevMode:    c.devMode,
	}
	res, err := c.svc.Scripts.Run(c.scriptID, req).Context(ctx).Do()
	if err != nil {
		return remote.Envelope{}, err
	}
	if res.Error != nil {
		return remote.Envelope{}, fmt.Errorf("script error: %s", statusMessage(res.Error))
	}

	var out executionResponse
	if err := json.Unmarshal(res.Response, &out); err != nil {
		return remote.Envelope{}, fmt.Errorf("decode execution response: %w", err)
	}
	var env remote.Envelope
	if len(out.Result) == 0 || string(out.Result) == "null" {
		return env, errors.New("script returned no result")
	}
	if err := json.Unmarshal(out.Result, &env); err != nil {
		return remote.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// statusMessage prefers the script's own exception text, which the API
// nests in the first detail entry.
func statusMessage(st *script.Status) string {
	for _, d := range st.Details {
		var se scriptError
		if json.Unmarshal(d, &se) == nil && se.ErrorMessage != "" {
			return se.ErrorMessage
		}
	}
	if st.Message != "" {
		return st.Message
	}
	return fmt.Sprintf("code %d", st.Code)
}

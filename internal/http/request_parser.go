// Parsing of form, query and path values for the dashboard handlers.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bookings/internal/core"
)

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// RequestBodyParser reads a form-encoded or JSON body once. Query values are
// consulted when the body lacks a key, since HTMX sends GET values there.
type RequestBodyParser struct {
	body     []byte
	query    url.Values
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{query: r.URL.Query()}
	if r.Body == nil || r.Body == http.NoBody {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
		}
		return p.err
	}
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns the sanitized value of key from the body, then the query.
func (p *RequestBodyParser) Get(key string) string {
	if !p.parsed {
		_ = p.Parse()
	}
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		if _, ok := p.formData[key]; ok {
			return sanitizeInput(p.formData.Get(key))
		}
	}
	return sanitizeInput(p.query.Get(key))
}

// Has reports whether key was sent at all.
func (p *RequestBodyParser) Has(key string) bool {
	if !p.parsed {
		_ = p.Parse()
	}
	if _, ok := p.jsonData[key]; ok {
		return true
	}
	if _, ok := p.formData[key]; ok {
		return true
	}
	_, ok := p.query[key]
	return ok
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// PathID parses the {id} path segment.
func PathID(r *http.Request) (core.ID, error) {
	return core.ParseID(r.PathValue("id"))
}

// QueryDate parses a YYYY-MM-DD query value; missing or malformed values
// give the zero date.
func QueryDate(r *http.Request, key string) core.Date {
	d, _ := core.ParseDate(strings.TrimSpace(r.URL.Query().Get(key)))
	return d
}

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/corgadogabriel/portfolio-api/internal/contact"
)

// Field names accepted by UpdateField, matching the wire payload.
const (
	FieldFirst    = "first"
	FieldLast     = "last"
	FieldEmail    = "email"
	FieldMessage  = "message"
	FieldHoneypot = "honeypot"
)

// FallbackError is surfaced when the server gives no usable error string.
const FallbackError = "Unable to send your message right now. Please try again later."

const defaultResetDelay = 4 * time.Second

// FormData is the current field state, honeypot included.
type FormData struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Honeypot string `json:"honeypot"`
}

// Controller owns the contact form's state and submission lifecycle:
// idle -> submitting -> success (auto-reverting to idle) or error. At most
// one submission is in flight at a time; re-entrant submits are no-ops.
type Controller struct {
	mu         sync.Mutex
	data       FormData
	focused    string
	submitting bool
	success    bool
	errMsg     string
	resetTimer *time.Timer

	endpoint   string
	httpClient *http.Client
	resetDelay time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient overrides the HTTP client used for submissions.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) { c.httpClient = hc }
}

// WithResetDelay overrides how long the success state lasts before the
// controller reverts to idle.
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.resetDelay = d }
}

// New creates a controller posting to endpoint (the full URL of the contact
// route).
func New(endpoint string, opts ...Option) *Controller {
	c := &Controller{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		resetDelay: defaultResetDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpdateField sets one field. No validation happens here; that is deferred
// to submit time and to the server.
func (c *Controller) UpdateField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case FieldFirst:
		c.data.First = value
	case FieldLast:
		c.data.Last = value
	case FieldEmail:
		c.data.Email = value
	case FieldMessage:
		c.data.Message = value
	case FieldHoneypot:
		c.data.Honeypot = value
	}
}

// Focus records which field the UI has focused. Purely presentational state.
func (c *Controller) Focus(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = name
}

// Blur clears the focused-field pointer.
func (c *Controller) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = ""
}

// Data returns a copy of the current field state.
func (c *Controller) Data() FormData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Success reports whether the last submission succeeded and has not yet
// auto-reverted to idle.
func (c *Controller) Success() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.success
}

// Err returns the last submission error message, or "".
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Submit serializes the current field state (honeypot included) and posts
// it. While a submission is in flight further calls return immediately
// without a second request. On success the fields are cleared and the
// success state reverts to idle after the reset delay; on failure the
// fields are preserved so the user can correct and resubmit.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil
	}
	c.submitting = true
	c.success = false
	c.errMsg = ""
	body := c.data
	c.mu.Unlock()

	// Non-authoritative pre-check against the same ruleset the server
	// enforces; saves a round trip for obviously incomplete forms.
	if errs := contact.ValidateRequired(contact.Payload(body)); len(errs) > 0 {
		return c.fail(contact.JoinErrors(errs))
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return c.fail(FallbackError)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return c.fail(FallbackError)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(FallbackError)
	}
	defer resp.Body.Close()

	// The body is parsed defensively: an unparsable response is a generic
	// error, never a crash.
	var parsed struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	parseErr := json.NewDecoder(resp.Body).Decode(&parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || parseErr != nil || !parsed.Success {
		msg := FallbackError
		if parseErr == nil && parsed.Error != "" {
			msg = parsed.Error
		}
		return c.fail(msg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	c.success = true
	c.data = FormData{}

	if c.resetTimer != nil {
		c.resetTimer.Stop()
	}
	c.resetTimer = time.AfterFunc(c.resetDelay, func() {
		c.mu.Lock()
		c.success = false
		c.mu.Unlock()
	})

	return nil
}

func (c *Controller) fail(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	c.errMsg = msg
	return errors.New(msg)
}

// Close cancels any pending auto-reset timer. It does not abort an in-flight
// submission; once sent, a request runs to completion or failure.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	dto "github.com/corgadogabriel/portfolio-api/internal/api/dto/v1/contact"
	"github.com/corgadogabriel/portfolio-api/internal/contact"
	"github.com/corgadogabriel/portfolio-api/internal/logging"

	"github.com/gin-gonic/gin"
)

const (
	rateLimitedMessage   = "Too many requests. Please try again later."
	genericMessage       = "Something went wrong. Please try again later."
	notConfiguredMessage = "Email service is not configured. Please set SMTP_HOST, SMTP_PORT, SMTP_USER, and SMTP_PASS environment variables."
)

// ContactHandler runs the contact intake pipeline: identify, admit,
// validate, dispatch. The ledger and sender are injected so the handler is
// testable and the ledger can be swapped for a shared store.
type ContactHandler struct {
	ledger   contact.Ledger
	sender   contact.Sender
	limits   contact.Limits
	settings contact.SMTPSettings
}

func NewContactHandler(ledger contact.Ledger, sender contact.Sender, limits contact.Limits, settings contact.SMTPSettings) *ContactHandler {
	return &ContactHandler{
		ledger:   ledger,
		sender:   sender,
		limits:   limits,
		settings: settings,
	}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	logger := logging.GetGlobalLogger()

	// Admission runs before body parsing so abusive clients are rejected
	// cheaply.
	identity := contact.Identify(c.Request.Header)
	decision, err := h.ledger.Check(c.Request.Context(), identity)
	if err != nil {
		// A broken ledger store must not take the contact form down;
		// admit and log.
		logger.Error("[contact] rate-limit ledger unavailable: %v", err)
	}
	if decision.Limited {
		c.Header("Retry-After", strconv.Itoa(int(decision.RetryAfter/time.Second)))
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: rateLimitedMessage})
		return
	}

	var payload contact.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Malformed bodies fall into the same generic path as transport
		// failures.
		logger.LogHTTPError(c.Request.Method, c.Request.URL.Path, identity,
			http.StatusInternalServerError, "malformed request body", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: genericMessage})
		return
	}

	if errs := contact.Validate(h.limits, payload); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: contact.JoinErrors(errs)})
		return
	}

	// Fail closed before composing anything; a partial send with guessed
	// settings would drop the message silently.
	if !h.settings.Configured() {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: notConfiguredMessage})
		return
	}

	msg := contact.Compose(h.settings, payload)
	if err := h.sender.Send(c.Request.Context(), msg); err != nil {
		// Transport details stay in the server log.
		logger.LogHTTPError(c.Request.Method, c.Request.URL.Path, identity,
			http.StatusInternalServerError, "failed to send message", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: genericMessage})
		return
	}

	c.JSON(http.StatusOK, dto.SubmitResponse{Success: true})
}

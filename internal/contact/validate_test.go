package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPayload() Payload {
	return Payload{
		First:   "Ada",
		Last:    "Lovelace",
		Email:   "ada@example.com",
		Message: "I would like to talk about a contract engagement.",
	}
}

func TestValidateAcceptsCleanPayload(t *testing.T) {
	errs := Validate(DefaultLimits(), validPayload())
	assert.Empty(t, errs)
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Payload)
		want   string
	}{
		{"missing first", func(p *Payload) { p.First = "" }, "First name is required."},
		{"whitespace first", func(p *Payload) { p.First = "   " }, "First name is required."},
		{"missing last", func(p *Payload) { p.Last = "" }, "Last name is required."},
		{"missing email", func(p *Payload) { p.Email = "" }, "Email is required."},
		{"missing message", func(p *Payload) { p.Message = "" }, "Message is required."},
		{"whitespace message", func(p *Payload) { p.Message = " \n\t " }, "Message is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			errs := Validate(DefaultLimits(), p)
			assert.Contains(t, errs, tt.want)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	errs := Validate(DefaultLimits(), Payload{})

	assert.Equal(t, []string{
		"First name is required.",
		"Last name is required.",
		"Email is required.",
		"Message is required.",
	}, errs)
	assert.Equal(t,
		"First name is required. Last name is required. Email is required. Message is required.",
		JoinErrors(errs))
}

func TestValidateHoneypot(t *testing.T) {
	p := validPayload()
	p.Honeypot = "http://spam.example"

	errs := Validate(DefaultLimits(), p)

	// The rejection reason must not read differently from any other
	// validation failure.
	assert.Equal(t, []string{"Submission rejected."}, errs)
}

func TestValidateMessageLength(t *testing.T) {
	limits := DefaultLimits()

	t.Run("over max", func(t *testing.T) {
		p := validPayload()
		p.Message = strings.Repeat("a", 501)
		assert.Contains(t, Validate(limits, p), "Message must be 500 characters or fewer.")
	})

	t.Run("at max", func(t *testing.T) {
		p := validPayload()
		p.Message = strings.Repeat("a", 500)
		assert.Empty(t, Validate(limits, p))
	})

	t.Run("multibyte runes count as characters", func(t *testing.T) {
		p := validPayload()
		p.Message = strings.Repeat("é", 500)
		assert.Empty(t, Validate(limits, p))
	})

	t.Run("under min after trim", func(t *testing.T) {
		p := validPayload()
		p.Message = "  hi there  "
		assert.Contains(t, Validate(limits, p), "Message must be at least 10 characters long.")
	})

	t.Run("at min", func(t *testing.T) {
		p := validPayload()
		p.Message = "hello you!"
		assert.Empty(t, Validate(limits, p))
	})
}

func TestValidateLinkDensity(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name    string
		message string
		flagged bool
	}{
		{"no links", "Please reach out about the project timeline.", false},
		{"two links ok", "See https://a.example and http://b.example for context.", false},
		{"three links flagged", "https://a.example http://b.example www.c.example", true},
		{"case insensitive", "HTTPS://a.example WWW.b.example Www.c.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			p.Message = tt.message
			errs := Validate(limits, p)
			if tt.flagged {
				assert.Contains(t, errs, "Please provide fewer links in your message.")
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidateSpamSignals(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name    string
		message string
		flagged bool
	}{
		{"banned phrase", "Cheap viagra available right now", true},
		{"banned phrase mixed case", "Fast LOAN Approval guaranteed today", true},
		{"currency run", "Earn $$ working from home this week", true},
		{"longer currency run", "€€€€ guaranteed returns on investment", true},
		{"single currency symbol", "The budget is around $5000 for this.", false},
		{"clean", "Could we schedule a call next week?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			p.Message = tt.message
			errs := Validate(limits, p)
			if tt.flagged {
				assert.Contains(t, errs, "Message flagged as potential spam.")
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidateCustomLimits(t *testing.T) {
	limits := Limits{
		MessageMaxLength: 20,
		MessageMinLength: 0,
		MessageMaxLinks:  0,
		SpamPhrases:      []string{"crypto"},
	}

	p := validPayload()
	p.Message = "buy crypto now"
	assert.Contains(t, Validate(limits, p), "Message flagged as potential spam.")

	p.Message = "see www.example.com"
	assert.Contains(t, Validate(limits, p), "Please provide fewer links in your message.")

	p.Message = "this message is definitely over twenty characters"
	assert.Contains(t, Validate(limits, p), "Message must be 20 characters or fewer.")
}

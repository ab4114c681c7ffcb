package contact

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limits are the validation thresholds for a submission. The zero value is
// not usable; start from DefaultLimits.
type Limits struct {
	MessageMaxLength int
	MessageMinLength int
	MessageMaxLinks  int
	SpamPhrases      []string
}

// DefaultLimits returns the thresholds the site shipped with.
func DefaultLimits() Limits {
	return Limits{
		MessageMaxLength: 500,
		MessageMinLength: 10,
		MessageMaxLinks:  2,
		SpamPhrases:      []string{"viagra", "loan approval"},
	}
}

var (
	linkPattern        = regexp.MustCompile(`(?i)https?://|www\.`)
	currencyRunPattern = regexp.MustCompile(`[$€¥£]{2,}`)
)

// rule is one named validation predicate. It returns a user-facing message
// when the payload violates it, or "" when it passes. Rules marked required
// form the minimal pre-check a client may run before submitting; the server
// always runs the full set.
type rule struct {
	name     string
	required bool
	check    func(l Limits, p Payload) string
}

// Rules run in order and every violation is collected, so the user gets all
// correction feedback in one round trip. The honeypot message is deliberately
// indistinct from other rejections.
var rules = []rule{
	{
		name: "honeypot",
		check: func(l Limits, p Payload) string {
			if strings.TrimSpace(p.Honeypot) != "" {
				return "Submission rejected."
			}
			return ""
		},
	},
	{
		name:     "first-required",
		required: true,
		check: func(l Limits, p Payload) string {
			if strings.TrimSpace(p.First) == "" {
				return "First name is required."
			}
			return ""
		},
	},
	{
		name:     "last-required",
		required: true,
		check: func(l Limits, p Payload) string {
			if strings.TrimSpace(p.Last) == "" {
				return "Last name is required."
			}
			return ""
		},
	},
	{
		name:     "email-required",
		required: true,
		check: func(l Limits, p Payload) string {
			if strings.TrimSpace(p.Email) == "" {
				return "Email is required."
			}
			return ""
		},
	},
	{
		name:     "message-required",
		required: true,
		check: func(l Limits, p Payload) string {
			if strings.TrimSpace(p.Message) == "" {
				return "Message is required."
			}
			return ""
		},
	},
	{
		name: "message-max-length",
		check: func(l Limits, p Payload) string {
			if p.Message != "" && utf8.RuneCountInString(p.Message) > l.MessageMaxLength {
				return fmt.Sprintf("Message must be %d characters or fewer.", l.MessageMaxLength)
			}
			return ""
		},
	},
	{
		name: "message-min-length",
		check: func(l Limits, p Payload) string {
			if p.Message != "" && utf8.RuneCountInString(strings.TrimSpace(p.Message)) < l.MessageMinLength {
				return fmt.Sprintf("Message must be at least %d characters long.", l.MessageMinLength)
			}
			return ""
		},
	},
	{
		name: "link-density",
		check: func(l Limits, p Payload) string {
			if p.Message != "" && len(linkPattern.FindAllString(p.Message, -1)) > l.MessageMaxLinks {
				return "Please provide fewer links in your message."
			}
			return ""
		},
	},
	{
		name: "spam-signals",
		check: func(l Limits, p Payload) string {
			if p.Message == "" {
				return ""
			}
			lowered := strings.ToLower(p.Message)
			for _, phrase := range l.SpamPhrases {
				if phrase != "" && strings.Contains(lowered, phrase) {
					return "Message flagged as potential spam."
				}
			}
			if currencyRunPattern.MatchString(p.Message) {
				return "Message flagged as potential spam."
			}
			return ""
		},
	},
}

// Validate applies every rule and returns all violations in rule order.
// An empty slice means the payload is acceptable.
func Validate(l Limits, p Payload) []string {
	var errs []string
	for _, r := range rules {
		if msg := r.check(l, p); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

// ValidateRequired runs only the required-field rules. It is the
// non-authoritative pre-check clients run before submitting; the server
// re-validates with the full set regardless.
func ValidateRequired(p Payload) []string {
	var errs []string
	for _, r := range rules {
		if !r.required {
			continue
		}
		if msg := r.check(Limits{}, p); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

// JoinErrors flattens the violations into the single string returned to the
// client.
func JoinErrors(errs []string) string {
	return strings.Join(errs, " ")
}

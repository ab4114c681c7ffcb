package contact

import "strings"

// Payload is one contact-form submission as received from the browser or CLI.
// The honeypot field is hidden in the UI; humans leave it empty.
type Payload struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Honeypot string `json:"honeypot"`
}

// FullName returns the submitter's display name.
func (p Payload) FullName() string {
	return strings.TrimSpace(p.First + " " + p.Last)
}

package contact

// SubmitResponse is returned when a message has been relayed.
type SubmitResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse carries a human-readable failure reason.
type ErrorResponse struct {
	Error string `json:"error"`
}

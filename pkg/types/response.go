package types

// ErrorEnvelope is the body of every failed API response.
type ErrorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse is returned by deletes.
type MessageResponse struct {
	Message string `json:"message"`
}

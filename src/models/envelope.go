package models

// Envelope is the uniform response shape every endpoint returns:
// {status, payload, message, error}.
type Envelope struct {
	Status  string      `json:"status"`
	Payload interface{} `json:"payload"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

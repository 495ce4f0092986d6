package http

type ErrorResponse struct {
	Error string `json:"error"`
}

type ControlResponse struct {
	Running bool   `json:"running"`
	Message string `json:"message,omitempty"`
}

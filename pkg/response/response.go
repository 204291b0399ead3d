package response

// Response is the standard API envelope. The HTTP status code carries the
// outcome class; the envelope only distinguishes success from failure.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success wraps data in a success envelope.
func Success(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Error wraps a human-readable message in a failure envelope.
func Error(msg string) Response {
	return Response{Success: false, Error: msg}
}

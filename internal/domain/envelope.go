package domain

// Fixed texts returned to callers on failure. Internal error detail is never
// placed in an envelope.
const (
	MessageInvalidInput = "Invalid input"
	MessageGenericError = "An error occurred"
)

// Envelope is the uniform outcome of a tool invocation: a single text payload
// plus a flag telling the caller whether it describes a failure.
type Envelope struct {
	Text    string
	IsError bool
}

// TextEnvelope wraps a successful payload.
func TextEnvelope(text string) Envelope {
	return Envelope{Text: text}
}

// ErrorEnvelope wraps one of the fixed failure messages.
func ErrorEnvelope(message string) Envelope {
	return Envelope{Text: message, IsError: true}
}

package envelope

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// StatusOK is the status value of a successful envelope.
const StatusOK = "OK"

// Well-known envelope field names.
const (
	FieldStatus       = "status"
	FieldErrorMessage = "errorMessage"
	FieldReturnData   = "returnData"
)

// Envelope wraps a decoded response body.
// A nil *Envelope behaves like an empty body.
type Envelope struct {
	body any
}

// Parse decodes a JSON response body.
func Parse(data []byte) (*Envelope, error) {
	var body any
	if err := oj.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("invalid JSON envelope: %w", err)
	}
	return &Envelope{body: body}, nil
}

// Wrap builds an Envelope around an already decoded body.
func Wrap(body any) *Envelope {
	return &Envelope{body: body}
}

// Body returns the decoded body.
func (e *Envelope) Body() any {
	if e == nil {
		return nil
	}
	return e.body
}

// Status returns the top-level status field as text.
func (e *Envelope) Status() string {
	m, ok := e.Body().(map[string]any)
	if !ok {
		return ""
	}
	return String(m[FieldStatus])
}

// OK reports whether the envelope status is "OK".
func (e *Envelope) OK() bool {
	return e.Status() == StatusOK
}

// ErrorMessage returns the server supplied errorMessage, reduced to its
// first entry when the server sent an array.
func (e *Envelope) ErrorMessage() string {
	m, ok := e.Body().(map[string]any)
	if !ok {
		return ""
	}
	return Message(m[FieldErrorMessage])
}

// Payload returns the returnData field, or nil.
func (e *Envelope) Payload() any {
	m, ok := e.Body().(map[string]any)
	if !ok {
		return nil
	}
	return m[FieldReturnData]
}

// List is ExtractList applied to the envelope body.
func (e *Envelope) List() []any {
	return ExtractList(e.Body())
}

// Meta is ExtractMeta applied to the envelope body.
func (e *Envelope) Meta(perPage int) PageMeta {
	return ExtractMeta(e.Body(), perPage)
}

// Err returns nil for an OK envelope and a *RejectedError otherwise.
func (e *Envelope) Err() error {
	if e.OK() {
		return nil
	}
	return &RejectedError{Status: e.Status(), Message: e.ErrorMessage()}
}

// RejectedError is a well-formed response whose status is not "OK".
type RejectedError struct {
	Status  string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status == "" {
		return "request rejected by server"
	}
	return fmt.Sprintf("request rejected by server (status %s)", e.Status)
}

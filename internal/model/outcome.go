package model

// OutcomeKind tags the variant held by an Outcome
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeBusinessError  OutcomeKind = "business_error"
	OutcomeAuthError      OutcomeKind = "auth_error"
	OutcomeTransportError OutcomeKind = "transport_error"
)

// Outcome is the single result of a dispatched call.
//
// Only the fields relevant to Kind are populated: Body for Success and
// BusinessError, Code/Class for BusinessError, Message for every failure.
// Raw always holds the last response body seen, if any.
type Outcome struct {
	Kind       OutcomeKind    `json:"kind"`
	StatusCode int            `json:"status_code,omitempty"`
	Body       map[string]any `json:"body,omitempty"`
	Raw        []byte         `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Class      BusinessClass  `json:"class,omitempty"`
	Timeout    bool           `json:"timeout,omitempty"`
	Attempts   int            `json:"attempts,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
}

// Success creates a success outcome
func Success(status int, body map[string]any, raw []byte) *Outcome {
	return &Outcome{Kind: OutcomeSuccess, StatusCode: status, Body: body, Raw: raw}
}

// Business creates a business error outcome
func Business(status int, code, message string, class BusinessClass, body map[string]any, raw []byte) *Outcome {
	return &Outcome{
		Kind:       OutcomeBusinessError,
		StatusCode: status,
		Body:       body,
		Raw:        raw,
		Code:       code,
		Message:    message,
		Class:      class,
	}
}

// Auth creates an auth error outcome
func Auth(status int, message string, raw []byte) *Outcome {
	return &Outcome{Kind: OutcomeAuthError, StatusCode: status, Message: message, Raw: raw}
}

// Transport creates a transport error outcome
func Transport(status int, message string, raw []byte) *Outcome {
	return &Outcome{Kind: OutcomeTransportError, StatusCode: status, Message: message, Raw: raw}
}

// OK reports whether the call succeeded
func (o *Outcome) OK() bool {
	return o != nil && o.Kind == OutcomeSuccess
}

// IsAuthFailure reports whether the outcome asks for re-authentication
func (o *Outcome) IsAuthFailure() bool {
	return o != nil && o.Kind == OutcomeAuthError
}

// Err converts a failed outcome into the matching typed error; nil on success.
func (o *Outcome) Err() error {
	if o == nil {
		return NewTransportError("no outcome", 0, nil, nil)
	}
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeBusinessError:
		return NewBusinessError(o.Code, o.Message, o.Class, o.StatusCode, o.Raw)
	case OutcomeAuthError:
		return NewAuthenticationError(o.Message, o.StatusCode, o.Raw, nil)
	default:
		err := NewTransportError(o.Message, o.StatusCode, o.Raw, nil)
		err.Timeout = o.Timeout
		return err
	}
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Actions reported for failures outside a specific CRUD operation.
const (
	ActionParseCommand = "parse_command"
	ActionUnknown      = "unknown"
)

// Envelope is the uniform result every agent operation returns. Exactly one
// of the entity payload fields is populated, matching Action.
type Envelope struct {
	Status  string `json:"status"`
	Action  string `json:"action"`
	Message string `json:"message"`

	Customer  *Customer  `json:"customer,omitempty"`
	Customers []Customer `json:"customers,omitempty"`
	Product   *Product   `json:"product,omitempty"`
	Products  []Product  `json:"products,omitempty"`
	Sale      *Sale      `json:"sale,omitempty"`
	Sales     []Sale     `json:"sales,omitempty"`
	Count     *int       `json:"count,omitempty"`
}

// OK reports whether the envelope carries a successful result.
func (e Envelope) OK() bool { return e.Status == StatusSuccess }

// ErrorEnvelope builds an error envelope for the given action.
func ErrorEnvelope(action, format string, args ...any) Envelope {
	return Envelope{
		Status:  StatusError,
		Action:  action,
		Message: fmt.Sprintf(format, args...),
	}
}

// RouteResult is the router's reply: the target agent's envelope wrapped
// with routing metadata. Response holds the target's reply as raw JSON;
// legacy routers encoded it a second time as a JSON string, which
// DecodeAgentReply tolerates.
type RouteResult struct {
	Status   string          `json:"status"`
	RoutedTo string          `json:"routed_to,omitempty"`
	Command  string          `json:"command"`
	Message  string          `json:"message,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// OK reports whether routing and dispatch succeeded.
func (r RouteResult) OK() bool { return r.Status == StatusSuccess }

// DecodeRouteResult decodes a router reply. Like agent envelopes, a legacy
// router may deliver the result as a JSON string that wraps the real object.
func DecodeRouteResult(raw []byte) (*RouteResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode route result: empty payload")
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("decode route result: unwrap string: %w", err)
		}
		trimmed = []byte(inner)
	}

	var res RouteResult
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return nil, fmt.Errorf("decode route result: %w", err)
	}
	return &res, nil
}

// DecodeAgentReply decodes an agent envelope from the raw bytes found in a
// RouteResult's Response field. The payload arrives either as a JSON object
// or, on the legacy wire format, as a JSON string containing JSON that needs
// one more decode.
func DecodeAgentReply(raw []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode agent reply: empty payload")
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("decode agent reply: unwrap string: %w", err)
		}
		trimmed = []byte(inner)
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode agent reply: %w", err)
	}
	return &env, nil
}

// Package protocol defines the rosbridge v2 JSON frames and service payloads
// exchanged with the simulator. It is shared by the sim client and the
// in-process fake simulator.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Op identifies the rosbridge operation carried by a frame.
type Op string

const (
	// Client → server
	OpCallService Op = "call_service"

	// Server → client
	OpServiceResponse Op = "service_response"
	OpStatus          Op = "status" // Server-side warnings and errors
)

// Frame is a single rosbridge message.
// Requests fill Args; responses fill Values and Result.
type Frame struct {
	Op      Op              `json:"op"`
	ID      string          `json:"id,omitempty"`
	Service string          `json:"service,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`
	Values  json.RawMessage `json:"values,omitempty"`
	Result  *bool           `json:"result,omitempty"`

	// Status frames
	Level string `json:"level,omitempty"`
	Msg   string `json:"msg,omitempty"`
}

// NewCallService builds a call_service frame. A nil args sends "{}".
func NewCallService(id, service string, args interface{}) (*Frame, error) {
	raw := json.RawMessage("{}")
	if args != nil {
		var err error
		raw, err = json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal service args: %w", err)
		}
	}

	return &Frame{
		Op:      OpCallService,
		ID:      id,
		Service: service,
		Args:    raw,
	}, nil
}

// NewServiceResponse builds a successful service_response frame.
func NewServiceResponse(id, service string, values interface{}) (*Frame, error) {
	raw := json.RawMessage("{}")
	if values != nil {
		var err error
		raw, err = json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal service values: %w", err)
		}
	}

	ok := true
	return &Frame{
		Op:      OpServiceResponse,
		ID:      id,
		Service: service,
		Values:  raw,
		Result:  &ok,
	}, nil
}

// NewServiceFailure builds a failed service_response frame.
// rosbridge puts the error text in Values as a JSON string.
func NewServiceFailure(id, service, reason string) *Frame {
	raw, _ := json.Marshal(reason)
	failed := false
	return &Frame{
		Op:      OpServiceResponse,
		ID:      id,
		Service: service,
		Values:  raw,
		Result:  &failed,
	}
}

// Succeeded reports whether a service_response frame carries a result.
// A missing result field counts as success, as older rosbridge servers omit it.
func (f *Frame) Succeeded() bool {
	return f.Result == nil || *f.Result
}

// FailureReason returns the error text of a failed response.
func (f *Frame) FailureReason() string {
	var reason string
	if err := json.Unmarshal(f.Values, &reason); err != nil {
		return string(f.Values)
	}
	return reason
}

// ParseArgs unmarshals the request args into v.
func (f *Frame) ParseArgs(v interface{}) error {
	if len(f.Args) == 0 {
		return nil
	}
	return json.Unmarshal(f.Args, v)
}

// ParseValues unmarshals the response values into v.
func (f *Frame) ParseValues(v interface{}) error {
	if len(f.Values) == 0 {
		return nil
	}
	return json.Unmarshal(f.Values, v)
}

// Bytes returns the JSON-encoded frame.
func (f *Frame) Bytes() ([]byte, error) {
	return json.Marshal(f)
}

// ParseFrame parses a JSON frame from bytes.
func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse frame: %w", err)
	}
	if f.Op == "" {
		return nil, fmt.Errorf("failed to parse frame: missing op")
	}
	return &f, nil
}

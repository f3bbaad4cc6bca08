package vapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"callview/presenter"
)

// Names of the events emitted by the web SDK.
const (
	EventCallStart = "call-start"
	EventCallEnd   = "call-end"
	EventMessage   = "message"
	EventError     = "error"
)

// ClientFrame is one SDK event forwarded by the browser bridge.
type ClientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type transcriptMessage struct {
	Type           string `json:"type"`
	TranscriptType string `json:"transcriptType"`
	Role           string `json:"role"`
	Transcript     string `json:"transcript"`
}

func (m transcriptMessage) event() presenter.Message {
	return presenter.Message{
		Kind:           m.Type,
		TranscriptType: m.TranscriptType,
		Role:           m.Role,
		Text:           m.Transcript,
	}
}

// DecodeClientFrame parses a bridge frame. Frames for events the
// presenter does not consume return a nil event and no error.
func DecodeClientFrame(raw []byte) (presenter.Event, error) {
	var frame ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("decode client frame: %w", err)
	}
	return frame.Decode()
}

func (f ClientFrame) Decode() (presenter.Event, error) {
	switch f.Event {
	case EventCallStart:
		return presenter.CallStart{}, nil
	case EventCallEnd:
		return presenter.CallEnd{}, nil
	case EventMessage:
		var msg transcriptMessage
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return nil, fmt.Errorf("decode message payload: %w", err)
		}
		return msg.event(), nil
	case EventError:
		return presenter.SDKError{Description: describeError(f.Data)}, nil
	case "":
		return nil, fmt.Errorf("client frame has no event name")
	default:
		return nil, nil
	}
}

// describeError flattens the SDK's opaque error payload into one line.
func describeError(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "unknown error"
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"description", "message", "errorMsg", "error"} {
			switch v := obj[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case map[string]any:
				if nested, err := json.Marshal(v); err == nil {
					return describeError(nested)
				}
			}
		}
	}

	return strings.TrimSpace(string(raw))
}

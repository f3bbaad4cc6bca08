package vapi

import (
	"encoding/json"
	"fmt"

	"callview/presenter"
)

// Server message types sent to the assistant's server URL.
const (
	TypeStatusUpdate    = "status-update"
	TypeTranscript      = "transcript"
	TypeToolCalls       = "tool-calls"
	TypeEndOfCallReport = "end-of-call-report"
	TypeHang            = "hang"

	StatusInProgress = "in-progress"
	StatusEnded      = "ended"
)

type ServerEnvelope struct {
	Message ServerMessage `json:"message"`
}

type ServerMessage struct {
	Type           string     `json:"type"`
	Status         string     `json:"status,omitempty"`
	EndedReason    string     `json:"endedReason,omitempty"`
	Role           string     `json:"role,omitempty"`
	TranscriptType string     `json:"transcriptType,omitempty"`
	Transcript     string     `json:"transcript,omitempty"`
	ToolCallList   []ToolCall `json:"toolCallList,omitempty"`
}

type ToolCall struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Function   *ToolFunction   `json:"function,omitempty"`
}

type ToolFunction struct {
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

type ToolResult struct {
	Name       string `json:"name"`
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

type ToolResponse struct {
	Results []ToolResult `json:"results"`
}

func DecodeServerMessage(raw []byte) (ServerMessage, error) {
	var env ServerEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ServerMessage{}, fmt.Errorf("decode server message: %w", err)
	}
	if env.Message.Type == "" {
		env.Message.Type = "unknown"
	}
	return env.Message, nil
}

// Event maps a server message onto the presenter's event set. Messages
// that carry nothing for the presenter return nil.
func (m ServerMessage) Event() presenter.Event {
	switch m.Type {
	case TypeStatusUpdate:
		switch m.Status {
		case StatusInProgress:
			return presenter.CallStart{}
		case StatusEnded:
			return presenter.CallEnd{}
		}
	case TypeTranscript:
		return presenter.Message{
			Kind:           presenter.KindTranscript,
			TranscriptType: m.TranscriptType,
			Role:           m.Role,
			Text:           m.Transcript,
		}
	}
	return nil
}

// Resolve returns the tool name and its arguments, accepting both the
// flat toolCallList layout and the legacy function wrapper.
func (tc ToolCall) Resolve() (string, map[string]any, error) {
	name := tc.Name
	raw := firstNonEmpty(tc.Arguments, tc.Parameters)

	if name == "" && tc.Function != nil {
		name = tc.Function.Name
		raw = firstNonEmpty(tc.Function.Arguments, tc.Function.Parameters, raw)
	}

	args, err := decodeArguments(raw)
	if err != nil {
		return name, nil, fmt.Errorf("tool %q: %w", name, err)
	}
	return name, args, nil
}

func firstNonEmpty(raws ...json.RawMessage) json.RawMessage {
	for _, raw := range raws {
		if len(raw) > 0 && string(raw) != "null" {
			return raw
		}
	}
	return nil
}

// decodeArguments accepts an object or a string holding an object.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 {
		return args, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if encoded == "" {
			return args, nil
		}
		raw = json.RawMessage(encoded)
	}

	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return args, nil
}

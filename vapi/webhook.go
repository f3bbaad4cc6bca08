package vapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"callview/presenter"
)

const maxWebhookBody = 1 << 20

type Publisher interface {
	Publish(ctx context.Context, ev presenter.Event) error
}

// Webhook handles the messages Vapi posts to the assistant's server URL.
type Webhook struct {
	events Publisher
	tools  map[string]ToolFunc
	logger *log.Logger
}

func NewWebhook(events Publisher, tools map[string]ToolFunc, logger *log.Logger) *Webhook {
	if tools == nil {
		tools = map[string]ToolFunc{}
	}
	return &Webhook{events: events, tools: tools, logger: logger}
}

func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body"})
		return
	}
	h.logger.Debug("raw payload", "body", truncate(string(body), 3000))

	msg, err := DecodeServerMessage(body)
	if err != nil {
		h.logger.Warn("bad webhook payload", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	h.logger.Info("received vapi event", "type", msg.Type)

	if ev := msg.Event(); ev != nil && h.events != nil {
		if err := h.events.Publish(r.Context(), ev); err != nil {
			h.logger.Error("publish event", "type", msg.Type, "error", err)
		}
	}

	if msg.Type != TypeToolCalls {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	writeJSON(w, http.StatusOK, h.runTools(r.Context(), msg.ToolCallList))
}

func (h *Webhook) runTools(ctx context.Context, calls []ToolCall) ToolResponse {
	resp := ToolResponse{Results: make([]ToolResult, 0, len(calls))}

	for _, tc := range calls {
		name, args, err := tc.Resolve()
		result := ToolResult{Name: name, ToolCallID: tc.ID}

		tool, ok := h.tools[name]
		switch {
		case !ok:
			result.Result = "Unknown tool: " + name
		case err != nil:
			h.logger.Error("tool arguments", "tool", name, "error", err)
			result.Result = "Invalid arguments for " + name + ": " + err.Error()
		default:
			h.logger.Info("processing tool", "tool", name, "args", args)
			result.Result = tool(ctx, args)
		}

		resp.Results = append(resp.Results, result)
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

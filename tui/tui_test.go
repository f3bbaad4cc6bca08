package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"callview/presenter"
)

func update(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestTranscriptView(t *testing.T) {
	t.Run("Entries in order", func(t *testing.T) {
		m := update(NewModel(nil),
			tea.WindowSizeMsg{Width: 80, Height: 24},
			statusMsg(presenter.Live),
			panelMsg(true),
			appendMsg(presenter.TranscriptEntry{Role: presenter.Assistant, Text: "Hello"}),
			appendMsg(presenter.TranscriptEntry{Role: presenter.User, Text: "Hi there"}),
			scrollMsg{},
		)

		expected := "🤖 Hello\n🎙️ Hi there\n"
		if result := m.contentView(); result != expected {
			t.Errorf(
				"contentView() returned incorrect result.\nExpected:\n%s\nGot:\n%s",
				expected,
				result,
			)
		}
		if !strings.Contains(m.View(), "● Live") {
			t.Errorf("View() is missing the live status:\n%s", m.View())
		}
	})

	t.Run("Hidden panel", func(t *testing.T) {
		m := update(NewModel(nil),
			tea.WindowSizeMsg{Width: 80, Height: 24},
			appendMsg(presenter.TranscriptEntry{Role: presenter.User, Text: "early"}),
		)
		if result := m.contentView(); result != "" {
			t.Errorf("contentView() = %q, want empty while the panel is hidden", result)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		m := update(NewModel(nil),
			panelMsg(true),
			appendMsg(presenter.TranscriptEntry{Role: presenter.User, Text: "old"}),
			clearMsg{},
			panelMsg(false),
		)
		if len(m.entries) != 0 || m.contentView() != "" {
			t.Errorf("entries = %v after clear", m.entries)
		}
	})
}

func TestViewDrivesModel(t *testing.T) {
	view := NewView(16, log.New(&bytes.Buffer{}))
	p := presenter.New(view, log.New(&bytes.Buffer{}))

	p.OnCallStart()
	p.OnMessage(presenter.Message{
		Kind:           presenter.KindTranscript,
		TranscriptType: presenter.TranscriptFinal,
		Role:           "assistant",
		Text:           "How can I help?",
	})
	p.OnCallEnd()

	m := view.Model()
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	for len(view.updates) > 0 {
		m = update(m, <-view.updates)
	}

	if m.status != presenter.Ended {
		t.Errorf("status = %v, want %v", m.status, presenter.Ended)
	}
	if !strings.Contains(m.contentView(), "How can I help?") {
		t.Errorf("contentView() = %q", m.contentView())
	}
}

func TestViewDropsWhenFull(t *testing.T) {
	var buf bytes.Buffer
	view := NewView(1, log.New(&buf))

	view.ScrollToBottom()
	view.ScrollToBottom()

	if len(view.updates) != 1 {
		t.Errorf("queued %d updates, want 1", len(view.updates))
	}
	if !strings.Contains(buf.String(), "dropped") {
		t.Errorf("expected a warning about the dropped update, got %q", buf.String())
	}
}

package presenter

import "fmt"

type CallStatus int

const (
	Idle CallStatus = iota
	Live
	Ended
	Error
)

func (s CallStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case Live:
		return "live"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("CallStatus(%d)", int(s))
	}
}

// Label is the text shown in the status indicator.
func (s CallStatus) Label() string {
	switch s {
	case Live:
		return "● Live"
	case Ended:
		return "Call ended — click the phone button to start again ↘"
	case Error:
		return "Error — check logs"
	default:
		return "Click the phone button to start a call"
	}
}

// Class is the CSS class list of the status indicator.
func (s CallStatus) Class() string {
	switch s {
	case Live:
		return "status live"
	case Error:
		return "status error"
	default:
		return "status"
	}
}

type Role string

const (
	User      Role = "user"
	Assistant Role = "assistant"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case User, Assistant:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Icon() string {
	if r == Assistant {
		return "🤖"
	}
	return "🎙️"
}

type TranscriptEntry struct {
	Role Role
	Text string
}

// TranscriptLog holds final transcript entries in arrival order.
type TranscriptLog struct {
	entries []TranscriptEntry
}

func (l *TranscriptLog) Append(e TranscriptEntry) {
	l.entries = append(l.entries, e)
}

func (l *TranscriptLog) Clear() {
	l.entries = nil
}

func (l *TranscriptLog) Len() int {
	return len(l.entries)
}

func (l *TranscriptLog) Entries() []TranscriptEntry {
	out := make([]TranscriptEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

package presenter

const (
	KindTranscript = "transcript"

	TranscriptFinal   = "final"
	TranscriptPartial = "partial"
)

// Event is one of CallStart, CallEnd, Message or SDKError.
type Event interface {
	isEvent()
}

type CallStart struct{}

type CallEnd struct{}

type Message struct {
	Kind           string
	TranscriptType string
	Role           string
	Text           string
}

// SDKError is the opaque failure reported by the call SDK.
type SDKError struct {
	Description string
}

func (CallStart) isEvent() {}
func (CallEnd) isEvent()   {}
func (Message) isEvent()   {}
func (SDKError) isEvent()  {}

func (m Message) IsFinalTranscript() bool {
	return m.Kind == KindTranscript && m.TranscriptType == TranscriptFinal
}

// Handler receives call session events. Implementations must not block.
type Handler interface {
	OnCallStart()
	OnCallEnd()
	OnMessage(msg Message)
	OnError(err SDKError)
}

// Source is anything a Handler can be attached to.
type Source interface {
	Subscribe(h Handler) (unsubscribe func())
}

func Dispatch(h Handler, ev Event) {
	switch ev := ev.(type) {
	case CallStart:
		h.OnCallStart()
	case CallEnd:
		h.OnCallEnd()
	case Message:
		h.OnMessage(ev)
	case SDKError:
		h.OnError(ev)
	}
}

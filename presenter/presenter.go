package presenter

import (
	"sync"

	"github.com/charmbracelet/log"
)

// View is the set of UI targets the presenter drives. Implementations
// must return quickly; they are called from the event goroutine.
type View interface {
	SetStatus(status CallStatus)
	ClearEntries()
	SetPanelVisible(visible bool)
	AppendEntry(entry TranscriptEntry)
	ScrollToBottom()
}

type Snapshot struct {
	Status       CallStatus
	Entries      []TranscriptEntry
	PanelVisible bool
}

// Presenter turns call session events into status and transcript updates.
type Presenter struct {
	view   View
	logger *log.Logger

	mu           sync.RWMutex
	status       CallStatus
	transcript   TranscriptLog
	panelVisible bool
}

func New(view View, logger *log.Logger) *Presenter {
	if logger == nil {
		logger = log.Default()
	}
	return &Presenter{
		view:   view,
		logger: logger,
		status: Idle,
	}
}

// Attach subscribes the presenter to src and returns the unsubscribe func.
func (p *Presenter) Attach(src Source) func() {
	return src.Subscribe(p)
}

func (p *Presenter) OnCallStart() {
	p.mu.Lock()
	p.status = Live
	p.transcript.Clear()
	p.panelVisible = false
	p.mu.Unlock()

	p.view.SetStatus(Live)
	p.view.ClearEntries()
	p.view.SetPanelVisible(false)
	p.logger.Info("call started")
}

func (p *Presenter) OnCallEnd() {
	p.mu.Lock()
	p.status = Ended
	n := p.transcript.Len()
	p.mu.Unlock()

	p.view.SetStatus(Ended)
	p.logger.Info("call ended", "entries", n)
}

func (p *Presenter) OnMessage(msg Message) {
	if !msg.IsFinalTranscript() {
		return
	}
	role, err := ParseRole(msg.Role)
	if err != nil {
		p.logger.Debug("drop transcript", "error", err)
		return
	}
	entry := TranscriptEntry{Role: role, Text: msg.Text}

	p.mu.Lock()
	p.transcript.Append(entry)
	p.panelVisible = true
	p.mu.Unlock()

	p.render(entry)
}

func (p *Presenter) OnError(err SDKError) {
	p.mu.Lock()
	p.status = Error
	p.mu.Unlock()

	p.logger.Error("call sdk error", "description", err.Description)
	p.view.SetStatus(Error)
}

func (p *Presenter) render(entry TranscriptEntry) {
	p.view.SetPanelVisible(true)
	p.view.AppendEntry(entry)
	p.view.ScrollToBottom()
}

func (p *Presenter) Status() CallStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Presenter) Entries() []TranscriptEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.transcript.Entries()
}

func (p *Presenter) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		Status:       p.status,
		Entries:      p.transcript.Entries(),
		PanelVisible: p.panelVisible,
	}
}

package presenter

import "sync"

// Recorder is a View that keeps the state it was told to display.
type Recorder struct {
	mu           sync.Mutex
	Status       CallStatus
	Entries      []TranscriptEntry
	PanelVisible bool
	Scrolls      int
}

func NewRecorder() *Recorder {
	return &Recorder{Status: Idle}
}

func (r *Recorder) SetStatus(status CallStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
}

func (r *Recorder) ClearEntries() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = nil
}

func (r *Recorder) SetPanelVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PanelVisible = visible
}

func (r *Recorder) AppendEntry(entry TranscriptEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, entry)
}

func (r *Recorder) ScrollToBottom() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Scrolls++
}

package web

import (
	"context"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"callview/presenter"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// Patch is a DOM update sent to the attached browser.
type Patch struct {
	Op      string `json:"op"`
	HTML    string `json:"html,omitempty"`
	Status  string `json:"status,omitempty"`
	Visible bool   `json:"visible"`
}

const (
	OpStatus = "status"
	OpClear  = "clear"
	OpPanel  = "panel"
	OpAppend = "append"
	OpScroll = "scroll"
	OpSync   = "sync"
)

type viewer struct {
	id   string
	conn *websocket.Conn
	send chan Patch
}

func (c *viewer) writePump(logger *log.Logger) {
	defer c.conn.Close()

	for patch := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(patch); err != nil {
			logger.Warn("write patch", "viewer", c.id, "error", err)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced"),
	)
}

// HTMLView renders presenter updates as HTML patches for the one browser
// currently attached. Attaching a new browser detaches the previous one.
type HTMLView struct {
	logger *log.Logger

	mu      sync.Mutex
	current *viewer
}

func NewHTMLView(logger *log.Logger) *HTMLView {
	return &HTMLView{logger: logger}
}

func (v *HTMLView) SetStatus(status presenter.CallStatus) {
	v.pushComponent(OpStatus, StatusIndicator(status))
}

func (v *HTMLView) ClearEntries() {
	v.push(Patch{Op: OpClear})
}

func (v *HTMLView) SetPanelVisible(visible bool) {
	v.push(Patch{Op: OpPanel, Visible: visible})
}

func (v *HTMLView) AppendEntry(entry presenter.TranscriptEntry) {
	v.pushComponent(OpAppend, Entry(entry))
}

func (v *HTMLView) ScrollToBottom() {
	v.push(Patch{Op: OpScroll})
}

func (v *HTMLView) pushComponent(op string, c templ.Component) {
	html, err := RenderString(context.Background(), c)
	if err != nil {
		v.logger.Error("render patch", "op", op, "error", err)
		return
	}
	v.push(Patch{Op: op, HTML: html})
}

// attach makes c the current viewer, queueing a full sync of snap first.
func (v *HTMLView) attach(c *viewer, snap presenter.Snapshot) error {
	patch, err := syncPatch(snap)
	if err != nil {
		return err
	}
	c.send <- patch

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current != nil {
		v.logger.Info("viewer replaced", "old", v.current.id, "new", c.id)
		close(v.current.send)
	}
	v.current = c
	return nil
}

func (v *HTMLView) detach(c *viewer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == c {
		close(c.send)
		v.current = nil
	}
}

func (v *HTMLView) push(p Patch) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return
	}
	select {
	case v.current.send <- p:
	default:
		v.logger.Warn("viewer too slow, patch dropped", "viewer", v.current.id, "op", p.Op)
	}
}

func syncPatch(snap presenter.Snapshot) (Patch, error) {
	ctx := context.Background()
	status, err := RenderString(ctx, StatusIndicator(snap.Status))
	if err != nil {
		return Patch{}, err
	}
	list, err := RenderString(ctx, EntryList(snap.Entries))
	if err != nil {
		return Patch{}, err
	}
	return Patch{Op: OpSync, HTML: list, Status: status, Visible: snap.PanelVisible}, nil
}

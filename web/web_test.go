package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"callview/presenter"
)

func TestEntryEscapesText(t *testing.T) {
	html, err := RenderString(context.Background(), Entry(presenter.TranscriptEntry{
		Role: presenter.User,
		Text: "<img src=x onerror=alert(1)>",
	}))
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}

	if strings.Contains(html, "<img") {
		t.Errorf("rendered entry contains raw markup: %s", html)
	}
	if !strings.Contains(html, "&lt;img src=x onerror=alert(1)&gt;") {
		t.Errorf("rendered entry = %s, want escaped angle brackets", html)
	}
}

func TestEntryMarkup(t *testing.T) {
	tests := []struct {
		name     string
		entry    presenter.TranscriptEntry
		expected string
	}{
		{
			name:     "Assistant",
			entry:    presenter.TranscriptEntry{Role: presenter.Assistant, Text: "Hello, how can I help?"},
			expected: `<div class="transcript-entry assistant"><span class="role-icon">🤖</span>Hello, how can I help?</div>`,
		},
		{
			name:     "User",
			entry:    presenter.TranscriptEntry{Role: presenter.User, Text: "Tom & Jerry"},
			expected: `<div class="transcript-entry user"><span class="role-icon">🎙️</span>Tom &amp; Jerry</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := RenderString(context.Background(), Entry(tt.entry))
			if err != nil {
				t.Fatalf("RenderString() error = %v", err)
			}
			if html != tt.expected {
				t.Errorf("Entry() = %s, want %s", html, tt.expected)
			}
		})
	}
}

func TestTranscriptPanelHiddenWhenEmpty(t *testing.T) {
	html, err := RenderString(context.Background(), TranscriptPanel(presenter.Snapshot{}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `class="transcript-box hidden"`) {
		t.Errorf("empty panel should be hidden: %s", html)
	}

	html, err = RenderString(context.Background(), TranscriptPanel(presenter.Snapshot{
		PanelVisible: true,
		Entries:      []presenter.TranscriptEntry{{Role: presenter.Assistant, Text: "Hi"}},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "hidden") {
		t.Errorf("panel with entries should be visible: %s", html)
	}
}

type testEnv struct {
	presenter *presenter.Presenter
	feed      *presenter.Feed
	server    *httptest.Server
	cancel    context.CancelFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := log.New(&bytes.Buffer{})

	view := NewHTMLView(logger)
	p := presenter.New(view, logger)
	feed := presenter.NewFeed(16)
	p.Attach(feed)

	ctx, cancel := context.WithCancel(context.Background())
	go feed.Run(ctx)

	srv := NewServer(Options{
		State:  p,
		View:   view,
		Events: feed,
		Page:   PageData{PublicKey: `pk"><script>`},
		Logger: logger,
	})
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &testEnv{presenter: p, feed: feed, server: ts, cancel: cancel}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPatch(t *testing.T, conn *websocket.Conn) Patch {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var p Patch
	if err := conn.ReadJSON(&p); err != nil {
		t.Fatalf("read patch: %v", err)
	}
	return p
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	page := buf.String()

	for _, want := range []string{`id="status"`, `id="transcript-list"`, `transcript-box hidden`, `/static/bridge.js`} {
		if !strings.Contains(page, want) {
			t.Errorf("page is missing %s", want)
		}
	}
	if strings.Contains(page, `pk"><script>`) {
		t.Errorf("public key was not escaped")
	}
}

func TestBridgeScriptServed(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/static/bridge.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSocketRelaysCall(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	sync := readPatch(t, conn)
	if sync.Op != OpSync || sync.Visible || sync.HTML != "" {
		t.Fatalf("first patch = %+v, want empty sync", sync)
	}

	frames := []string{
		`{"event":"call-start"}`,
		`{"event":"message","data":{"type":"transcript","transcriptType":"partial","role":"assistant","transcript":"Hel"}}`,
		`{"event":"message","data":{"type":"transcript","transcriptType":"final","role":"assistant","transcript":"Hello <b>there</b>"}}`,
	}
	for _, frame := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	expectedOps := []string{OpStatus, OpClear, OpPanel, OpPanel, OpAppend, OpScroll}
	var patches []Patch
	for range expectedOps {
		patches = append(patches, readPatch(t, conn))
	}
	for i, op := range expectedOps {
		if patches[i].Op != op {
			t.Errorf("patch %d op = %q, want %q", i, patches[i].Op, op)
		}
	}

	if !strings.Contains(patches[0].HTML, "status live") {
		t.Errorf("status patch = %s", patches[0].HTML)
	}
	if patches[2].Visible || !patches[3].Visible {
		t.Errorf("panel patches = %+v, %+v", patches[2], patches[3])
	}
	if !strings.Contains(patches[4].HTML, "Hello &lt;b&gt;there&lt;/b&gt;") {
		t.Errorf("append patch = %s", patches[4].HTML)
	}

	if n := len(env.presenter.Entries()); n != 1 {
		t.Errorf("len(Entries()) = %d, want 1", n)
	}
}

func TestNewViewerReplacesOld(t *testing.T) {
	env := newTestEnv(t)

	first := env.dial(t)
	readPatch(t, first)

	second := env.dial(t)
	readPatch(t, second)

	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := first.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("first viewer read error = %v, want normal closure", err)
	}

	if err := env.feed.Publish(context.Background(), presenter.CallStart{}); err != nil {
		t.Fatal(err)
	}
	if p := readPatch(t, second); p.Op != OpStatus {
		t.Errorf("second viewer got %+v, want status patch", p)
	}
}

func TestViewerAttachedMidCall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const lines = 15
	if err := env.feed.Publish(ctx, presenter.CallStart{}); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < lines; i++ {
			env.feed.Publish(ctx, presenter.Message{
				Kind:           presenter.KindTranscript,
				TranscriptType: presenter.TranscriptFinal,
				Role:           "assistant",
				Text:           "line",
			})
		}
	}()

	conn := env.dial(t)
	<-done
	if err := env.feed.Publish(ctx, presenter.CallEnd{}); err != nil {
		t.Fatal(err)
	}

	sync := readPatch(t, conn)
	if sync.Op != OpSync {
		t.Fatalf("first patch = %+v, want sync", sync)
	}
	seen := strings.Count(sync.HTML, "transcript-entry")
	ended := strings.Contains(sync.Status, "Call ended")
	for !ended {
		p := readPatch(t, conn)
		switch p.Op {
		case OpAppend:
			seen++
		case OpClear:
			seen = 0
		case OpStatus:
			ended = strings.Contains(p.HTML, "Call ended")
		}
	}

	if seen != lines {
		t.Errorf("viewer shows %d entries, want %d", seen, lines)
	}
}

func TestCalendarWebhookRoute(t *testing.T) {
	hook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	srv := NewServer(Options{Webhook: hook, Logger: log.New(&bytes.Buffer{})})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/webhook/vapi", "/webhook/calendar"} {
		resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("POST %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

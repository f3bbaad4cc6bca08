package main

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

	"callview/config"
	"callview/logging"
	"callview/presenter"
	"callview/web"
)

const recording = `{"event":"call-start"}
{"event":"message","data":{"type":"transcript","transcriptType":"partial","role":"assistant","transcript":"Hel"}}
{"event":"message","data":{"type":"transcript","transcriptType":"final","role":"assistant","transcript":"Hello, how can I help?"}}
{"event":"volume-level","data":0.3}

{"message":{"type":"transcript","role":"user","transcriptType":"final","transcript":"Book me for Friday at ten"}}
{"message":{"type":"status-update","status":"ended"}}
`

func TestReplay(t *testing.T) {
	logger := log.New(&bytes.Buffer{})

	events, err := readRecording(strings.NewReader(recording), logger)
	if err != nil {
		t.Fatalf("readRecording() error = %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("readRecording() returned %d events, want 5", len(events))
	}

	snap := replay(events, logger)
	if snap.Status != presenter.Ended {
		t.Errorf("Status = %v, want %v", snap.Status, presenter.Ended)
	}
	expected := []presenter.TranscriptEntry{
		{Role: presenter.Assistant, Text: "Hello, how can I help?"},
		{Role: presenter.User, Text: "Book me for Friday at ten"},
	}
	if len(snap.Entries) != len(expected) {
		t.Fatalf("Entries = %v, want %v", snap.Entries, expected)
	}
	for i := range expected {
		if snap.Entries[i] != expected[i] {
			t.Errorf("Entries[%d] = %v, want %v", i, snap.Entries[i], expected[i])
		}
	}

	var out bytes.Buffer
	printTranscript(&out, snap)
	for _, want := range []string{"Call ended", "Hello, how can I help?", "Book me for Friday at ten"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("printTranscript() output is missing %q:\n%s", want, out.String())
		}
	}
}

func TestReplayRejectsBadLines(t *testing.T) {
	logger := log.New(&bytes.Buffer{})
	for _, input := range []string{"{not json}\n", `{"event":""}` + "\n"} {
		if _, err := readRecording(strings.NewReader(input), logger); err == nil {
			t.Errorf("readRecording(%q) succeeded, want error", input)
		}
	}
}

func TestPrintEmptyTranscript(t *testing.T) {
	var out bytes.Buffer
	printTranscript(&out, presenter.Snapshot{Status: presenter.Idle})
	if !strings.Contains(out.String(), "No transcript entries.") {
		t.Errorf("printTranscript() = %q", out.String())
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, op string) web.Patch {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var p web.Patch
		if err := conn.ReadJSON(&p); err != nil {
			t.Fatalf("waiting for %s patch: %v", op, err)
		}
		if p.Op == op {
			return p
		}
	}
}

func TestServeIgnoresWebhookCallEvents(t *testing.T) {
	logger := log.New(&bytes.Buffer{})
	loggers := &logging.Loggers{Main: logger, Call: logger, HTTP: logger, Tool: logger}

	srv, p, feed := newServeStack(config.Settings{}, loggers, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	readUntil(t, conn, web.OpSync)

	send := func(frame string) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	send(`{"event":"call-start"}`)
	send(`{"event":"message","data":{"type":"transcript","transcriptType":"final","role":"assistant","transcript":"Hello, how can I help?"}}`)
	readUntil(t, conn, web.OpAppend)

	for _, body := range []string{
		`{"message":{"type":"status-update","status":"in-progress"}}`,
		`{"message":{"type":"transcript","role":"user","transcriptType":"final","transcript":"Book me"}}`,
	} {
		resp, err := http.Post(ts.URL+"/webhook/vapi", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("webhook status = %d, want 200", resp.StatusCode)
		}
	}

	send(`{"event":"message","data":{"type":"transcript","transcriptType":"final","role":"user","transcript":"Book me"}}`)
	readUntil(t, conn, web.OpAppend)

	expected := []presenter.TranscriptEntry{
		{Role: presenter.Assistant, Text: "Hello, how can I help?"},
		{Role: presenter.User, Text: "Book me"},
	}
	entries := p.Entries()
	if len(entries) != len(expected) {
		t.Fatalf("Entries = %v, want %v", entries, expected)
	}
	for i := range expected {
		if entries[i] != expected[i] {
			t.Errorf("Entries[%d] = %v, want %v", i, entries[i], expected[i])
		}
	}
}

package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"callview/presenter"
	"callview/vapi"
)

//go:embed static
var staticFS embed.FS

const maxFrameSize = 64 << 10

type Snapshotter interface {
	Snapshot() presenter.Snapshot
}

// EventLoop takes bridge events and runs viewer hand-offs in order with
// them, so a new viewer's sync sees exactly the events before it.
type EventLoop interface {
	vapi.Publisher
	Do(ctx context.Context, fn func()) error
}

type Options struct {
	Port int
	// State and View are both required to serve the page and the socket.
	State   Snapshotter
	View    *HTMLView
	Events  EventLoop
	Webhook http.Handler
	Page    PageData
	Logger  *log.Logger
}

type Server struct {
	opts     Options
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *log.Logger
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Page.Title == "" {
		opts.Page.Title = "Voice AI Scheduling Agent"
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  opts.Logger.StandardLog(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if opts.Webhook != nil {
		r.Post("/webhook/vapi", opts.Webhook.ServeHTTP)
		// Assistants configured against the calendar webhook keep working.
		r.Post("/webhook/calendar", opts.Webhook.ServeHTTP)
	}
	if opts.State != nil && opts.View != nil {
		static, _ := fs.Sub(staticFS, "static")
		r.Get("/", s.handleIndex)
		r.Get("/ws", s.handleSocket)
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.opts.Port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http", "url", fmt.Sprintf("http://localhost:%d", s.opts.Port))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.opts.Page
	data.Snapshot = s.opts.State.Snapshot()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(data).Render(r.Context(), w); err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "error", err)
		return
	}

	c := &viewer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Patch, sendBuffer),
	}
	if err := s.attach(r.Context(), c); err != nil {
		s.logger.Error("attach viewer", "error", err)
		conn.Close()
		return
	}
	s.logger.Info("viewer attached", "viewer", c.id)

	go c.writePump(s.logger)
	s.readFrames(r.Context(), c)

	s.opts.View.detach(c)
	s.logger.Info("viewer detached", "viewer", c.id)
}

func (s *Server) attach(ctx context.Context, c *viewer) error {
	if s.opts.Events == nil {
		return s.opts.View.attach(c, s.opts.State.Snapshot())
	}
	var err error
	if doErr := s.opts.Events.Do(ctx, func() {
		err = s.opts.View.attach(c, s.opts.State.Snapshot())
	}); doErr != nil {
		return doErr
	}
	return err
}

// readFrames forwards SDK events relayed by the browser until the
// connection closes.
func (s *Server) readFrames(ctx context.Context, c *viewer) {
	c.conn.SetReadLimit(maxFrameSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("read frame", "viewer", c.id, "error", err)
			}
			return
		}

		ev, err := vapi.DecodeClientFrame(data)
		if err != nil {
			s.logger.Warn("bad client frame", "viewer", c.id, "error", err)
			continue
		}
		if ev == nil || s.opts.Events == nil {
			continue
		}
		if err := s.opts.Events.Publish(ctx, ev); err != nil {
			s.logger.Error("publish event", "error", err)
			return
		}
	}
}

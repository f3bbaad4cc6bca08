package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"callview/calendar"
	"callview/config"
	"callview/logging"
	"callview/presenter"
	"callview/tui"
	"callview/vapi"
	"callview/web"
)

const feedBuffer = 256

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live transcript page and the Vapi webhook",
	Run:   runServe,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the live transcript in the terminal",
	Long:  `Starts the Vapi webhook and renders transcript events posted to it in a terminal UI.`,
	Run:   runWatch,
}

func runServe(cmd *cobra.Command, args []string) {
	loggers := createLoggers(false)
	defer loggers.Close()

	ctx, cancel := signalContext()
	defer cancel()

	settings := loadSettings(ctx, loggers.Main)

	srv, _, feed := newServeStack(settings, loggers, newTools(ctx, settings, loggers))
	go feed.Run(ctx)

	if err := srv.Serve(ctx); err != nil {
		loggers.Main.Fatal("http server", "error", err)
	}
}

// newServeStack wires the browser page. The bridge socket is the only
// source of call events; the webhook there only answers tool calls, since
// Vapi also reports the same call to it.
func newServeStack(
	settings config.Settings,
	loggers *logging.Loggers,
	tools map[string]vapi.ToolFunc,
) (*web.Server, *presenter.Presenter, *presenter.Feed) {
	view := web.NewHTMLView(loggers.HTTP)
	p := presenter.New(view, loggers.Call)
	feed := presenter.NewFeed(feedBuffer)
	p.Attach(feed)

	srv := web.NewServer(web.Options{
		Port:    settings.WebPort,
		State:   p,
		View:    view,
		Events:  feed,
		Webhook: vapi.NewWebhook(nil, tools, loggers.HTTP),
		Page: web.PageData{
			PublicKey:   settings.VapiPublicKey,
			AssistantID: settings.VapiAssistantID,
		},
		Logger: loggers.HTTP,
	})
	return srv, p, feed
}

func runWatch(cmd *cobra.Command, args []string) {
	loggers := createLoggers(true)
	defer loggers.Close()

	ctx, cancel := signalContext()
	defer cancel()

	settings := loadSettings(ctx, loggers.Main)

	view := tui.NewView(feedBuffer, loggers.Main)
	p := presenter.New(view, loggers.Call)
	feed := presenter.NewFeed(feedBuffer)
	p.Attach(feed)
	go feed.Run(ctx)

	srv := web.NewServer(web.Options{
		Port:    settings.WebPort,
		Webhook: vapi.NewWebhook(feed, newTools(ctx, settings, loggers), loggers.HTTP),
		Logger:  loggers.HTTP,
	})
	go func() {
		if err := srv.Serve(ctx); err != nil {
			loggers.Main.Error("http server", "error", err)
			cancel()
		}
	}()

	program := tea.NewProgram(view.Model(), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		loggers.Main.Fatal("Error running program", "error", err)
	}
}

func newTools(ctx context.Context, settings config.Settings, loggers *logging.Loggers) map[string]vapi.ToolFunc {
	return map[string]vapi.ToolFunc{
		vapi.ToolBookAppointment: bookingTool(ctx, settings.Calendar, loggers.Tool),
	}
}

func bookingTool(ctx context.Context, cfg calendar.Config, logger *log.Logger) vapi.ToolFunc {
	client, err := calendar.NewClient(ctx, cfg, logger)
	if err != nil {
		logger.Warn("calendar booking disabled", "error", err)
		return vapi.UnavailableTool(err)
	}
	return vapi.BookAppointment(client)
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives a copy of every record, rotated by size.
	File string
	// Quiet drops the terminal output; used while a TUI owns the screen.
	Quiet bool
}

type Loggers struct {
	Main *log.Logger
	Call *log.Logger
	HTTP *log.Logger
	Tool *log.Logger

	closer io.Closer
}

func New(opts Options) *Loggers {
	var writers []io.Writer
	if !opts.Quiet {
		writers = append(writers, os.Stderr)
	}

	var rotator *lumberjack.Logger
	if opts.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     30,
		}
		writers = append(writers, rotator)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	root := log.NewWithOptions(io.MultiWriter(writers...), log.Options{
		ReportTimestamp: true,
		ReportCaller:    true,
		Level:           ParseLevel(opts.Level),
	})
	root.SetCallerFormatter(
		func(file string, line int, funcName string) string {
			path, err := filepath.Rel(".", file)
			if err != nil {
				path = file
			}
			return fmt.Sprintf("%s:%d", path, line)
		},
	)
	root.SetStyles(styles())

	l := &Loggers{
		Main: root.WithPrefix("main"),
		Call: root.WithPrefix("call"),
		HTTP: root.WithPrefix("http"),
		Tool: root.WithPrefix("tool"),
	}
	if rotator != nil {
		l.closer = rotator
	}
	return l
}

func (l *Loggers) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func ParseLevel(s string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func styles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Prefix = styles.Prefix.Bold(false).
		Foreground(lipgloss.Color("#7d56f4")).
		Transform(func(s string) string {
			return strings.TrimSuffix(s, ":")
		})
	for level, color := range map[log.Level]string{
		log.DebugLevel: "#6b7280",
		log.InfoLevel:  "#16a34a",
		log.WarnLevel:  "#d97706",
		log.ErrorLevel: "#dc2626",
	} {
		styles.Levels[level] = styles.Levels[level].
			Width(5).
			MarginRight(1).
			Foreground(lipgloss.Color(color))
	}
	styles.Message = styles.Message.Width(20)
	styles.Key = styles.Key.Foreground(lipgloss.Color("#0ea5e9"))
	return styles
}

package web

//go:generate templ generate

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"callview/presenter"
)

type PageData struct {
	Title       string
	PublicKey   string
	AssistantID string
	Snapshot    presenter.Snapshot
}

// RenderString renders c into a string, for patches sent over the socket.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

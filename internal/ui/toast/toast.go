// Package toast renders the stack of transient notification pop-ups.
package toast

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/theme"
)

// MaxVisible is how many toasts are drawn at once; older ones wait their
// turn (or expire) off screen.
const MaxVisible = 3

// Render draws toasts oldest at the top, newest at the bottom, each at
// most width cells wide. It returns "" for an empty queue.
func Render(toasts []model.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	if len(toasts) > MaxVisible {
		toasts = toasts[len(toasts)-MaxVisible:]
	}
	if width < 20 {
		width = 20
	}

	boxes := make([]string, 0, len(toasts))
	for _, t := range toasts {
		boxes = append(boxes, renderOne(t, width))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

func renderOne(t model.Toast, width int) string {
	style := theme.ToastStyle(t.Category)
	inner := width - style.GetHorizontalFrameSize()

	icon := t.Icon
	if icon == "" {
		icon = model.FallbackIcon
	}
	title := theme.ToastTitleStyle(t.Category).Render(truncate(icon+" "+t.Title, inner))

	lines := []string{title}
	if body := strings.TrimSpace(t.Body); body != "" {
		lines = append(lines, truncate(body, inner))
	}
	if t.ActionURL != "" {
		lines = append(lines, theme.HelpStyle.Render("o open · x dismiss"))
	} else {
		lines = append(lines, theme.HelpStyle.Render("x dismiss"))
	}

	return style.Width(inner + style.GetHorizontalPadding()).Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most n cells, ending with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

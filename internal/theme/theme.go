package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/visadesk/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top header bar and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// AlertStyle is the status bar variant for transient error alerts.
var AlertStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// PanelStyle wraps a bordered content area.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// MutedStyle is used for secondary text such as timestamps.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// BadgeStyle renders the unread counter in the header.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorRed).
	Padding(0, 1)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CategoryColor returns the palette entry for a notification category.
func CategoryColor(c model.Category) lipgloss.AdaptiveColor {
	switch c {
	case model.CategoryBlue:
		return ColorBlue
	case model.CategoryGreen:
		return ColorGreen
	case model.CategoryRed:
		return ColorRed
	case model.CategoryYellow:
		return ColorYellow
	case model.CategoryOrange:
		return ColorOrange
	case model.CategoryPurple:
		return ColorMagenta
	default:
		return ColorGray
	}
}

// ToastStyle returns the bordered box a toast of category c is drawn in.
func ToastStyle(c model.Category) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CategoryColor(c)).
		Padding(0, 1)
}

// ToastTitleStyle returns the title style for a toast of category c.
func ToastTitleStyle(c model.Category) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CategoryColor(c))
}

// StatusStyle returns a color-coded style for an application status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.ApplicationDraft:
		return base.Foreground(ColorGray)
	case model.ApplicationInReview:
		return base.Foreground(ColorBlue)
	case model.ApplicationPendingDocuments:
		return base.Foreground(ColorYellow)
	case model.ApplicationApproved:
		return base.Foreground(ColorGreen)
	case model.ApplicationRejected:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// RoleStyle returns the header label style for a user role.
func RoleStyle(role model.Role) lipgloss.Style {
	base := HeaderStyle.Bold(false)

	switch role {
	case model.RoleAdmin:
		return base.Foreground(ColorYellow)
	case model.RoleAdvisor:
		return base.Foreground(ColorGreen)
	default:
		return base
	}
}

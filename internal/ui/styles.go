package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorFailure   = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorHighlight = lipgloss.Color("#1F2937")

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorPrimary).
			Padding(0, 1)

	StyleTab = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	StyleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorHighlight).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Background(ColorHighlight)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleTitle   = lipgloss.NewStyle().Bold(true)

	StyleFlash = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorFailure).
			Padding(0, 1)

	StyleMatch = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FCD34D")).
			Background(lipgloss.Color("#78350F"))

	StylePopup = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)

	StyleStatusBar = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)
)

// PrStateStyle colors a PR state label.
func PrStateStyle(state string) lipgloss.Style {
	switch state {
	case "open":
		return StyleSuccess
	case "merged":
		return StyleInfo
	case "closed":
		return StyleFailure
	}
	return StyleMuted
}

// RunIcon renders the status glyph for a CI run.
func RunIcon(status, conclusion string) string {
	switch status {
	case "queued":
		return StyleMuted.Render("o")
	case "in_progress":
		return StyleInfo.Render("*")
	}
	switch conclusion {
	case "success":
		return StyleSuccess.Render("V")
	case "failure", "timed_out":
		return StyleFailure.Render("X")
	case "cancelled", "skipped":
		return StyleWarning.Render("-")
	}
	return StyleMuted.Render("?")
}

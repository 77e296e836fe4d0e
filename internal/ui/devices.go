package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/camlight/internal/discovery"
)

// RenderDeviceCards renders one bordered card per discovered camera.
// Cards already present in the config are marked as configured.
func RenderDeviceCards(devices []*discovery.Device, configured map[string]string, width int) string {
	if len(devices) == 0 {
		warning := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		return "  " + warning.Render(WarningMarker+" No cameras found on your network") + "\n\n" +
			"  Troubleshooting:\n" +
			"    • Ensure the camera is powered on and on this network segment\n" +
			"    • Check that multicast (UDP 5353) is not blocked\n" +
			"    • Try a longer scan with --timeout\n"
	}

	cardWidth := width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}

	cards := make([]string, 0, len(devices))
	for _, d := range devices {
		var content strings.Builder

		name := d.Instance
		if name == "" {
			name = d.Hostname
		}
		content.WriteString(SuccessTitleStyle.Render(name))
		content.WriteString("\n\n")
		content.WriteString(fmt.Sprintf("Host:     %s\n", d.Hostname))
		content.WriteString(fmt.Sprintf("Address:  %s", d.Address()))

		border := PrimaryColor
		if alias, ok := configured[d.Address()]; ok {
			content.WriteString("\n")
			content.WriteString(fmt.Sprintf("Config:   %s", StatusWarnStyle.Render(alias)))
			border = SuccessColor
		}

		cards = append(cards, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 2).
			MarginLeft(2).
			Width(cardWidth).
			Render(content.String()))
	}
	return strings.Join(cards, "\n")
}

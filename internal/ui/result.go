package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/camlight/internal/lighting"
	"github.com/muurk/camlight/internal/rpc"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type            ResultType
	Title           string
	Details         []Param
	Error           error
	Troubleshooting []string
	Width           int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Param) *Result {
	return &Result{
		Type:    ResultSuccess,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box. Troubleshooting hints are
// taken from err when it is an rpc error.
func NewFailureResult(title string, err error) *Result {
	var tips []string
	if err != nil {
		tips = rpc.Troubleshooting(err)
	}
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: tips,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Param) *Result {
	return &Result{
		Type:    ResultWarning,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail line
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Param{Key: key, Value: value})
	return r
}

// Render returns the styled result box
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var (
		color lipgloss.Color
		title string
	)
	switch r.Type {
	case ResultFailure:
		color = ErrorColor
		title = ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, r.Title))
	case ResultWarning:
		color = WarningColor
		title = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, r.Title))
	default:
		color = SuccessColor
		title = SuccessTitleStyle.Render(fmt.Sprintf("   %s  SUCCESS  ─  %s", SuccessMarker, r.Title))
	}

	lines := []string{"", title, ""}

	for _, d := range r.Details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}

	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width), "")
	}

	return resultBoxStyle(color, width).Render(strings.Join(lines, "\n"))
}

func (r *Result) renderTroubleshootingBox(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}
	return TroubleshootingBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// CommandResult builds the box shown after a light command ran on device
func CommandResult(device, command string, res lighting.OperationResult) *Result {
	command = strings.TrimSpace(command)
	if res.Success {
		return NewSuccessResult("Light updated",
			Param{Key: "Device", Value: device},
			Param{Key: "Command", Value: command},
		)
	}

	r := NewFailureResult("Light command failed", fmt.Errorf("%s", res.Error))
	r.Details = []Param{
		{Key: "Device", Value: device},
		{Key: "Command", Value: command},
	}
	r.Troubleshooting = operationTroubleshooting(res.Error)
	return r
}

// LightingResult builds the box describing the current light state of device
func LightingResult(device string, state *lighting.LightingState) *Result {
	r := NewSuccessResult("Current lighting",
		Param{Key: "Device", Value: device},
		Param{Key: "Mode", Value: string(state.Mode)},
		Param{Key: "Brightness", Value: strconv.Itoa(state.Brightness) + "%"},
	)
	if state.ManualLight != nil {
		r.AddDetail("Manual light", strconv.Itoa(*state.ManualLight))
	}
	return r
}

// operationTroubleshooting maps a result error message to hints
func operationTroubleshooting(msg string) []string {
	switch {
	case msg == lighting.MsgLoginFailed || msg == lighting.MsgReloginFailed:
		return []string{
			"Check the username and password for this device",
			"Repeated failures can lock the account for several minutes",
		}
	case msg == lighting.MsgSessionError:
		return []string{
			"The camera dropped the session; run the command again",
		}
	case msg == lighting.MsgGetConfigFailed || msg == lighting.MsgSetConfigFailed:
		return []string{
			"The firmware may not support the Lighting_V2 configuration",
			"Run with --log-level debug to see the raw responses",
		}
	case strings.HasPrefix(msg, "HTTP "):
		return []string{
			"The camera answered with an HTTP error",
			"Verify the address in your camlight config points at the camera web UI",
		}
	default:
		return nil
	}
}

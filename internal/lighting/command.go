package lighting

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is the value of the Lighting_V2 "Mode" field
type Mode string

const (
	ModeOff    Mode = "Off"
	ModeManual Mode = "Manual"
	ModeAuto   Mode = "Auto"
)

// FullBrightness is used for "on" and for "auto" without a usable level
const FullBrightness = 100

// Command is a parsed light command
type Command struct {
	Mode       Mode
	Brightness int
}

func (c Command) String() string {
	return fmt.Sprintf("%s %d", c.Mode, c.Brightness)
}

// ParseCommand maps a raw command string onto a Command. It never fails:
//
//	"42"                -> Manual 42
//	"on"                -> Manual 100
//	"auto", "auto 60"   -> Auto 100, Auto 60
//	"off", "", anything -> Off 0
//
// Matching is case-insensitive and ignores surrounding whitespace. Brightness
// is passed through as given and is not clamped to 0-100.
func ParseCommand(raw string) Command {
	cmd := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case isDigits(cmd):
		return Command{Mode: ModeManual, Brightness: parseDigits(cmd)}
	case cmd == "on":
		return Command{Mode: ModeManual, Brightness: FullBrightness}
	case strings.HasPrefix(cmd, "auto"):
		return Command{Mode: ModeAuto, Brightness: autoBrightness(cmd)}
	default:
		return Command{Mode: ModeOff, Brightness: 0}
	}
}

// autoBrightness reads the level from the second word of an "auto" command.
// A missing, non-numeric or zero level means full brightness.
func autoBrightness(cmd string) int {
	fields := strings.Fields(cmd)
	if len(fields) < 2 {
		return FullBrightness
	}
	n, ok := leadingInt(fields[1])
	if !ok || n == 0 {
		return FullBrightness
	}
	return n
}

// leadingInt parses an optionally signed run of digits at the start of s,
// ignoring anything after it ("60%" is 60).
func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	return parseDigits(s[:end]), true
}

// parseDigits converts a validated digit string, saturating on overflow
func parseDigits(s string) int {
	n, _ := strconv.ParseInt(s, 10, 0)
	return int(n)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

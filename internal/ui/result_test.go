package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/muurk/camlight/internal/lighting"
	"github.com/muurk/camlight/internal/rpc"
)

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name     string
		result   *Result
		contains []string
	}{
		{
			name:     "success with details",
			result:   NewSuccessResult("Light updated", Param{"Device", "garage"}, Param{"Command", "auto 60"}),
			contains: []string{"SUCCESS", "Light updated", "Device:", "garage", "auto 60"},
		},
		{
			name:     "failure with error",
			result:   NewFailureResult("Light command failed", errors.New("Failed to set config")),
			contains: []string{"FAILED", "Light command failed", "Error: Failed to set config"},
		},
		{
			name:     "warning",
			result:   NewWarningResult("No cameras"),
			contains: []string{"WARNING", "No cameras"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Render() missing %q in:\n%s", want, out)
				}
			}
		})
	}
}

func TestResult_DetailOrder(t *testing.T) {
	out := NewSuccessResult("ok").
		AddDetail("First", "1").
		AddDetail("Second", "2").
		AddDetail("Third", "3").
		SetWidth(80).
		Render()

	first := strings.Index(out, "First")
	second := strings.Index(out, "Second")
	third := strings.Index(out, "Third")
	if first < 0 || !(first < second && second < third) {
		t.Errorf("details out of order: %d %d %d", first, second, third)
	}
}

func TestNewFailureResult_TroubleshootingFromRPCError(t *testing.T) {
	err := rpc.NewAuthError("challenge answer rejected")
	r := NewFailureResult("Login failed", err)

	if len(r.Troubleshooting) == 0 {
		t.Fatal("expected troubleshooting hints for an auth error")
	}
	out := r.SetWidth(80).Render()
	if !strings.Contains(out, "Troubleshooting:") {
		t.Errorf("Render() missing troubleshooting box:\n%s", out)
	}

	plain := NewFailureResult("oops", errors.New("plain"))
	if plain.Troubleshooting != nil {
		t.Errorf("Troubleshooting = %v, want nil for a plain error", plain.Troubleshooting)
	}
}

func TestCommandResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := CommandResult("garage", " auto 60 ", lighting.Succeeded())
		if r.Type != ResultSuccess {
			t.Fatalf("Type = %v, want success", r.Type)
		}
		if r.Details[1].Value != "auto 60" {
			t.Errorf("Command detail = %q, want trimmed command", r.Details[1].Value)
		}
	})

	tests := []struct {
		message  string
		wantTips bool
	}{
		{lighting.MsgLoginFailed, true},
		{lighting.MsgReloginFailed, true},
		{lighting.MsgSessionError, true},
		{lighting.MsgGetConfigFailed, true},
		{lighting.MsgSetConfigFailed, true},
		{"HTTP 500", true},
		{"Invalid params", false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			r := CommandResult("garage", "off", lighting.Failed(tt.message))
			if r.Type != ResultFailure {
				t.Fatalf("Type = %v, want failure", r.Type)
			}
			if r.Error == nil || r.Error.Error() != tt.message {
				t.Errorf("Error = %v, want %q", r.Error, tt.message)
			}
			if got := len(r.Troubleshooting) > 0; got != tt.wantTips {
				t.Errorf("has troubleshooting = %v, want %v", got, tt.wantTips)
			}
		})
	}
}

func TestLightingResult(t *testing.T) {
	level := 40
	r := LightingResult("garage", &lighting.LightingState{
		Mode:        lighting.ModeManual,
		Brightness:  60,
		ManualLight: &level,
	})

	want := []Param{
		{"Device", "garage"},
		{"Mode", "Manual"},
		{"Brightness", "60%"},
		{"Manual light", "40"},
	}
	if len(r.Details) != len(want) {
		t.Fatalf("Details = %v, want %v", r.Details, want)
	}
	for i := range want {
		if r.Details[i] != want[i] {
			t.Errorf("Details[%d] = %v, want %v", i, r.Details[i], want[i])
		}
	}

	noManual := LightingResult("garage", &lighting.LightingState{Mode: lighting.ModeOff})
	if len(noManual.Details) != 3 {
		t.Errorf("Details = %v, want no manual light entry", noManual.Details)
	}
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("Set light", "camlight set garage auto",
		Param{"Device", "garage"},
		Param{"Address", "192.168.1.108"},
	).SetWidth(80).Render()

	for _, want := range []string{"SET LIGHT", "camlight set garage auto", "Device:", "192.168.1.108"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "Device:") > strings.Index(out, "Address:") {
		t.Error("params not rendered in the given order")
	}
}

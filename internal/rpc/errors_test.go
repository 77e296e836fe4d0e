package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError_Timeout(t *testing.T) {
	err := &url.Error{
		Op:  "Post",
		URL: "http://192.168.1.108/RPC2",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: &timeoutError{}},
	}

	rpcErr := ClassifyNetworkError(err)
	if rpcErr.Type != ErrTypeTimeout {
		t.Errorf("Expected error type %v, got %v", ErrTypeTimeout, rpcErr.Type)
	}
}

func TestClassifyNetworkError_DeadlineExceeded(t *testing.T) {
	rpcErr := ClassifyNetworkError(fmt.Errorf("post: %w", context.DeadlineExceeded))
	if rpcErr.Type != ErrTypeTimeout {
		t.Errorf("Expected error type %v, got %v", ErrTypeTimeout, rpcErr.Type)
	}
}

func TestClassifyNetworkError_ConnectionRefused(t *testing.T) {
	err := &url.Error{
		Op:  "Post",
		URL: "http://192.168.1.108/RPC2",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
	}

	rpcErr := ClassifyNetworkError(err)
	if rpcErr.Type != ErrTypeConnectionRefused {
		t.Errorf("Expected error type %v, got %v", ErrTypeConnectionRefused, rpcErr.Type)
	}
	if !IsNetworkError(rpcErr) {
		t.Error("connection refused should be a network error")
	}
}

func TestClassifyNetworkError_DNS(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "camera.invalid", IsNotFound: true}

	rpcErr := ClassifyNetworkError(err)
	if rpcErr.Type != ErrTypeDNS {
		t.Errorf("Expected error type %v, got %v", ErrTypeDNS, rpcErr.Type)
	}
	if !strings.Contains(rpcErr.Message, "camera.invalid") {
		t.Errorf("message should name the host, got %q", rpcErr.Message)
	}
}

func TestClassifyNetworkError_HostUnreachable(t *testing.T) {
	err := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH}

	rpcErr := ClassifyNetworkError(err)
	if rpcErr.Type != ErrTypeNetwork || rpcErr.Message != "host unreachable" {
		t.Errorf("got %v / %q", rpcErr.Type, rpcErr.Message)
	}
}

func TestClassifyNetworkError_Nil(t *testing.T) {
	if ClassifyNetworkError(nil) != nil {
		t.Error("nil error should classify to nil")
	}
}

func TestNewNetworkError(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	err := NewNetworkError(MethodLogin, "request failed", cause)

	if err.Method != MethodLogin {
		t.Errorf("Method = %s", err.Method)
	}
	if err.Message != "request failed: device refused connection" {
		t.Errorf("Message = %q", err.Message)
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Error("error chain should reach ECONNREFUSED")
	}
}

func TestNewFaultError(t *testing.T) {
	tests := []struct {
		fault *Fault
		want  ErrorType
	}{
		{&Fault{Code: CodeNoSuchSession, Message: "No such session"}, ErrTypeSessionInvalid},
		{&Fault{Code: CodeInvalidSession, Message: "Invalid session"}, ErrTypeSessionInvalid},
		{&Fault{Code: CodeDeviceBusy, Message: "busy"}, ErrTypeDeviceBusy},
		{&Fault{Code: 268632071, Message: "Password is wrong"}, ErrTypeProtocol},
		{nil, ErrTypeProtocol},
	}

	for _, tt := range tests {
		err := NewFaultError(MethodGetConfig, tt.fault)
		if err.Type != tt.want {
			t.Errorf("NewFaultError(%+v).Type = %v, want %v", tt.fault, err.Type, tt.want)
		}
	}

	if !IsSessionInvalid(NewFaultError(MethodGetConfig, &Fault{Code: CodeInvalidSession})) {
		t.Error("IsSessionInvalid should match")
	}
	if !IsBusy(NewFaultError(MethodLogin, &Fault{Code: CodeDeviceBusy})) {
		t.Error("IsBusy should match")
	}
}

func TestIsHelpers_WrappedErrors(t *testing.T) {
	err := fmt.Errorf("set light: %w", NewAuthError("challenge rejected"))
	if !IsAuthError(err) {
		t.Error("IsAuthError should see through wrapping")
	}
	if IsNetworkError(err) {
		t.Error("auth error is not a network error")
	}
	if IsAuthError(errors.New("plain")) {
		t.Error("plain errors match nothing")
	}
}

func TestRPCError_Error(t *testing.T) {
	err := NewHTTPError(MethodSetConfig, 500)
	if got := err.Error(); got != "HTTP Error [configManager.setConfig]: HTTP 500" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := NewParseError("bad body", errors.New("unexpected EOF"))
	if got := wrapped.Error(); got != "Parse Error: bad body (caused by: unexpected EOF)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestShortMessage(t *testing.T) {
	if got := ShortMessage(NewHTTPError(MethodGetConfig, 503)); got != "Camera error (HTTP 503)" {
		t.Errorf("ShortMessage() = %q", got)
	}
	if got := ShortMessage(NewAuthError("x")); got != "Authentication failed - check credentials" {
		t.Errorf("ShortMessage() = %q", got)
	}
	if got := ShortMessage(errors.New("boom")); got != "boom" {
		t.Errorf("ShortMessage() = %q", got)
	}
}

func TestTroubleshooting(t *testing.T) {
	if len(Troubleshooting(NewAuthError("x"))) == 0 {
		t.Error("auth errors should have hints")
	}
	if Troubleshooting(errors.New("plain")) != nil {
		t.Error("plain errors have no hints")
	}
}

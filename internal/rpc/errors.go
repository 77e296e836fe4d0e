package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (reset, unreachable, ...)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the call did not complete within its bound
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the device refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-200 HTTP status
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeProtocol indicates a well-formed response with an unexpected shape
	ErrTypeProtocol
	// ErrTypeAuth indicates rejected credentials or an unsatisfied challenge
	ErrTypeAuth
	// ErrTypeSessionInvalid indicates the device dropped the session mid-operation
	ErrTypeSessionInvalid
	// ErrTypeDeviceBusy indicates the device reported transient unavailability
	ErrTypeDeviceBusy
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeSessionInvalid:
		return "Session Invalid"
	case ErrTypeDeviceBusy:
		return "Device Busy"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// RPCError represents an error that occurred while talking to the device
type RPCError struct {
	Type       ErrorType // Category of error
	Method     string    // RPC method being called (if known)
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (ErrTypeHTTP)
	Code       int       // Device fault code (if any)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *RPCError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	if e.Method != "" {
		b.WriteString(" [" + e.Method + "]")
	}
	b.WriteString(": " + e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *RPCError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport failure onto an RPCError
func ClassifyNetworkError(err error) *RPCError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &RPCError{Type: ErrTypeTimeout, Message: "request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &RPCError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &RPCError{Type: ErrTypeConnectionRefused, Message: "device refused connection", Err: err}
	}
	if errors.Is(err, syscall.EHOSTUNREACH) {
		return &RPCError{Type: ErrTypeNetwork, Message: "host unreachable", Err: err}
	}
	if errors.Is(err, syscall.ENETUNREACH) {
		return &RPCError{Type: ErrTypeNetwork, Message: "network unreachable", Err: err}
	}

	return &RPCError{Type: ErrTypeNetwork, Message: "network error occurred", Err: err}
}

// NewNetworkError creates a transport error with automatic classification.
// The classified message is kept and prefixed with message.
func NewNetworkError(method, message string, err error) *RPCError {
	classified := ClassifyNetworkError(err)
	classified.Method = method
	classified.Message = message + ": " + classified.Message
	return classified
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(method string, statusCode int) *RPCError {
	return &RPCError{
		Type:       ErrTypeHTTP,
		Method:     method,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		StatusCode: statusCode,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *RPCError {
	return &RPCError{Type: ErrTypeParse, Message: message, Err: err}
}

// NewProtocolError creates an unexpected-response error
func NewProtocolError(method, message string, err error) *RPCError {
	return &RPCError{Type: ErrTypeProtocol, Method: method, Message: message, Err: err}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *RPCError {
	return &RPCError{Type: ErrTypeAuth, Method: MethodLogin, Message: message}
}

// NewFaultError converts a device fault into an RPCError, recognising the
// reserved busy and invalid-session codes.
func NewFaultError(method string, fault *Fault) *RPCError {
	if fault == nil {
		return NewProtocolError(method, "call failed without error details", nil)
	}
	errType := ErrTypeProtocol
	switch {
	case fault.IsSessionInvalid():
		errType = ErrTypeSessionInvalid
	case fault.IsBusy():
		errType = ErrTypeDeviceBusy
	}
	return &RPCError{
		Type:    errType,
		Method:  method,
		Message: fmt.Sprintf("device error %d: %s", fault.Code, fault.Message),
		Code:    fault.Code,
	}
}

func errorType(err error) (ErrorType, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Type, true
	}
	return 0, false
}

func isType(err error, types ...ErrorType) bool {
	et, ok := errorType(err)
	if !ok {
		return false
	}
	for _, t := range types {
		if et == t {
			return true
		}
	}
	return false
}

// IsNetworkError checks if an error is a transport error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	return isType(err, ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS)
}

// IsTimeout checks if an error is a timeout
func IsTimeout(err error) bool { return isType(err, ErrTypeTimeout) }

// IsHTTPError checks if an error is an HTTP status error
func IsHTTPError(err error) bool { return isType(err, ErrTypeHTTP) }

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool { return isType(err, ErrTypeParse) }

// IsProtocolError checks if an error is an unexpected-response error
func IsProtocolError(err error) bool { return isType(err, ErrTypeProtocol) }

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool { return isType(err, ErrTypeAuth) }

// IsSessionInvalid checks if the device rejected the session
func IsSessionInvalid(err error) bool { return isType(err, ErrTypeSessionInvalid) }

// IsBusy checks if the device reported itself busy
func IsBusy(err error) bool { return isType(err, ErrTypeDeviceBusy) }

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return err.Error()
	}

	switch rpcErr.Type {
	case ErrTypeTimeout:
		return "Camera not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Camera refused connection"
	case ErrTypeDNS:
		return "Cannot resolve camera hostname"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Camera error (HTTP %d)", rpcErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse camera response"
	case ErrTypeAuth:
		return "Authentication failed - check credentials"
	case ErrTypeSessionInvalid:
		return "Camera rejected the session"
	case ErrTypeDeviceBusy:
		return "Camera busy - try again shortly"
	default:
		return rpcErr.Message
	}
}

// Troubleshooting returns hints for an error, or nil when none apply
func Troubleshooting(err error) []string {
	et, ok := errorType(err)
	if !ok {
		return nil
	}

	switch et {
	case ErrTypeTimeout, ErrTypeNetwork:
		return []string{
			"Check that the camera is powered on and reachable",
			"Verify the address in your camlight config",
			"Try opening the camera web UI from this machine",
		}
	case ErrTypeConnectionRefused:
		return []string{
			"The camera HTTP service may be disabled",
			"Verify the port in the device address (default 80)",
		}
	case ErrTypeDNS:
		return []string{
			"Use the camera IP address instead of a hostname",
			"Run 'camlight scan' to find cameras on the local network",
		}
	case ErrTypeAuth:
		return []string{
			"Check the username and password for this device",
			"Repeated failures can lock the account for several minutes",
		}
	case ErrTypeParse, ErrTypeProtocol:
		return []string{
			"The firmware may not support the Lighting_V2 configuration",
			"Run with --log-level debug to see the raw responses",
		}
	default:
		return nil
	}
}

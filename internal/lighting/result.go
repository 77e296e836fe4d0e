package lighting

// Error messages carried by failed results
const (
	MsgSessionError     = "Session error"
	MsgGetConfigFailed  = "Failed to get config"
	MsgSetConfigFailed  = "Failed to set config"
	MsgLoginFailed      = "failed to login"
	MsgReloginFailed    = "Failed to re-login"
	msgHTTPStatusFormat = "HTTP %d"
)

// OperationResult is the outcome of a light command.
// It encodes as {"result": bool, "error"?: string, "retry"?: bool}.
type OperationResult struct {
	Success        bool   `json:"result"`
	Error          string `json:"error,omitempty"`
	RetryRequested bool   `json:"retry,omitempty"`
}

// Succeeded returns a successful result
func Succeeded() OperationResult {
	return OperationResult{Success: true}
}

// Failed returns a terminal failure with message
func Failed(message string) OperationResult {
	return OperationResult{Error: message}
}

// sessionRejected asks the caller to log in again and repeat the command
func sessionRejected() OperationResult {
	return OperationResult{Error: MsgSessionError, RetryRequested: true}
}

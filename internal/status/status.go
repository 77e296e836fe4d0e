// Package status carries short progress labels from a command handler to
// whatever displays them: a log, a terminal spinner or a retained MQTT topic.
package status

import (
	"go.uber.org/zap"
)

// Level is the severity of a status update
type Level string

const (
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// Update is a single status indicator
type Update struct {
	Level Level  `json:"level"`
	Label string `json:"label"`
}

// Reporter receives status updates. Implementations must not block for long;
// they are called inline while a command is being handled.
type Reporter interface {
	Report(u Update)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(u Update)

// Report calls f(u)
func (f ReporterFunc) Report(u Update) {
	f(u)
}

// Nop discards every update
var Nop Reporter = ReporterFunc(func(Update) {})

// NewLogReporter returns a reporter writing each update to log at its level
func NewLogReporter(log *zap.Logger) Reporter {
	return ReporterFunc(func(u Update) {
		switch u.Level {
		case Error:
			log.Error("Status", zap.String("label", u.Label))
		case Warn:
			log.Warn("Status", zap.String("label", u.Label))
		default:
			log.Info("Status", zap.String("label", u.Label))
		}
	})
}

// Multi fans every update out to each non-nil reporter in order
func Multi(reporters ...Reporter) Reporter {
	var list []Reporter
	for _, r := range reporters {
		if r != nil {
			list = append(list, r)
		}
	}
	return ReporterFunc(func(u Update) {
		for _, r := range list {
			r.Report(u)
		}
	})
}

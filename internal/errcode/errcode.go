// Package errcode defines the error taxonomy shared by the button and LED
// subsystems.
package errcode

import "errors"

// Code is a stable error identifier. It is comparable and implements error,
// so callers can match it with errors.Is.
type Code string

func (c Code) Error() string { return string(c) }

const (
	InvalidArgument Code = "invalid_argument"
	NotReady        Code = "not_ready"
	ConfigFailed    Code = "config_failed"
	Unsupported     Code = "unsupported"
)

// InitError reports a channel whose hardware bring-up failed. It is fatal to
// the subsystem being initialised.
type InitError struct {
	Channel string
	Op      string
	Err     error
}

func (e *InitError) Error() string {
	msg := "init " + e.Channel
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InitError) Unwrap() error { return e.Err }

// Init builds an InitError for channel.
func Init(channel, op string, err error) error {
	return &InitError{Channel: channel, Op: op, Err: err}
}

// Of extracts the Code carried by err. A nil error has no code; errors
// without one map to ConfigFailed when they are InitErrors and "" otherwise.
func Of(err error) Code {
	if err == nil {
		return ""
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	var ie *InitError
	if errors.As(err, &ie) {
		return ConfigFailed
	}
	return ""
}

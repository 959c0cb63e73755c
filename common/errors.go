package common

import "errors"

// Sentinel errors shared across packages.
// These can be checked with errors.Is() for proper error handling.
var (
	// Tool errors.
	ErrTimeout          = errors.New("operation timed out")
	ErrToolNotInstalled = errors.New("nordvpn is not installed")
	ErrUnsupportedTool  = errors.New("nordvpn version is not supported")

	// Session errors.
	ErrNotLoggedIn = errors.New("not logged in")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")

	// Usage errors.
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}

package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"time"

	"github.com/brevdev/mixpanel-cli/pkg/cmd/version"
	"github.com/brevdev/mixpanel-cli/pkg/config"
	"github.com/brevdev/mixpanel-cli/pkg/featureflag"
	"github.com/getsentry/sentry-go"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

type MixpanelError interface {
	// Error returns a user-facing string explaining the error
	Error() string

	// Directive returns a user-facing string explaining how to overcome the error
	Directive() string
}

type ErrorReporter interface {
	Setup() func()
	Flush()
	ReportMessage(string) string
	ReportError(error) string
	AddTag(key string, value string)
}

func GetDefaultErrorReporter() ErrorReporter {
	return SentryErrorReporter{}
}

type SentryErrorReporter struct{}

var _ ErrorReporter = SentryErrorReporter{}

func (s SentryErrorReporter) Setup() func() {
	dsn := config.GlobalConfig.GetSentryURL()
	if !featureflag.IsDev() && dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     dsn,
			Release: version.Version,
		})
		if err != nil {
			fmt.Println(err)
		}
	}
	return func() {
		err := recover()
		if err != nil {
			sentry.CurrentHub().Recover(err)
			sentry.Flush(time.Second * 5)
			panic(err)
		}
		sentry.Flush(2 * time.Second)
	}
}

func (s SentryErrorReporter) Flush() {
	sentry.Flush(time.Second * 2)
}

func (s SentryErrorReporter) ReportMessage(msg string) string {
	event := sentry.CaptureMessage(msg)
	if event != nil {
		return string(*event)
	}
	return ""
}

func (s SentryErrorReporter) ReportError(e error) string {
	event := sentry.CaptureException(e)
	if event != nil {
		return string(*event)
	}
	return ""
}

func (s SentryErrorReporter) AddTag(key string, value string) {
	scope := sentry.CurrentHub().Scope()
	scope.SetTag(key, value)
}

type ValidationError struct {
	Message string
}

func NewValidationError(message string) ValidationError {
	return ValidationError{Message: message}
}

var _ error = ValidationError{}

func (v ValidationError) Error() string {
	return v.Message
}

// UnsupportedCommandError is returned for any command name outside the
// supported set. Nothing is encoded or sent.
type UnsupportedCommandError struct {
	Command string
}

var _ MixpanelError = &UnsupportedCommandError{}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("unsupported command %q", e.Command)
}

func (e *UnsupportedCommandError) Directive() string {
	return "run `mixpanel commands` to list supported commands"
}

// MissingTokenError is returned when a command needs a project token and
// neither the request nor the client carries one.
type MissingTokenError struct {
	Command string
}

var _ MixpanelError = &MissingTokenError{}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("project token required for command %q", e.Command)
}

func (e *MissingTokenError) Directive() string {
	return "pass --token or set MIXPANEL_TOKEN"
}

type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("payload encoding failed: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// TransportError covers both a failed round trip and a non-2xx answer from
// the collector. StatusCode is 0 when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

var _ MixpanelError = &TransportError{}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s returned status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Directive() string {
	return NetworkErrorMessage
}

func WrapAndTrace(err error, messages ...string) error {
	message := ""
	for _, m := range messages {
		message += fmt.Sprintf(" %s", m)
	}
	return errors.Wrap(err, MakeErrorMessage(message))
}

func MakeErrorMessage(message string) string {
	_, fn, line, _ := runtime.Caller(2)
	return fmt.Sprintf("[error] %s:%d %s\n\t", fn, line, message)
}

var NetworkErrorMessage = "possible internet connection problem"

func New(message string) error {
	return stderrors.New(message)
}

func Errorf(format string, a ...interface{}) error {
	return fmt.Errorf(format, a...) //nolint:goerr113 // thin wrapper
}

func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Unwraps returns the members of a joined error, nil otherwise.
func Unwraps(err error) []error {
	u, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

// Root follows single-error unwrapping to the innermost error.
func Root(err error) error {
	for {
		next := Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// CombineByString flattens a joined error and drops members with identical messages.
func CombineByString(err error) error {
	if err == nil {
		return nil
	}
	var combined *multierror.Error
	seen := map[string]bool{}
	var walk func(error)
	walk = func(e error) {
		if members := Unwraps(e); members != nil {
			for _, m := range members {
				walk(m)
			}
			return
		}
		if seen[e.Error()] {
			return
		}
		seen[e.Error()] = true
		combined = multierror.Append(combined, e)
	}
	walk(err)
	if combined == nil {
		return nil
	}
	if len(combined.Errors) == 1 {
		return combined.Errors[0]
	}
	return combined.ErrorOrNil()
}

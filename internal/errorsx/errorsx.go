// Package errorsx defines the error taxonomy used across the pipeline:
// parse errors, I/O errors, child-process errors, configuration errors,
// and invariant violations.
package errorsx

import "fmt"

// Kind classifies an error per spec §7's taxonomy.
type Kind int

const (
	KindParse Kind = iota
	KindIO
	KindChildProcess
	KindConfig
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindIO:
		return "io"
	case KindChildProcess:
		return "child_process"
	case KindConfig:
		return "config"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// CoreError is the general-purpose error type for parse/IO/config
// failures. It wraps an underlying cause when one exists.
type CoreError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Cause }

func NewParseError(message string, cause error) *CoreError {
	return &CoreError{Kind: KindParse, Message: message, Cause: cause}
}

func NewIOError(message string, cause error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Cause: cause}
}

func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message}
}

// ChildProcessStage identifies which part of a child process's lifecycle
// failed.
type ChildProcessStage int

const (
	StageStart ChildProcessStage = iota
	StageWait
	StageNonZeroExit
)

func (s ChildProcessStage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageWait:
		return "wait"
	case StageNonZeroExit:
		return "non-zero exit"
	default:
		return "unknown"
	}
}

// ChildProcessError reports a failure spawning, waiting on, or receiving a
// non-zero exit from one of the external collaborators (decoder, detector,
// encoder, VMAF scorer).
type ChildProcessError struct {
	Command string
	Stage   ChildProcessStage
	Cause   error
}

func (e *ChildProcessError) Error() string {
	return fmt.Sprintf("child process %q failed at %s: %v", e.Command, e.Stage, e.Cause)
}

func (e *ChildProcessError) Unwrap() error { return e.Cause }

func NewChildProcessError(command string, stage ChildProcessStage, cause error) *ChildProcessError {
	return &ChildProcessError{Command: command, Stage: stage, Cause: cause}
}

// IsKind reports whether err (or any error it wraps) is a *CoreError of
// kind k.
func IsKind(err error, k Kind) bool {
	var ce *CoreError
	if as(err, &ce) {
		return ce.Kind == k
	}
	return false
}

// as is a tiny errors.As shim kept local to avoid importing the stdlib
// errors package purely for this helper.
func as(err error, target **CoreError) bool {
	for err != nil {
		if ce, ok := err.(*CoreError); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// InvariantViolation represents a programming-error condition (§7): a
// frame requested before the window, or a mismatched returned frame. These
// are bugs and must abort the process; callers panic with this value
// rather than returning it as a normal error.
type InvariantViolation struct {
	Message string
}

func (e InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Message)
}

// Fatal panics with an InvariantViolation carrying message.
func Fatal(message string) {
	panic(InvariantViolation{Message: message})
}

package core

import (
	"errors"
	"fmt"

	"github.com/foldrun/timefold/internal/timeline"
)

// ErrorCode categorizes engine failures per spec §7's error taxonomy.
type ErrorCode string

const (
	// CodeSetupFailure: the rewriter or VM instantiation failed at setup.
	CodeSetupFailure ErrorCode = "SETUP_FAILURE"
	// CodeRewindFailure: VM reinstantiation during a MemoryGrow undo
	// failed. Fatal — the engine is marked poisoned.
	CodeRewindFailure ErrorCode = "REWIND_FAILURE"
	// CodeGuestTrap: a guest export trapped during a normal, replayed,
	// or transient invocation.
	CodeGuestTrap ErrorCode = "GUEST_TRAP"
	// CodeMissingExport: the named function does not exist on the VM.
	CodeMissingExport ErrorCode = "MISSING_EXPORT"
	// CodeOutOfOrder: a (time, player_id) pair was seen with a lower
	// offset than one already accepted for that pair.
	CodeOutOfOrder ErrorCode = "OUT_OF_ORDER_INSERT"
	// CodePoisoned: the engine suffered a CodeRewindFailure and now
	// rejects all further operations.
	CodePoisoned ErrorCode = "ENGINE_POISONED"
	// CodeReplayBudgetExceeded: a single call_at would replay more Call
	// Log entries than the configured ReplayBudget permits.
	CodeReplayBudgetExceeded ErrorCode = "REPLAY_BUDGET_EXCEEDED"
)

// EngineError is the structured error type returned by every core.Engine
// operation that fails for a reason spec §7 names.
type EngineError struct {
	Code      ErrorCode
	Message   string
	Name      string
	Timestamp *timeline.Timestamp
}

func (e *EngineError) Error() string {
	if e.Timestamp != nil && e.Name != "" {
		return fmt.Sprintf("%s: %s (call=%s, ts=%s)", e.Code, e.Message, e.Name, e.Timestamp)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (call=%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *EngineError {
	return &EngineError{Code: code, Message: message}
}

func newCallError(code ErrorCode, message, name string, ts timeline.Timestamp) *EngineError {
	return &EngineError{Code: code, Message: message, Name: name, Timestamp: &ts}
}

func codeIs(err error, code ErrorCode) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// IsSetupFailure reports whether err is a CodeSetupFailure EngineError.
func IsSetupFailure(err error) bool { return codeIs(err, CodeSetupFailure) }

// IsRewindFailure reports whether err is a CodeRewindFailure EngineError.
func IsRewindFailure(err error) bool { return codeIs(err, CodeRewindFailure) }

// IsGuestTrap reports whether err is a CodeGuestTrap EngineError.
func IsGuestTrap(err error) bool { return codeIs(err, CodeGuestTrap) }

// IsMissingExport reports whether err is a CodeMissingExport EngineError.
func IsMissingExport(err error) bool { return codeIs(err, CodeMissingExport) }

// IsOutOfOrder reports whether err is a CodeOutOfOrder EngineError.
func IsOutOfOrder(err error) bool { return codeIs(err, CodeOutOfOrder) }

// IsPoisoned reports whether err is a CodePoisoned EngineError.
func IsPoisoned(err error) bool { return codeIs(err, CodePoisoned) }

// IsReplayBudgetExceeded reports whether err is a
// CodeReplayBudgetExceeded EngineError.
func IsReplayBudgetExceeded(err error) bool { return codeIs(err, CodeReplayBudgetExceeded) }

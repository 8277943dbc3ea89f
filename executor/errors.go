package executor

import (
	"fmt"

	"github.com/meridian-network/meridian/common"
)

// TrapCode names the reason a wasm instance trapped.
type TrapCode uint8

const (
	TrapUnreachable TrapCode = iota
	TrapMemoryOutOfBounds
	TrapTableOutOfBounds
	TrapIndirectCallNull
	TrapSignatureMismatch
	TrapIntegerOverflow
	TrapDivisionByZero
	TrapStackOverflow
)

func (t TrapCode) String() string {
	switch t {
	case TrapUnreachable:
		return "unreachable"
	case TrapMemoryOutOfBounds:
		return "memory out of bounds"
	case TrapTableOutOfBounds:
		return "table out of bounds"
	case TrapIndirectCallNull:
		return "indirect call to null"
	case TrapSignatureMismatch:
		return "signature mismatch"
	case TrapIntegerOverflow:
		return "integer overflow"
	case TrapDivisionByZero:
		return "division by zero"
	case TrapStackOverflow:
		return "stack overflow"
	default:
		return fmt.Sprintf("trap(%d)", uint8(t))
	}
}

// HostErrorKind is the callee-observable failure class of an execution.
// The numeric values are stable wire codes, 0 is reserved for success.
type HostErrorKind uint8

const (
	HostErrorReverted    HostErrorKind = 1
	HostErrorTrapped     HostErrorKind = 2
	HostErrorGasDepleted HostErrorKind = 3
	HostErrorNotCallable HostErrorKind = 4
)

// HostError is the failure of an execution as its caller observes it.
// Everything else - storage failures, codec failures, invariant
// violations - is an internal error and travels as a plain Go error, never
// as a HostError.
type HostError struct {
	Kind HostErrorKind
	Trap TrapCode // set for HostErrorTrapped
}

func (e *HostError) Error() string {
	switch e.Kind {
	case HostErrorReverted:
		return "callee reverted"
	case HostErrorTrapped:
		return fmt.Sprintf("callee trapped: %s", e.Trap)
	case HostErrorGasDepleted:
		return "callee gas depleted"
	case HostErrorNotCallable:
		return "not callable"
	default:
		return fmt.Sprintf("host error %d", e.Kind)
	}
}

// Code is the stable u32 form of the error.
func (e *HostError) Code() uint32 {
	return uint32(e.Kind)
}

func reverted() *HostError {
	return &HostError{Kind: HostErrorReverted}
}

func trapped(code TrapCode) *HostError {
	return &HostError{Kind: HostErrorTrapped, Trap: code}
}

func gasDepleted() *HostError {
	return &HostError{Kind: HostErrorGasDepleted}
}

func notCallable() *HostError {
	return &HostError{Kind: HostErrorNotCallable}
}

// HostResultCode is the u32 result of a host function call, 0 is success.
type HostResultCode uint32

const (
	HostResultSuccess HostResultCode = iota
	HostResultNotFound
	HostResultInvalidData
	HostResultInvalidInput
	HostResultTopicTooLong
	HostResultTooManyTopics
	HostResultPayloadTooLong
	HostResultMessageTopicFull
	HostResultMaxMessagesPerBlockExceeded
	HostResultInternal
)

// ErrStackMismatch is reported when an execution frame is popped that does
// not match the frame pushed for it. This is an internal invariant
// violation, not a callee failure.
const ErrStackMismatch = common.ConstError("execution stack mismatch")

package executor

import (
	"encoding/binary"
	"fmt"

	"github.com/meridian-network/meridian/types"
)

// LegacyOutcomeKind is the terminal state of a first-generation execution.
type LegacyOutcomeKind uint8

const (
	LegacyCompleted LegacyOutcomeKind = iota
	LegacyReverted
	LegacyOutOfGas
	LegacyTrapped
)

// LegacyOutcome is the raw result of a first-generation execution.
// RevertCode is only meaningful for LegacyReverted, Trap for LegacyTrapped.
type LegacyOutcome struct {
	Kind       LegacyOutcomeKind
	Output     []byte
	RevertCode uint32
	Trap       TrapCode
	GasSpent   types.Gas
}

// LegacyEngine runs first-generation contracts. Implementations are safe
// for concurrent use.
type LegacyEngine interface {
	Execute(context *Context, bytecode []byte, entryPoint string, input []byte) (LegacyOutcome, error)
}

// mapLegacyOutcome translates a legacy outcome to the modern one. A legacy
// revert carries a numeric code instead of a payload, it becomes the
// little-endian u32 output of a reverting completion.
func mapLegacyOutcome(legacy LegacyOutcome, gasLimit types.Gas) (Outcome, types.GasUsage, error) {
	spent := legacy.GasSpent
	if spent > gasLimit {
		spent = gasLimit
	}
	usage := types.NewGasUsage(gasLimit, gasLimit-spent)
	switch legacy.Kind {
	case LegacyCompleted:
		return Outcome{Kind: OutcomeCompleted, Output: legacy.Output}, usage, nil
	case LegacyReverted:
		output := make([]byte, 4)
		binary.LittleEndian.PutUint32(output, legacy.RevertCode)
		return Outcome{Kind: OutcomeCompleted, Flags: ReturnFlagRevert, Output: output}, usage, nil
	case LegacyOutOfGas:
		return Outcome{Kind: OutcomeOutOfGas}, types.NewGasUsage(gasLimit, 0), nil
	case LegacyTrapped:
		return Outcome{Kind: OutcomeTrapped, Trap: legacy.Trap}, usage, nil
	default:
		return Outcome{}, types.GasUsage{}, fmt.Errorf("unknown legacy outcome kind %d", legacy.Kind)
	}
}

// Package protocol defines the stable wire codes results carry when they
// cross the node's binary boundary. The codes are part of the public
// protocol, they must never be renumbered.
package protocol

import "fmt"

// ErrorCode is the u16 wire form of a failure, 0 is success.
type ErrorCode uint16

const (
	NoError                ErrorCode = 0
	RootNotFound           ErrorCode = 1
	KeyNotFound            ErrorCode = 2
	ValueNotFound          ErrorCode = 3
	FunctionNotFound       ErrorCode = 4
	InvalidTransaction     ErrorCode = 5
	InvalidDeploy          ErrorCode = 6
	InvalidItemVariant     ErrorCode = 7
	WasmPreprocessing      ErrorCode = 8
	UnsupportedRequest     ErrorCode = 9
	DictionaryURefNotFound ErrorCode = 10
	NoCompleteBlocks       ErrorCode = 11
	GasLimitExceeded       ErrorCode = 12
	TransferFailure        ErrorCode = 13
	Reverted               ErrorCode = 14
	Trapped                ErrorCode = 15
	NotCallable            ErrorCode = 16
	CorruptState           ErrorCode = 17
	SerializationFailure   ErrorCode = 18
	StorageFailure         ErrorCode = 19
	InternalError          ErrorCode = 20

	// Unknown is the decode target for codes this build does not know.
	// It is not a valid code to produce.
	Unknown ErrorCode = 0xFFFF
)

var errorCodeNames = map[ErrorCode]string{
	NoError:                "no error",
	RootNotFound:           "root not found",
	KeyNotFound:            "key not found",
	ValueNotFound:          "value not found",
	FunctionNotFound:       "function not found",
	InvalidTransaction:     "invalid transaction",
	InvalidDeploy:          "invalid deploy",
	InvalidItemVariant:     "invalid item variant",
	WasmPreprocessing:      "wasm preprocessing failed",
	UnsupportedRequest:     "unsupported request",
	DictionaryURefNotFound: "dictionary uref not found",
	NoCompleteBlocks:       "no complete blocks",
	GasLimitExceeded:       "gas limit exceeded",
	TransferFailure:        "transfer failure",
	Reverted:               "reverted",
	Trapped:                "trapped",
	NotCallable:            "not callable",
	CorruptState:           "corrupt state",
	SerializationFailure:   "serialization failure",
	StorageFailure:         "storage failure",
	InternalError:          "internal error",
	Unknown:                "unknown",
}

func (c ErrorCode) String() string {
	if name, found := errorCodeNames[c]; found {
		return name
	}
	return fmt.Sprintf("error-code(%d)", uint16(c))
}

// FromCode maps a wire code back to an ErrorCode. Codes of newer protocol
// versions decode to Unknown instead of failing.
func FromCode(code uint16) ErrorCode {
	c := ErrorCode(code)
	if _, found := errorCodeNames[c]; found && c != Unknown {
		return c
	}
	return Unknown
}

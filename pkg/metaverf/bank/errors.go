package bank

import (
	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

// Builtin runtime errors, reported with their cluster error keys
var (
	ErrGenericError                = solana.NewInstructionErrorFromKey(solana.InstructionErrorGenericError)
	ErrInvalidArgument             = solana.NewInstructionErrorFromKey(solana.InstructionErrorInvalidArgument)
	ErrInvalidInstructionData      = solana.NewInstructionErrorFromKey(solana.InstructionErrorInvalidInstructionData)
	ErrInvalidAccountData          = solana.NewInstructionErrorFromKey(solana.InstructionErrorInvalidAccountData)
	ErrInsufficientFunds           = solana.NewInstructionErrorFromKey(solana.InstructionErrorInsufficientFunds)
	ErrIncorrectProgramID          = solana.NewInstructionErrorFromKey(solana.InstructionErrorIncorrectProgramID)
	ErrMissingRequiredSignature    = solana.NewInstructionErrorFromKey(solana.InstructionErrorMissingRequiredSignature)
	ErrAccountAlreadyInitialized   = solana.NewInstructionErrorFromKey(solana.InstructionErrorAccountAlreadyInitialized)
	ErrUninitializedAccount        = solana.NewInstructionErrorFromKey(solana.InstructionErrorUninitializedAccount)
	ErrNotEnoughAccountKeys        = solana.NewInstructionErrorFromKey(solana.InstructionErrorNotEnoughAccountKeys)
	ErrReadonlyDataModified        = solana.NewInstructionErrorFromKey(solana.InstructionErrorReadonlyDataModified)
	ErrExternalAccountDataModified = solana.NewInstructionErrorFromKey(solana.InstructionErrorExternalAccountDataModified)
	ErrExternalAccountLamportSpend = solana.NewInstructionErrorFromKey(solana.InstructionErrorExternalAccountLamportSpend)
	ErrModifiedProgramID           = solana.NewInstructionErrorFromKey(solana.InstructionErrorModifiedProgramID)
	ErrUnsupportedProgramID        = solana.NewInstructionErrorFromKey(solana.InstructionErrorUnsupportedProgramID)
	ErrMissingAccount              = solana.NewInstructionErrorFromKey(solana.InstructionErrorMissingAccount)
	ErrPrivilegeEscalation         = solana.NewInstructionErrorFromKey(solana.InstructionErrorPrivilegeEscalation)
	ErrInvalidSeeds                = solana.NewInstructionErrorFromKey(solana.InstructionErrorInvalidSeeds)
	ErrCallDepth                   = solana.NewInstructionErrorFromKey(solana.InstructionErrorCallDepth)
)

var builtinErrors = []error{
	ErrGenericError,
	ErrInvalidArgument,
	ErrInvalidInstructionData,
	ErrInvalidAccountData,
	ErrInsufficientFunds,
	ErrIncorrectProgramID,
	ErrMissingRequiredSignature,
	ErrAccountAlreadyInitialized,
	ErrUninitializedAccount,
	ErrNotEnoughAccountKeys,
	ErrReadonlyDataModified,
	ErrExternalAccountDataModified,
	ErrExternalAccountLamportSpend,
	ErrModifiedProgramID,
	ErrUnsupportedProgramID,
	ErrMissingAccount,
	ErrPrivilegeEscalation,
	ErrInvalidSeeds,
	ErrCallDepth,
}

// coder is implemented by typed program errors that carry a custom code
type coder interface {
	Code() solana.CustomError
}

// ToInstructionError converts an error returned by a processor into the
// instruction error reported in the transaction result. Anything that is
// neither a program error nor a builtin runtime error is reported as a
// GenericError.
func ToInstructionError(index int, err error) *solana.InstructionError {
	return &solana.InstructionError{
		Index: index,
		Err:   toProgramError(err),
	}
}

func toProgramError(err error) error {
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	var custom solana.CustomError
	if errors.As(err, &custom) {
		return custom
	}

	for _, builtin := range builtinErrors {
		if errors.Is(err, builtin) {
			return builtin
		}
	}

	return ErrGenericError
}

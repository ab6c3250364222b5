package metaverf

import (
	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

type MetaverfError uint32

const (
	// Signer does not match the stored authority
	ErrUnauthorized MetaverfError = iota + 0x1770

	// Account does not match its derived address or expected owner
	ErrInvalidAccount

	// Account has already been initialized
	ErrAlreadyInitialized

	// College id is not the next sequential value
	ErrSequenceMismatch

	// Funding account balance cannot cover the transfer
	ErrInsufficientFunds

	// College subscription is inactive or past its expiry
	ErrSubscriptionExpired

	// Amount is zero where a positive value is required
	ErrInvalidAmount

	// Account has not been initialized
	ErrAccountNotInitialized

	// Authority is already bound to another college
	ErrDuplicateAuthority

	// Collection is not registered to the college
	ErrCollectionNotFound

	// College has reached its collection limit
	ErrCollectionLimitReached

	// Metadata field exceeds its maximum length
	ErrMetadataTooLong

	// Arithmetic overflow
	ErrOverflow
)

var errorNames = map[MetaverfError]string{
	ErrUnauthorized:           "Unauthorized",
	ErrInvalidAccount:         "InvalidAccount",
	ErrAlreadyInitialized:     "AlreadyInitialized",
	ErrSequenceMismatch:       "SequenceMismatch",
	ErrInsufficientFunds:      "InsufficientFunds",
	ErrSubscriptionExpired:    "SubscriptionExpired",
	ErrInvalidAmount:          "InvalidAmount",
	ErrAccountNotInitialized:  "AccountNotInitialized",
	ErrDuplicateAuthority:     "DuplicateAuthority",
	ErrCollectionNotFound:     "CollectionNotFound",
	ErrCollectionLimitReached: "CollectionLimitReached",
	ErrMetadataTooLong:        "MetadataTooLong",
	ErrOverflow:               "Overflow",
}

func (e MetaverfError) Error() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return "Unknown"
}

// Code returns the custom program error code reported in transaction results
func (e MetaverfError) Code() solana.CustomError {
	return solana.CustomError(e)
}

// GetError extracts a MetaverfError from a processing or transaction error,
// returning false when the failure did not originate from the program.
func GetError(err error) (MetaverfError, bool) {
	var metaverfErr MetaverfError
	if errors.As(err, &metaverfErr) {
		return metaverfErr, true
	}

	var txnErr *solana.TransactionError
	if errors.As(err, &txnErr) && txnErr.InstructionError() != nil {
		err = txnErr.InstructionError().Err
	}

	var instructionErr solana.InstructionError
	if errors.As(err, &instructionErr) {
		err = instructionErr.Err
	}

	var custom solana.CustomError
	if errors.As(err, &custom) {
		if _, ok := errorNames[MetaverfError(custom)]; ok {
			return MetaverfError(custom), true
		}
	}

	return 0, false
}

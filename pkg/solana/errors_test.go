package solana

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionError_Custom(t *testing.T) {
	e := TransactionErrorFromInstructionError(&InstructionError{
		Index: 2,
		Err:   CustomError(0x1771),
	})

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	require.NotNil(t, e.InstructionError().CustomError())
	assert.Equal(t, CustomError(0x1771), *e.InstructionError().CustomError())
	assert.Equal(t, `{"InstructionError": [2, {"Custom": 6001}]}`, e.JSONString())
}

func TestTransactionError_Builtin(t *testing.T) {
	e := TransactionErrorFromInstructionError(&InstructionError{
		Index: 0,
		Err:   NewInstructionErrorFromKey(InstructionErrorInvalidArgument),
	})

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	assert.Equal(t, InstructionErrorInvalidArgument, e.InstructionError().ErrorKey())
	assert.Nil(t, e.InstructionError().CustomError())
	assert.Equal(t, `{"InstructionError": [0, "InvalidArgument"]}`, e.JSONString())

	e = NewTransactionError(TransactionErrorAccountInUse)
	assert.Equal(t, TransactionErrorAccountInUse, e.ErrorKey())
	assert.Nil(t, e.InstructionError())
	assert.Equal(t, `"AccountInUse"`, e.JSONString())
	assert.Equal(t, "AccountInUse", e.Error())
}

func TestInstructionError_WrappedCustom(t *testing.T) {
	ie := InstructionError{
		Index: 1,
		Err:   errors.Wrap(CustomError(3), "nested"),
	}

	require.NotNil(t, ie.CustomError())
	assert.Equal(t, CustomError(3), *ie.CustomError())
	assert.Equal(t, InstructionErrorCustom, ie.ErrorKey())
}

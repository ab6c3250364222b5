package bank

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

func TestToInstructionError(t *testing.T) {
	for _, tc := range []struct {
		err         error
		expectedKey solana.InstructionErrorKey
		expectedErr error
	}{
		{
			err:         metaverf.ErrUnauthorized,
			expectedKey: solana.InstructionErrorCustom,
			expectedErr: solana.CustomError(6000),
		},
		{
			err:         errors.Wrap(metaverf.ErrSequenceMismatch, "college 2"),
			expectedKey: solana.InstructionErrorCustom,
			expectedErr: solana.CustomError(6003),
		},
		{
			err:         solana.CustomError(1),
			expectedKey: solana.InstructionErrorCustom,
			expectedErr: solana.CustomError(1),
		},
		{
			err:         errors.Wrapf(ErrMissingAccount, "account %s", "abc"),
			expectedKey: solana.InstructionErrorMissingAccount,
			expectedErr: ErrMissingAccount,
		},
		{
			err:         errors.New("store unavailable"),
			expectedKey: solana.InstructionErrorGenericError,
			expectedErr: ErrGenericError,
		},
	} {
		actual := ToInstructionError(3, tc.err)
		require.NotNil(t, actual)
		assert.Equal(t, 3, actual.Index)
		assert.Equal(t, tc.expectedKey, actual.ErrorKey())
		assert.Equal(t, tc.expectedErr, actual.Err)
	}
}

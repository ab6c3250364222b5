package program

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	metaverf_system "github.com/metaverf/metaverf-ledger/pkg/metaverf/system"
	metaverf_token "github.com/metaverf/metaverf-ledger/pkg/metaverf/token"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
)

// ParseProtocol decodes the protocol state from an account owned by the
// program
func ParseProtocol(acct *bank.Account) (*metaverf.ProtocolAccount, error) {
	if acct.IsEmpty() {
		return nil, metaverf.ErrAccountNotInitialized
	}
	if !acct.IsOwnedBy(metaverf.PROGRAM_ID) {
		return nil, metaverf.ErrInvalidAccount
	}

	var state metaverf.ProtocolAccount
	if err := state.Unmarshal(acct.Data); err != nil {
		return nil, metaverf.ErrInvalidAccount
	}
	return &state, nil
}

// ParseCollege decodes a college's state from an account owned by the program
func ParseCollege(acct *bank.Account) (*metaverf.CollegeAccount, error) {
	if acct.IsEmpty() {
		return nil, metaverf.ErrAccountNotInitialized
	}
	if !acct.IsOwnedBy(metaverf.PROGRAM_ID) {
		return nil, metaverf.ErrInvalidAccount
	}

	var state metaverf.CollegeAccount
	if err := state.Unmarshal(acct.Data); err != nil {
		return nil, metaverf.ErrInvalidAccount
	}
	return &state, nil
}

// loadProtocol loads the protocol state at index i after checking it sits at
// the canonical address
func loadProtocol(ctx context.Context, ic *bank.InstructionContext, i int) (*bank.Account, *metaverf.ProtocolAccount, uint8, error) {
	expected, bump, err := metaverf.GetProtocolAddress()
	if err != nil {
		return nil, nil, 0, err
	}
	if !bytes.Equal(ic.Key(i), expected) {
		return nil, nil, 0, metaverf.ErrInvalidAccount
	}

	acct, err := ic.Load(ctx, i)
	if err != nil {
		return nil, nil, 0, err
	}

	state, err := ParseProtocol(acct)
	if err != nil {
		return nil, nil, 0, err
	}
	if state.Bump != bump {
		return nil, nil, 0, metaverf.ErrInvalidAccount
	}
	return acct, state, bump, nil
}

// loadCollege loads the state of the college with the provided id from index
// i, re-deriving its address
func loadCollege(ctx context.Context, ic *bank.InstructionContext, i int, collegeId uint16) (*bank.Account, *metaverf.CollegeAccount, error) {
	expected, _, err := metaverf.GetCollegeAddress(&metaverf.GetCollegeAddressArgs{
		CollegeId: collegeId,
	})
	if err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(ic.Key(i), expected) {
		return nil, nil, metaverf.ErrInvalidAccount
	}

	acct, err := ic.Load(ctx, i)
	if err != nil {
		return nil, nil, err
	}

	state, err := ParseCollege(acct)
	if err != nil {
		return nil, nil, err
	}
	if state.Id != collegeId {
		return nil, nil, metaverf.ErrInvalidAccount
	}
	return acct, state, nil
}

// requireEmpty fails when the account at index i has already been allocated
func requireEmpty(ctx context.Context, ic *bank.InstructionContext, i int, err error) error {
	acct, loadErr := ic.Load(ctx, i)
	if loadErr != nil {
		return loadErr
	}
	if !acct.IsEmpty() {
		return err
	}
	return nil
}

// requireAuthority checks that the account at index i both signed and is the
// expected authority
func requireAuthority(ic *bank.InstructionContext, i int, expected ed25519.PublicKey) error {
	if !ic.IsSigner(i) {
		return errors.Wrapf(bank.ErrMissingRequiredSignature, "account %s", base58.Encode(ic.Key(i)))
	}
	if !bytes.Equal(ic.Key(i), expected) {
		return metaverf.ErrUnauthorized
	}
	return nil
}

// requireProgram checks the program account at index i is the expected one
func requireProgram(ic *bank.InstructionContext, i int, expected ed25519.PublicKey) error {
	if !bytes.Equal(ic.Key(i), expected) {
		return errors.Wrapf(bank.ErrIncorrectProgramID, "expected %s, got %s", base58.Encode(expected), base58.Encode(ic.Key(i)))
	}
	return nil
}

// loadFeeAccounts checks the mint and treasury supplied for a fee payment
// match the protocol, returning the mint's decimals
func loadFeeAccounts(ctx context.Context, ic *bank.InstructionContext, protocol *metaverf.ProtocolAccount, mintIndex, treasuryIndex int) (byte, error) {
	if !bytes.Equal(ic.Key(mintIndex), protocol.Mint) || !bytes.Equal(ic.Key(treasuryIndex), protocol.Treasury) {
		return 0, metaverf.ErrInvalidAccount
	}

	_, mint, err := metaverf_token.LoadMint(ctx, ic, mintIndex)
	if err != nil {
		return 0, metaverf.ErrInvalidAccount
	}
	return mint.Decimals, nil
}

// loadTokenAccount loads a token account at index i holding the protocol's
// fee mint
func loadTokenAccount(ctx context.Context, ic *bank.InstructionContext, i int, mint ed25519.PublicKey) (*token.Account, error) {
	_, tokenAccount, err := metaverf_token.LoadAccount(ctx, ic, i)
	if err != nil {
		return nil, metaverf.ErrInvalidAccount
	}
	if !bytes.Equal(tokenAccount.Mint, mint) {
		return nil, metaverf.ErrInvalidAccount
	}
	return tokenAccount, nil
}

// checkFeePayment verifies the funding account can pay the fee on behalf of
// the signing owner
func checkFeePayment(ctx context.Context, ic *bank.InstructionContext, protocol *metaverf.ProtocolAccount, sourceIndex int, owner ed25519.PublicKey) error {
	source, err := loadTokenAccount(ctx, ic, sourceIndex, protocol.Mint)
	if err != nil {
		return err
	}
	if !bytes.Equal(source.Owner, owner) {
		return metaverf.ErrUnauthorized
	}
	if source.State == token.AccountStateFrozen {
		return metaverf.ErrInvalidAccount
	}
	if source.Amount < protocol.AnnualFee {
		return metaverf.ErrInsufficientFunds
	}
	return nil
}

// createProgramAccount allocates a program derived account owned by the
// program, funded by the payer, and writes its initial state
func createProgramAccount(
	ctx context.Context,
	ic *bank.InstructionContext,
	payerIndex, addressIndex int,
	seeds [][]byte,
	data []byte,
) error {
	if err := metaverf_system.InvokeCreateAccount(
		ctx,
		ic,
		ic.Key(payerIndex),
		ic.Key(addressIndex),
		metaverf.PROGRAM_ID,
		uint64(len(data)),
		seeds,
	); err != nil {
		return err
	}

	acct, err := ic.Load(ctx, addressIndex)
	if err != nil {
		return err
	}

	acct.Data = data
	return ic.Store(ctx, addressIndex, acct)
}

// extendExpiry adds duration seconds to base
func extendExpiry(base int64, duration uint64) (int64, error) {
	if duration > math.MaxInt64 || base > math.MaxInt64-int64(duration) {
		return 0, metaverf.ErrOverflow
	}
	return base + int64(duration), nil
}

package token

import (
	"context"

	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
)

// ParseMint decodes an initialized mint owned by the token program
func ParseMint(acct *bank.Account) (*token.Mint, error) {
	if !acct.IsOwnedBy(token.ProgramKey) {
		return nil, errors.Wrapf(bank.ErrIncorrectProgramID, "mint %s", acct)
	}

	var mint token.Mint
	if !mint.Unmarshal(acct.Data) {
		return nil, token.ErrorInvalidMint
	}

	if !mint.IsInitialized {
		return nil, token.ErrorUninitializedState
	}

	return &mint, nil
}

// ParseAccount decodes an initialized token account owned by the token program
func ParseAccount(acct *bank.Account) (*token.Account, error) {
	if !acct.IsOwnedBy(token.ProgramKey) {
		return nil, errors.Wrapf(bank.ErrIncorrectProgramID, "token account %s", acct)
	}

	var tokenAccount token.Account
	if !tokenAccount.Unmarshal(acct.Data) {
		return nil, token.ErrorInvalidState
	}

	if tokenAccount.State == token.AccountStateUninitialized {
		return nil, token.ErrorUninitializedState
	}

	return &tokenAccount, nil
}

// LoadMint loads and decodes the mint at index i of the instruction
func LoadMint(ctx context.Context, ic *bank.InstructionContext, i int) (*bank.Account, *token.Mint, error) {
	acct, err := ic.Load(ctx, i)
	if err != nil {
		return nil, nil, err
	}

	mint, err := ParseMint(acct)
	if err != nil {
		return nil, nil, err
	}

	return acct, mint, nil
}

// LoadAccount loads and decodes the token account at index i of the
// instruction
func LoadAccount(ctx context.Context, ic *bank.InstructionContext, i int) (*bank.Account, *token.Account, error) {
	acct, err := ic.Load(ctx, i)
	if err != nil {
		return nil, nil, err
	}

	tokenAccount, err := ParseAccount(acct)
	if err != nil {
		return nil, nil, err
	}

	return acct, tokenAccount, nil
}

package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"
	"sync/atomic"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	metaverf_token "github.com/metaverf/metaverf-ledger/pkg/metaverf/token"
	"github.com/metaverf/metaverf-ledger/pkg/solana/system"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
)

// The helpers in this file write account state directly, without going
// through a signed transaction. They exist to seed a ledger with funded
// wallets and the fee mint.

var (
	ErrAccountInUse    = errors.New("account is already in use")
	ErrBalanceOverflow = errors.New("balance overflow")
	ErrNotTokenAccount = errors.New("account is not a token account")
	ErrNotMintAccount  = errors.New("account is not a mint")
	ErrMintMismatch    = errors.New("token account mint does not match")
)

// Airdrop credits lamports to an address
func (l *Ledger) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	return l.apply(ctx, "Airdrop", [][]byte{address}, func(b *bank.Bank) error {
		acct, err := b.Get(ctx, address)
		if err != nil {
			return err
		}

		if acct.Lamports > math.MaxUint64-lamports {
			return ErrBalanceOverflow
		}
		acct.Lamports += lamports

		b.Set(acct)
		return nil
	})
}

// CreateMint allocates and initializes a token mint at an unused address
func (l *Ledger) CreateMint(ctx context.Context, mint, authority ed25519.PublicKey, decimals byte) error {
	return l.apply(ctx, "CreateMint", [][]byte{mint}, func(b *bank.Bank) error {
		acct, err := b.Get(ctx, mint)
		if err != nil {
			return err
		}
		if !acct.IsEmpty() {
			return ErrAccountInUse
		}

		state := &token.Mint{
			MintAuthority: authority,
			Decimals:      decimals,
			IsInitialized: true,
		}

		acct.Owner = token.ProgramKey
		acct.Lamports = system.RentExemptBalance(token.MintSize)
		acct.Data = state.Marshal()

		b.Set(acct)
		return nil
	})
}

// CreateAssociatedTokenAccount creates the owner's associated token account
// for the mint, returning its address. An existing account is left untouched.
func (l *Ledger) CreateAssociatedTokenAccount(ctx context.Context, owner, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	address, err := token.GetAssociatedAccount(owner, mint)
	if err != nil {
		return nil, err
	}

	err = l.apply(ctx, "CreateAssociatedTokenAccount", [][]byte{address, mint}, func(b *bank.Bank) error {
		mintAccount, err := b.Get(ctx, mint)
		if err != nil {
			return err
		}
		if _, err := metaverf_token.ParseMint(mintAccount); err != nil {
			return ErrNotMintAccount
		}

		acct, err := b.Get(ctx, address)
		if err != nil {
			return err
		}
		if !acct.IsEmpty() {
			existing, err := metaverf_token.ParseAccount(acct)
			if err != nil {
				return ErrAccountInUse
			}
			if !bytes.Equal(existing.Mint, mint) || !bytes.Equal(existing.Owner, owner) {
				return ErrAccountInUse
			}
			return nil
		}

		state := &token.Account{
			Mint:  mint,
			Owner: owner,
			State: token.AccountStateInitialized,
		}

		acct.Owner = token.ProgramKey
		acct.Lamports = system.RentExemptBalance(token.AccountSize)
		acct.Data = state.Marshal()

		b.Set(acct)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// MintTo issues new tokens of the account's mint into the token account
func (l *Ledger) MintTo(ctx context.Context, tokenAccount ed25519.PublicKey, amount uint64) error {
	// A token account's mint never changes, so it can be looked up before
	// taking the locks
	peeked, err := l.GetAccount(ctx, tokenAccount)
	if err != nil {
		return err
	}
	peekedState, err := metaverf_token.ParseAccount(peeked)
	if err != nil {
		return ErrNotTokenAccount
	}
	mintAddress := peekedState.Mint

	return l.apply(ctx, "MintTo", [][]byte{tokenAccount, mintAddress}, func(b *bank.Bank) error {
		acct, err := b.Get(ctx, tokenAccount)
		if err != nil {
			return err
		}
		state, err := metaverf_token.ParseAccount(acct)
		if err != nil {
			return ErrNotTokenAccount
		}
		if !bytes.Equal(state.Mint, mintAddress) {
			return ErrMintMismatch
		}

		mintAccount, err := b.Get(ctx, mintAddress)
		if err != nil {
			return err
		}
		mint, err := metaverf_token.ParseMint(mintAccount)
		if err != nil {
			return ErrNotMintAccount
		}

		if state.Amount > math.MaxUint64-amount || mint.Supply > math.MaxUint64-amount {
			return ErrBalanceOverflow
		}
		state.Amount += amount
		mint.Supply += amount

		acct.Data = state.Marshal()
		mintAccount.Data = mint.Marshal()

		b.Set(acct)
		b.Set(mintAccount)
		return nil
	})
}

// apply runs fn against a fresh bank while holding write locks on the keys,
// committing its writes at a new slot
func (l *Ledger) apply(ctx context.Context, method string, keys [][]byte, fn func(b *bank.Bank) error) error {
	unlock := l.accountLocks.LockAll(keys, nil)
	defer unlock()

	slot := atomic.AddUint64(&l.slot, 1)
	b := bank.New(l.store, slot)

	if err := fn(b); err != nil {
		return err
	}

	if err := b.Commit(ctx); err != nil {
		return errors.Wrapf(err, "error committing %s", method)
	}

	log := l.log.WithFields(logrus.Fields{
		"method": method,
		"slot":   slot,
	})
	for _, acct := range b.Dirty() {
		log.WithField("address", base58.Encode(acct.Address)).Debug("account written")
	}
	return nil
}

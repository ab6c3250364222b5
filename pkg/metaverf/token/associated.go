package token

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	metaverf_system "github.com/metaverf/metaverf-ledger/pkg/metaverf/system"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
)

// AssociatedProcessor executes associated token account program instructions
type AssociatedProcessor struct {
	log *logrus.Entry
}

func NewAssociatedProcessor() *AssociatedProcessor {
	return &AssociatedProcessor{
		log: logrus.StandardLogger().WithField("type", "metaverf/token/associated"),
	}
}

// Process implements bank.Processor.Process
func (p *AssociatedProcessor) Process(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		payerIndex = iota
		addressIndex
		walletIndex
		mintIndex
	)

	args, err := token.DecompileCreateAssociatedAccount(solana.Instruction{
		Program:  ic.Program,
		Accounts: ic.Accounts,
		Data:     ic.Data,
	})
	if err != nil {
		return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
	}

	log := p.log.WithFields(logrus.Fields{
		"method":     "create",
		"wallet":     base58.Encode(args.Owner),
		"mint":       base58.Encode(args.Mint),
		"idempotent": args.Idempotent,
	})

	expected, bump, err := solana.FindProgramAddressAndBump(
		token.AssociatedTokenAccountProgramKey,
		args.Owner,
		token.ProgramKey,
		args.Mint,
	)
	if err != nil {
		return errors.Wrap(bank.ErrInvalidSeeds, err.Error())
	}
	if !bytes.Equal(expected, args.Address) {
		return errors.Wrapf(bank.ErrInvalidSeeds, "expected %s, got %s", base58.Encode(expected), base58.Encode(args.Address))
	}

	existing, err := ic.Load(ctx, addressIndex)
	if err != nil {
		return err
	}

	if args.Idempotent && existing.IsOwnedBy(token.ProgramKey) {
		tokenAccount, err := ParseAccount(existing)
		if err != nil {
			return err
		}
		if !bytes.Equal(tokenAccount.Owner, args.Owner) || !bytes.Equal(tokenAccount.Mint, args.Mint) {
			return errors.Wrap(bank.ErrInvalidAccountData, "existing account does not match wallet and mint")
		}

		log.Trace("associated account already exists")
		return nil
	}

	if _, _, err := LoadMint(ctx, ic, mintIndex); err != nil {
		return err
	}

	signerSeeds := [][]byte{
		args.Owner,
		token.ProgramKey,
		args.Mint,
		{bump},
	}

	if err := metaverf_system.InvokeCreateAccount(
		ctx,
		ic,
		ic.Key(payerIndex),
		args.Address,
		token.ProgramKey,
		token.AccountSize,
		signerSeeds,
	); err != nil {
		return err
	}

	if err := ic.Invoke(ctx, token.InitializeAccount(args.Address, args.Mint, ic.Key(walletIndex))); err != nil {
		return err
	}

	log.WithField("address", base58.Encode(args.Address)).Trace("associated account created")
	return nil
}

// InvokeCreateAssociatedAccount creates the wallet's associated token account
// for mint through a cross program invocation, returning its address. The
// calling instruction must carry the payer, the associated account, wallet,
// mint, and the system, token and associated token programs.
func InvokeCreateAssociatedAccount(
	ctx context.Context,
	ic *bank.InstructionContext,
	payer, wallet, mint ed25519.PublicKey,
	idempotent bool,
) (ed25519.PublicKey, error) {
	create := token.CreateAssociatedTokenAccount
	if idempotent {
		create = token.CreateAssociatedTokenAccountIdempotent
	}

	ix, address, err := create(payer, wallet, mint)
	if err != nil {
		return nil, errors.Wrap(bank.ErrInvalidSeeds, err.Error())
	}

	if err := ic.Invoke(ctx, ix); err != nil {
		return nil, err
	}
	return address, nil
}

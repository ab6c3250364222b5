package system

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
	solana_system "github.com/metaverf/metaverf-ledger/pkg/solana/system"
)

// Processor executes the subset of system program instructions the ledger
// supports: CreateAccount and Transfer
type Processor struct {
	log *logrus.Entry
}

func NewProcessor() *Processor {
	return &Processor{
		log: logrus.StandardLogger().WithField("type", "metaverf/system"),
	}
}

// Process implements bank.Processor.Process
func (p *Processor) Process(ctx context.Context, ic *bank.InstructionContext) error {
	command, err := solana_system.GetCommand(ic.Data)
	if err != nil {
		return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
	}

	ix := solana.Instruction{
		Program:  ic.Program,
		Accounts: ic.Accounts,
		Data:     ic.Data,
	}

	switch command {
	case solana_system.CommandCreateAccount:
		decompiled, err := solana_system.DecompileCreateAccount(ix)
		if err != nil {
			return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
		}
		return p.createAccount(ctx, ic, decompiled)
	case solana_system.CommandTransfer:
		decompiled, err := solana_system.DecompileTransfer(ix)
		if err != nil {
			return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
		}
		return p.transfer(ctx, ic, decompiled)
	default:
		return errors.Wrapf(bank.ErrInvalidInstructionData, "unsupported command %d", command)
	}
}

func (p *Processor) createAccount(ctx context.Context, ic *bank.InstructionContext, args *solana_system.DecompiledCreateAccount) error {
	const (
		funderIndex = iota
		addressIndex
	)

	log := p.log.WithFields(logrus.Fields{
		"method":  "createAccount",
		"address": base58.Encode(args.Address),
		"owner":   base58.Encode(args.Owner),
	})

	if !ic.IsSigner(funderIndex) || !ic.IsSigner(addressIndex) {
		return bank.ErrMissingRequiredSignature
	}

	if args.Size > solana_system.MaxPermittedDataLength {
		return solana_system.ErrorInvalidAccountDataLength
	}

	funder, err := ic.Load(ctx, funderIndex)
	if err != nil {
		return err
	}

	created, err := ic.Load(ctx, addressIndex)
	if err != nil {
		return err
	}

	if !created.IsEmpty() {
		log.Debug("account already in use")
		return solana_system.ErrorAccountAlreadyInUse
	}

	if len(funder.Data) > 0 {
		return errors.Wrap(bank.ErrInvalidArgument, "funder must not carry data")
	}

	if funder.Lamports < args.Lamports {
		return solana_system.ErrorResultWithNegativeLamports
	}

	funder.Lamports -= args.Lamports
	if err := ic.Store(ctx, funderIndex, funder); err != nil {
		return err
	}

	created.Lamports = args.Lamports
	created.Data = make([]byte, args.Size)
	created.Owner = args.Owner
	if err := ic.Store(ctx, addressIndex, created); err != nil {
		return err
	}

	log.WithField("size", args.Size).Trace("account created")
	return nil
}

func (p *Processor) transfer(ctx context.Context, ic *bank.InstructionContext, args *solana_system.DecompiledTransfer) error {
	const (
		fromIndex = iota
		toIndex
	)

	if !ic.IsSigner(fromIndex) {
		return bank.ErrMissingRequiredSignature
	}

	from, err := ic.Load(ctx, fromIndex)
	if err != nil {
		return err
	}

	if len(from.Data) > 0 {
		return errors.Wrap(bank.ErrInvalidArgument, "from must not carry data")
	}

	if from.Lamports < args.Lamports {
		return solana_system.ErrorResultWithNegativeLamports
	}

	from.Lamports -= args.Lamports
	if err := ic.Store(ctx, fromIndex, from); err != nil {
		return err
	}

	to, err := ic.Load(ctx, toIndex)
	if err != nil {
		return err
	}

	to.Lamports += args.Lamports
	return ic.Store(ctx, toIndex, to)
}

// InvokeCreateAccount creates a rent exempt account of the provided size,
// owned by owner and funded by funder, through a cross program invocation
// from the calling program. PDA addresses sign through signerSeeds.
func InvokeCreateAccount(
	ctx context.Context,
	ic *bank.InstructionContext,
	funder, address, owner ed25519.PublicKey,
	size uint64,
	signerSeeds ...[][]byte,
) error {
	return ic.Invoke(
		ctx,
		solana_system.CreateAccount(funder, address, owner, solana_system.RentExemptBalance(size), size),
		signerSeeds...,
	)
}

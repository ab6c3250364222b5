package token

import (
	"bytes"
	"context"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
	"github.com/metaverf/metaverf-ledger/pkg/solana/system"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
)

// Processor executes the subset of token program instructions the ledger
// supports. Delegation, multisig authorities and native accounts are not
// supported.
type Processor struct {
	log *logrus.Entry
}

func NewProcessor() *Processor {
	return &Processor{
		log: logrus.StandardLogger().WithField("type", "metaverf/token"),
	}
}

// Process implements bank.Processor.Process
func (p *Processor) Process(ctx context.Context, ic *bank.InstructionContext) error {
	ix := solana.Instruction{
		Program:  ic.Program,
		Accounts: ic.Accounts,
		Data:     ic.Data,
	}

	command, err := token.GetCommand(ix)
	if err != nil {
		return token.ErrorInvalidInstruction
	}

	switch command {
	case token.CommandInitializeMint:
		args, err := token.DecompileInitializeMint(ix)
		if err != nil {
			return errors.Wrap(token.ErrorInvalidInstruction, err.Error())
		}
		return p.initializeMint(ctx, ic, args)
	case token.CommandInitializeAccount:
		args, err := token.DecompileInitializeAccount(ix)
		if err != nil {
			return errors.Wrap(token.ErrorInvalidInstruction, err.Error())
		}
		return p.initializeAccount(ctx, ic, args)
	case token.CommandTransfer:
		args, err := token.DecompileTransfer(ix)
		if err != nil {
			return errors.Wrap(token.ErrorInvalidInstruction, err.Error())
		}
		return p.transfer(ctx, ic, &transferArgs{
			sourceIndex: 0,
			mintIndex:   -1,
			destIndex:   1,
			ownerIndex:  2,
			amount:      args.Amount,
		})
	case token.CommandTransferChecked:
		args, err := token.DecompileTransferChecked(ix)
		if err != nil {
			return errors.Wrap(token.ErrorInvalidInstruction, err.Error())
		}
		return p.transfer(ctx, ic, &transferArgs{
			sourceIndex: 0,
			mintIndex:   1,
			destIndex:   2,
			ownerIndex:  3,
			amount:      args.Amount,
			decimals:    args.Decimals,
		})
	case token.CommandMintTo:
		args, err := token.DecompileMintTo(ix)
		if err != nil {
			return errors.Wrap(token.ErrorInvalidInstruction, err.Error())
		}
		return p.mintTo(ctx, ic, args)
	default:
		return token.ErrorInvalidInstruction
	}
}

func (p *Processor) initializeMint(ctx context.Context, ic *bank.InstructionContext, args *token.DecompiledInitializeMint) error {
	const mintIndex = 0

	acct, err := ic.Load(ctx, mintIndex)
	if err != nil {
		return err
	}

	if !acct.IsOwnedBy(token.ProgramKey) {
		return bank.ErrIncorrectProgramID
	}

	var mint token.Mint
	if !mint.Unmarshal(acct.Data) {
		return token.ErrorInvalidState
	}
	if mint.IsInitialized {
		return token.ErrorAlreadyInUse
	}

	if acct.Lamports < system.RentExemptBalance(token.MintSize) {
		return token.ErrorNotRentExempt
	}

	mint = token.Mint{
		MintAuthority: args.Authority,
		Decimals:      args.Decimals,
		IsInitialized: true,
	}
	acct.Data = mint.Marshal()

	if err := ic.Store(ctx, mintIndex, acct); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method":   "initializeMint",
		"mint":     base58.Encode(args.Mint),
		"decimals": args.Decimals,
	}).Trace("mint initialized")
	return nil
}

func (p *Processor) initializeAccount(ctx context.Context, ic *bank.InstructionContext, args *token.DecompiledInitializeAccount) error {
	const (
		accountIndex = iota
		mintIndex
	)

	acct, err := ic.Load(ctx, accountIndex)
	if err != nil {
		return err
	}

	if !acct.IsOwnedBy(token.ProgramKey) {
		return bank.ErrIncorrectProgramID
	}

	var tokenAccount token.Account
	if !tokenAccount.Unmarshal(acct.Data) {
		return token.ErrorInvalidState
	}
	if tokenAccount.State != token.AccountStateUninitialized {
		return token.ErrorAlreadyInUse
	}

	if acct.Lamports < system.RentExemptBalance(token.AccountSize) {
		return token.ErrorNotRentExempt
	}

	if _, _, err := LoadMint(ctx, ic, mintIndex); err != nil {
		return token.ErrorInvalidMint
	}

	tokenAccount = token.Account{
		Mint:  args.Mint,
		Owner: args.Owner,
		State: token.AccountStateInitialized,
	}
	acct.Data = tokenAccount.Marshal()

	return ic.Store(ctx, accountIndex, acct)
}

type transferArgs struct {
	sourceIndex int
	// Negative for unchecked transfers
	mintIndex  int
	destIndex  int
	ownerIndex int

	amount   uint64
	decimals byte
}

func (p *Processor) transfer(ctx context.Context, ic *bank.InstructionContext, args *transferArgs) error {
	sourceAcct, source, err := LoadAccount(ctx, ic, args.sourceIndex)
	if err != nil {
		return err
	}

	destAcct, dest, err := LoadAccount(ctx, ic, args.destIndex)
	if err != nil {
		return err
	}

	if source.State == token.AccountStateFrozen || dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}

	if !bytes.Equal(source.Mint, dest.Mint) {
		return token.ErrorMintMismatch
	}

	if args.mintIndex >= 0 {
		_, mint, err := LoadMint(ctx, ic, args.mintIndex)
		if err != nil {
			return err
		}
		if !bytes.Equal(ic.Key(args.mintIndex), source.Mint) {
			return token.ErrorMintMismatch
		}
		if mint.Decimals != args.decimals {
			return token.ErrorMintDecimalsMismatch
		}
	}

	if !bytes.Equal(ic.Key(args.ownerIndex), source.Owner) {
		return token.ErrorOwnerMismatch
	}
	if !ic.IsSigner(args.ownerIndex) {
		return bank.ErrMissingRequiredSignature
	}

	if source.Amount < args.amount {
		return token.ErrorInsufficientFunds
	}

	// Self transfers are checked, but leave balances unchanged
	if bytes.Equal(sourceAcct.Address, destAcct.Address) {
		return nil
	}

	if dest.Amount > math.MaxUint64-args.amount {
		return token.ErrorOverflow
	}

	source.Amount -= args.amount
	sourceAcct.Data = source.Marshal()
	if err := ic.Store(ctx, args.sourceIndex, sourceAcct); err != nil {
		return err
	}

	dest.Amount += args.amount
	destAcct.Data = dest.Marshal()
	return ic.Store(ctx, args.destIndex, destAcct)
}

func (p *Processor) mintTo(ctx context.Context, ic *bank.InstructionContext, args *token.DecompiledMintTo) error {
	const (
		mintIndex = iota
		destIndex
		authorityIndex
	)

	mintAcct, mint, err := LoadMint(ctx, ic, mintIndex)
	if err != nil {
		return err
	}

	destAcct, dest, err := LoadAccount(ctx, ic, destIndex)
	if err != nil {
		return err
	}

	if dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}

	if !bytes.Equal(dest.Mint, args.Mint) {
		return token.ErrorMintMismatch
	}

	if len(mint.MintAuthority) == 0 || !bytes.Equal(mint.MintAuthority, args.Authority) {
		return token.ErrorOwnerMismatch
	}
	if !ic.IsSigner(authorityIndex) {
		return bank.ErrMissingRequiredSignature
	}

	if mint.Supply > math.MaxUint64-args.Amount || dest.Amount > math.MaxUint64-args.Amount {
		return token.ErrorOverflow
	}

	mint.Supply += args.Amount
	mintAcct.Data = mint.Marshal()
	if err := ic.Store(ctx, mintIndex, mintAcct); err != nil {
		return err
	}

	dest.Amount += args.Amount
	destAcct.Data = dest.Marshal()
	return ic.Store(ctx, destIndex, destAcct)
}

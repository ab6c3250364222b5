package program

import (
	"bytes"
	"context"
	"math"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	metaverf_token "github.com/metaverf/metaverf-ledger/pkg/metaverf/token"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

func (p *Processor) initialize(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		adminIndex = iota
		protocolIndex
		mintIndex
		treasuryIndex
		tokenProgramIndex
		associatedTokenProgramIndex
		systemProgramIndex
	)

	if err := ic.RequireAccounts(systemProgramIndex + 1); err != nil {
		return err
	}

	args, err := metaverf.InitializeInstructionArgsFromBinary(ic.Data)
	if err != nil {
		return invalidInstructionData(err)
	}

	log := p.log.WithFields(logrus.Fields{
		"method": "initialize",
		"admin":  base58.Encode(ic.Key(adminIndex)),
	})

	if args.AnnualFee == 0 || args.SubscriptionDuration == 0 || args.SubscriptionDuration > math.MaxInt64 {
		return metaverf.ErrInvalidAmount
	}

	if err := requireProgram(ic, tokenProgramIndex, metaverf.SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}
	if err := requireProgram(ic, associatedTokenProgramIndex, metaverf.SPL_ASSOCIATED_TOKEN_PROGRAM_ID); err != nil {
		return err
	}
	if err := requireProgram(ic, systemProgramIndex, metaverf.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}

	if !ic.IsSigner(adminIndex) {
		return bank.ErrMissingRequiredSignature
	}

	protocolAddress, bump, err := metaverf.GetProtocolAddress()
	if err != nil {
		return err
	}
	if !bytes.Equal(ic.Key(protocolIndex), protocolAddress) {
		return metaverf.ErrInvalidAccount
	}
	if err := requireEmpty(ctx, ic, protocolIndex, metaverf.ErrAlreadyInitialized); err != nil {
		return err
	}

	if _, _, err := metaverf_token.LoadMint(ctx, ic, mintIndex); err != nil {
		return metaverf.ErrInvalidAccount
	}

	treasury, err := metaverf.GetTreasuryAddress(&metaverf.GetTreasuryAddressArgs{
		Protocol: protocolAddress,
		Mint:     ic.Key(mintIndex),
	})
	if err != nil {
		return err
	}
	if !bytes.Equal(ic.Key(treasuryIndex), treasury) {
		return metaverf.ErrInvalidAccount
	}
	if err := requireEmpty(ctx, ic, treasuryIndex, metaverf.ErrAlreadyInitialized); err != nil {
		return err
	}

	state := &metaverf.ProtocolAccount{
		Admin:                ic.Key(adminIndex),
		Mint:                 ic.Key(mintIndex),
		AnnualFee:            args.AnnualFee,
		SubscriptionDuration: args.SubscriptionDuration,
		CollegeCount:         0,
		Treasury:             treasury,
		Bump:                 bump,
	}

	if err := createProgramAccount(
		ctx,
		ic,
		adminIndex,
		protocolIndex,
		[][]byte{metaverf.ProtocolPrefix, {bump}},
		state.Marshal(),
	); err != nil {
		return err
	}

	if _, err := metaverf_token.InvokeCreateAssociatedAccount(
		ctx,
		ic,
		ic.Key(adminIndex),
		protocolAddress,
		ic.Key(mintIndex),
		false,
	); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"annual_fee":            args.AnnualFee,
		"subscription_duration": args.SubscriptionDuration,
		"treasury":              base58.Encode(treasury),
	}).Info("protocol initialized")
	return nil
}

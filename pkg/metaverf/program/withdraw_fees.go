package program

import (
	"bytes"
	"context"

	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	metaverf_token "github.com/metaverf/metaverf-ledger/pkg/metaverf/token"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
)

func (p *Processor) withdrawFees(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		adminIndex = iota
		protocolIndex
		mintIndex
		treasuryIndex
		destinationIndex
		tokenProgramIndex
		associatedTokenProgramIndex
		systemProgramIndex
	)

	if err := ic.RequireAccounts(systemProgramIndex + 1); err != nil {
		return err
	}

	args, err := metaverf.WithdrawFeesInstructionArgsFromBinary(ic.Data)
	if err != nil {
		return invalidInstructionData(err)
	}

	log := p.log.WithFields(logrus.Fields{
		"method":    "withdrawFees",
		"requested": args.Amount,
	})

	if err := requireProgram(ic, tokenProgramIndex, metaverf.SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}
	if err := requireProgram(ic, associatedTokenProgramIndex, metaverf.SPL_ASSOCIATED_TOKEN_PROGRAM_ID); err != nil {
		return err
	}
	if err := requireProgram(ic, systemProgramIndex, metaverf.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}

	_, protocol, bump, err := loadProtocol(ctx, ic, protocolIndex)
	if err != nil {
		return err
	}
	if err := requireAuthority(ic, adminIndex, protocol.Admin); err != nil {
		return err
	}

	decimals, err := loadFeeAccounts(ctx, ic, protocol, mintIndex, treasuryIndex)
	if err != nil {
		return err
	}

	treasury, err := loadTokenAccount(ctx, ic, treasuryIndex, protocol.Mint)
	if err != nil {
		return err
	}

	amount := args.Amount
	switch {
	case amount == 0 && treasury.Amount == 0:
		return metaverf.ErrInvalidAmount
	case amount == 0:
		amount = treasury.Amount
	case amount > treasury.Amount:
		log.WithField("balance", treasury.Amount).Debug("withdrawal exceeds treasury balance")
		return metaverf.ErrInsufficientFunds
	}

	destination, err := token.GetAssociatedAccount(protocol.Admin, protocol.Mint)
	if err != nil {
		return err
	}
	if !bytes.Equal(ic.Key(destinationIndex), destination) {
		return metaverf.ErrInvalidAccount
	}

	existing, err := ic.Load(ctx, destinationIndex)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		tokenAccount, err := metaverf_token.ParseAccount(existing)
		if err != nil || !bytes.Equal(tokenAccount.Owner, protocol.Admin) || !bytes.Equal(tokenAccount.Mint, protocol.Mint) {
			return metaverf.ErrInvalidAccount
		}
	}

	if _, err := metaverf_token.InvokeCreateAssociatedAccount(
		ctx,
		ic,
		protocol.Admin,
		protocol.Admin,
		protocol.Mint,
		true,
	); err != nil {
		return err
	}

	if err := metaverf_token.InvokeTransferChecked(
		ctx,
		ic,
		protocol.Treasury,
		protocol.Mint,
		destination,
		ic.Key(protocolIndex),
		amount,
		decimals,
		[][]byte{metaverf.ProtocolPrefix, {bump}},
	); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"amount":  amount,
		"balance": treasury.Amount - amount,
	}).Info("fees withdrawn")
	return nil
}

package program

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	metaverf_token "github.com/metaverf/metaverf-ledger/pkg/metaverf/token"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

func (p *Processor) renewSubscription(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		adminIndex = iota
		collegeAuthorityIndex
		protocolIndex
		collegeIndex
		mintIndex
		sourceIndex
		treasuryIndex
		tokenProgramIndex
	)

	if err := ic.RequireAccounts(tokenProgramIndex + 1); err != nil {
		return err
	}

	args, err := metaverf.RenewSubscriptionInstructionArgsFromBinary(ic.Data)
	if err != nil {
		return invalidInstructionData(err)
	}

	log := p.log.WithFields(logrus.Fields{
		"method":     "renewSubscription",
		"college_id": args.CollegeId,
	})

	if err := requireProgram(ic, tokenProgramIndex, metaverf.SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}

	_, protocol, _, err := loadProtocol(ctx, ic, protocolIndex)
	if err != nil {
		return err
	}
	if err := requireAuthority(ic, adminIndex, protocol.Admin); err != nil {
		return err
	}

	collegeAccount, college, err := loadCollege(ctx, ic, collegeIndex, args.CollegeId)
	if err != nil {
		return err
	}
	if err := requireAuthority(ic, collegeAuthorityIndex, college.Authority); err != nil {
		return err
	}

	decimals, err := loadFeeAccounts(ctx, ic, protocol, mintIndex, treasuryIndex)
	if err != nil {
		return err
	}
	if err := checkFeePayment(ctx, ic, protocol, sourceIndex, college.Authority); err != nil {
		return err
	}

	// Time left on a live subscription carries over, while a lapsed one
	// restarts from now
	base := college.Expiry
	if ic.Now > base {
		base = ic.Now
	}
	expiry, err := extendExpiry(base, protocol.SubscriptionDuration)
	if err != nil {
		return err
	}

	if err := metaverf_token.InvokeTransferChecked(
		ctx,
		ic,
		ic.Key(sourceIndex),
		protocol.Mint,
		protocol.Treasury,
		college.Authority,
		protocol.AnnualFee,
		decimals,
	); err != nil {
		return err
	}

	previous := college.Expiry

	college.Active = true
	college.Expiry = expiry
	college.LastPayment = ic.Now
	collegeAccount.Data = college.Marshal()
	if err := ic.Store(ctx, collegeIndex, collegeAccount); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"previous_expiry": previous,
		"expiry":          expiry,
		"fee":             protocol.AnnualFee,
	}).Info("subscription renewed")
	return nil
}

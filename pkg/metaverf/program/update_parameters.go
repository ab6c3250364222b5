package program

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

// updateParameters only affects payments made from now on. Existing expiries
// are left as they are.
func (p *Processor) updateParameters(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		adminIndex = iota
		protocolIndex
	)

	if err := ic.RequireAccounts(protocolIndex + 1); err != nil {
		return err
	}

	args, err := metaverf.UpdateParametersInstructionArgsFromBinary(ic.Data)
	if err != nil {
		return invalidInstructionData(err)
	}

	if args.NewAnnualFee == 0 || args.NewSubscriptionDuration == 0 || args.NewSubscriptionDuration > math.MaxInt64 {
		return metaverf.ErrInvalidAmount
	}

	protocolAccount, protocol, _, err := loadProtocol(ctx, ic, protocolIndex)
	if err != nil {
		return err
	}
	if err := requireAuthority(ic, adminIndex, protocol.Admin); err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"method":                    "updateParameters",
		"old_annual_fee":            protocol.AnnualFee,
		"old_subscription_duration": protocol.SubscriptionDuration,
	})

	protocol.AnnualFee = args.NewAnnualFee
	protocol.SubscriptionDuration = args.NewSubscriptionDuration
	protocolAccount.Data = protocol.Marshal()
	if err := ic.Store(ctx, protocolIndex, protocolAccount); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"annual_fee":            protocol.AnnualFee,
		"subscription_duration": protocol.SubscriptionDuration,
	}).Info("parameters updated")
	return nil
}

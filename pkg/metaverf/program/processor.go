package program

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/registry"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

// Processor executes Metaverf program instructions. Each handler performs all
// of its checks before its first write, and relies on the ledger discarding
// the transaction's bank on any failure.
type Processor struct {
	log      *logrus.Entry
	registry registry.CollectionRegistry
}

func NewProcessor(collections registry.CollectionRegistry) *Processor {
	return &Processor{
		log:      logrus.StandardLogger().WithField("type", "metaverf/program"),
		registry: collections,
	}
}

// Process implements bank.Processor.Process
func (p *Processor) Process(ctx context.Context, ic *bank.InstructionContext) error {
	instructionType := metaverf.GetInstructionType(ic.Data)

	log := p.log.WithField("instruction", instructionType.String())

	var err error
	switch instructionType {
	case metaverf.InstructionTypeInitialize:
		err = p.initialize(ctx, ic)
	case metaverf.InstructionTypeRegisterCollege:
		err = p.registerCollege(ctx, ic)
	case metaverf.InstructionTypeRenewSubscription:
		err = p.renewSubscription(ctx, ic)
	case metaverf.InstructionTypeUpdateParameters:
		err = p.updateParameters(ctx, ic)
	case metaverf.InstructionTypeAddCollection:
		err = p.addCollection(ctx, ic)
	case metaverf.InstructionTypeMintCertificate:
		err = p.mintCertificate(ctx, ic)
	case metaverf.InstructionTypeWithdrawFees:
		err = p.withdrawFees(ctx, ic)
	default:
		return errors.Wrap(bank.ErrInvalidInstructionData, "unknown instruction discriminator")
	}

	if err != nil {
		log.WithError(err).Debug("instruction failed")
	}
	return err
}

func invalidInstructionData(err error) error {
	return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
}

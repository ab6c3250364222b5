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

func (p *Processor) registerCollege(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		adminIndex = iota
		collegeAuthorityIndex
		protocolIndex
		collegeIndex
		authorityRecordIndex
		mintIndex
		sourceIndex
		treasuryIndex
		tokenProgramIndex
		systemProgramIndex
	)

	if err := ic.RequireAccounts(systemProgramIndex + 1); err != nil {
		return err
	}

	args, err := metaverf.RegisterCollegeInstructionArgsFromBinary(ic.Data)
	if err != nil {
		return invalidInstructionData(err)
	}

	log := p.log.WithFields(logrus.Fields{
		"method":     "registerCollege",
		"college_id": args.CollegeId,
		"authority":  base58.Encode(ic.Key(collegeAuthorityIndex)),
	})

	if err := requireProgram(ic, tokenProgramIndex, metaverf.SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}
	if err := requireProgram(ic, systemProgramIndex, metaverf.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}

	protocolAccount, protocol, _, err := loadProtocol(ctx, ic, protocolIndex)
	if err != nil {
		return err
	}

	if err := requireAuthority(ic, adminIndex, protocol.Admin); err != nil {
		return err
	}
	if !ic.IsSigner(collegeAuthorityIndex) {
		return bank.ErrMissingRequiredSignature
	}
	authority := ic.Key(collegeAuthorityIndex)

	if protocol.CollegeCount == math.MaxUint16 {
		return metaverf.ErrOverflow
	}
	if args.CollegeId != protocol.CollegeCount+1 {
		log.WithField("expected", protocol.CollegeCount+1).Debug("college id out of sequence")
		return metaverf.ErrSequenceMismatch
	}

	collegeAddress, collegeBump, err := metaverf.GetCollegeAddress(&metaverf.GetCollegeAddressArgs{
		CollegeId: args.CollegeId,
	})
	if err != nil {
		return err
	}
	if !bytes.Equal(ic.Key(collegeIndex), collegeAddress) {
		return metaverf.ErrInvalidAccount
	}
	if err := requireEmpty(ctx, ic, collegeIndex, metaverf.ErrAlreadyInitialized); err != nil {
		return err
	}

	recordAddress, recordBump, err := metaverf.GetAuthorityRecordAddress(&metaverf.GetAuthorityRecordAddressArgs{
		Authority: authority,
	})
	if err != nil {
		return err
	}
	if !bytes.Equal(ic.Key(authorityRecordIndex), recordAddress) {
		return metaverf.ErrInvalidAccount
	}
	if err := requireEmpty(ctx, ic, authorityRecordIndex, metaverf.ErrDuplicateAuthority); err != nil {
		return err
	}

	decimals, err := loadFeeAccounts(ctx, ic, protocol, mintIndex, treasuryIndex)
	if err != nil {
		return err
	}
	if err := checkFeePayment(ctx, ic, protocol, sourceIndex, authority); err != nil {
		return err
	}

	expiry, err := extendExpiry(ic.Now, protocol.SubscriptionDuration)
	if err != nil {
		return err
	}

	college := &metaverf.CollegeAccount{
		Id:          args.CollegeId,
		Authority:   authority,
		Active:      true,
		Expiry:      expiry,
		LastPayment: ic.Now,
		Bump:        collegeBump,
	}
	if err := createProgramAccount(
		ctx,
		ic,
		collegeAuthorityIndex,
		collegeIndex,
		[][]byte{metaverf.CollegePrefix, metaverf.CollegeIdSeed(args.CollegeId), {collegeBump}},
		college.Marshal(),
	); err != nil {
		return err
	}

	record := &metaverf.AuthorityRecordAccount{
		Authority: authority,
		CollegeId: args.CollegeId,
		Bump:      recordBump,
	}
	if err := createProgramAccount(
		ctx,
		ic,
		collegeAuthorityIndex,
		authorityRecordIndex,
		[][]byte{metaverf.AuthorityRecordPrefix, authority, {recordBump}},
		record.Marshal(),
	); err != nil {
		return err
	}

	if err := metaverf_token.InvokeTransferChecked(
		ctx,
		ic,
		ic.Key(sourceIndex),
		protocol.Mint,
		protocol.Treasury,
		authority,
		protocol.AnnualFee,
		decimals,
	); err != nil {
		return err
	}

	protocol.CollegeCount++
	protocolAccount.Data = protocol.Marshal()
	if err := ic.Store(ctx, protocolIndex, protocolAccount); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"expiry": expiry,
		"fee":    protocol.AnnualFee,
	}).Info("college registered")
	return nil
}

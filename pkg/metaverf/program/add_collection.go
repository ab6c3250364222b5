package program

import (
	"bytes"
	"context"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/registry"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

func (p *Processor) addCollection(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		collegeAuthorityIndex = iota
		protocolIndex
		collegeIndex
		collectionIndex
		collectionRecordIndex
		mplCoreProgramIndex
		systemProgramIndex
	)

	if err := ic.RequireAccounts(systemProgramIndex + 1); err != nil {
		return err
	}

	args, err := metaverf.AddCollectionInstructionArgsFromBinary(ic.Data)
	if err != nil {
		return invalidInstructionData(err)
	}

	log := p.log.WithFields(logrus.Fields{
		"method":     "addCollection",
		"college_id": args.CollegeId,
		"collection": base58.Encode(ic.Key(collectionIndex)),
	})

	if err := args.Metadata.Validate(); err != nil {
		return err
	}

	if err := requireProgram(ic, mplCoreProgramIndex, metaverf.MPL_CORE_PROGRAM_ID); err != nil {
		return err
	}
	if err := requireProgram(ic, systemProgramIndex, metaverf.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}

	if _, _, _, err := loadProtocol(ctx, ic, protocolIndex); err != nil {
		return err
	}

	collegeAccount, college, err := loadCollege(ctx, ic, collegeIndex, args.CollegeId)
	if err != nil {
		return err
	}
	if err := requireAuthority(ic, collegeAuthorityIndex, college.Authority); err != nil {
		return err
	}

	if !college.IsSubscriptionLive(ic.Now) {
		log.WithField("expiry", college.Expiry).Debug("subscription is not live")
		return metaverf.ErrSubscriptionExpired
	}
	if college.CollectionCount >= metaverf.MaxCollectionsPerCollege {
		return metaverf.ErrCollectionLimitReached
	}

	if !ic.IsSigner(collectionIndex) {
		return bank.ErrMissingRequiredSignature
	}
	if err := requireEmpty(ctx, ic, collectionIndex, metaverf.ErrAlreadyInitialized); err != nil {
		return err
	}

	recordAddress, recordBump, err := metaverf.GetCollectionRecordAddress(&metaverf.GetCollectionRecordAddressArgs{
		CollegeId:  args.CollegeId,
		Collection: ic.Key(collectionIndex),
	})
	if err != nil {
		return err
	}
	if !bytes.Equal(ic.Key(collectionRecordIndex), recordAddress) {
		return metaverf.ErrInvalidAccount
	}
	if err := requireEmpty(ctx, ic, collectionRecordIndex, metaverf.ErrAlreadyInitialized); err != nil {
		return err
	}

	record := &metaverf.CollectionRecordAccount{
		CollegeId:  args.CollegeId,
		Collection: ic.Key(collectionIndex),
		Bump:       recordBump,
	}
	if err := createProgramAccount(
		ctx,
		ic,
		collegeAuthorityIndex,
		collectionRecordIndex,
		[][]byte{metaverf.CollectionRecordPrefix, metaverf.CollegeIdSeed(args.CollegeId), ic.Key(collectionIndex), {recordBump}},
		record.Marshal(),
	); err != nil {
		return err
	}

	if _, err := p.registry.CreateCollection(ctx, ic, &registry.CreateCollectionRequest{
		Collection:      ic.Key(collectionIndex),
		UpdateAuthority: college.Authority,
		Payer:           college.Authority,
		Name:            args.Metadata.Name,
		Uri:             args.Metadata.Uri,
	}); err != nil {
		return err
	}

	college.CollectionCount++
	collegeAccount.Data = college.Marshal()
	if err := ic.Store(ctx, collegeIndex, collegeAccount); err != nil {
		return err
	}

	log.WithField("collection_count", college.CollectionCount).Info("collection added")
	return nil
}

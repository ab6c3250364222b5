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

func (p *Processor) mintCertificate(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		collegeAuthorityIndex = iota
		protocolIndex
		collegeIndex
		collectionRecordIndex
		collectionIndex
		assetIndex
		studentIndex
		mplCoreProgramIndex
		systemProgramIndex
	)

	if err := ic.RequireAccounts(systemProgramIndex + 1); err != nil {
		return err
	}

	args, err := metaverf.MintCertificateInstructionArgsFromBinary(ic.Data)
	if err != nil {
		return invalidInstructionData(err)
	}

	log := p.log.WithFields(logrus.Fields{
		"method":     "mintCertificate",
		"college_id": args.CollegeId,
		"collection": base58.Encode(ic.Key(collectionIndex)),
		"student":    base58.Encode(ic.Key(studentIndex)),
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

	_, college, err := loadCollege(ctx, ic, collegeIndex, args.CollegeId)
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

	if err := p.checkCollectionRecord(ctx, ic, collectionRecordIndex, args.CollegeId, ic.Key(collectionIndex)); err != nil {
		return err
	}

	if !ic.IsSigner(assetIndex) {
		return bank.ErrMissingRequiredSignature
	}
	if err := requireEmpty(ctx, ic, assetIndex, metaverf.ErrAlreadyInitialized); err != nil {
		return err
	}

	if err := requireStudentWallet(ctx, ic, studentIndex); err != nil {
		return err
	}

	var attributes []registry.Attribute
	for _, attribute := range args.Metadata.Attributes() {
		attributes = append(attributes, registry.Attribute{Key: attribute[0], Value: attribute[1]})
	}

	asset, err := p.registry.MintAsset(ctx, ic, &registry.MintAssetRequest{
		Asset:           ic.Key(assetIndex),
		Collection:      ic.Key(collectionIndex),
		Authority:       college.Authority,
		Payer:           college.Authority,
		Owner:           ic.Key(studentIndex),
		Name:            args.Metadata.Name,
		Uri:             args.Metadata.Uri,
		Attributes:      attributes,
		NonTransferable: true,
	})
	if err != nil {
		return err
	}

	log.WithField("asset", base58.Encode(asset)).Info("certificate minted")
	return nil
}

// requireStudentWallet checks the certificate recipient is a system owned
// wallet. The asset program's id stands in for an omitted owner, which would
// hand the certificate to the payer instead.
func requireStudentWallet(ctx context.Context, ic *bank.InstructionContext, i int) error {
	if bytes.Equal(ic.Key(i), metaverf.MPL_CORE_PROGRAM_ID) {
		return metaverf.ErrInvalidAccount
	}

	acct, err := ic.Load(ctx, i)
	if err != nil {
		return err
	}
	if !acct.IsOwnedBy(metaverf.SYSTEM_PROGRAM_ID) {
		return metaverf.ErrInvalidAccount
	}
	return nil
}

// checkCollectionRecord verifies the collection was added by the college
func (p *Processor) checkCollectionRecord(ctx context.Context, ic *bank.InstructionContext, i int, collegeId uint16, collection []byte) error {
	expected, _, err := metaverf.GetCollectionRecordAddress(&metaverf.GetCollectionRecordAddressArgs{
		CollegeId:  collegeId,
		Collection: collection,
	})
	if err != nil {
		return err
	}
	if !bytes.Equal(ic.Key(i), expected) {
		return metaverf.ErrCollectionNotFound
	}

	acct, err := ic.Load(ctx, i)
	if err != nil {
		return err
	}
	if acct.IsEmpty() || !acct.IsOwnedBy(metaverf.PROGRAM_ID) {
		return metaverf.ErrCollectionNotFound
	}

	var record metaverf.CollectionRecordAccount
	if err := record.Unmarshal(acct.Data); err != nil {
		return metaverf.ErrCollectionNotFound
	}
	if record.CollegeId != collegeId || !bytes.Equal(record.Collection, collection) {
		return metaverf.ErrCollectionNotFound
	}
	return nil
}

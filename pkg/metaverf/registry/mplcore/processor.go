package mplcore

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	metaverf_system "github.com/metaverf/metaverf-ledger/pkg/metaverf/system"
	"github.com/metaverf/metaverf-ledger/pkg/solana/mplcore"
)

// Processor executes the subset of the core asset program used for
// certificates: collection creation, minting into a collection and transfers
type Processor struct {
	log *logrus.Entry
}

func NewProcessor() *Processor {
	return &Processor{
		log: logrus.StandardLogger().WithField("type", "metaverf/registry/mplcore"),
	}
}

// Process implements bank.Processor.Process
func (p *Processor) Process(ctx context.Context, ic *bank.InstructionContext) error {
	instructionType, err := mplcore.GetInstructionType(ic.Data)
	if err != nil {
		return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
	}

	switch instructionType {
	case mplcore.InstructionTypeCreateCollectionV1:
		return p.createCollection(ctx, ic)
	case mplcore.InstructionTypeCreateV1:
		return p.create(ctx, ic)
	case mplcore.InstructionTypeTransferV1:
		return p.transfer(ctx, ic)
	default:
		return errors.Wrapf(bank.ErrInvalidInstructionData, "unsupported instruction %s", instructionType)
	}
}

func (p *Processor) createCollection(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		collectionIndex = iota
		updateAuthorityIndex
		payerIndex
	)

	if err := ic.RequireAccounts(mplcore.CreateCollectionV1InstructionAccountsCount); err != nil {
		return err
	}

	args, err := mplcore.CreateCollectionV1InstructionArgsFromBinary(ic.Data)
	if err != nil {
		return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
	}

	log := p.log.WithFields(logrus.Fields{
		"method":     "createCollection",
		"collection": base58.Encode(ic.Key(collectionIndex)),
	})

	if !ic.IsSigner(collectionIndex) || !ic.IsSigner(payerIndex) {
		return bank.ErrMissingRequiredSignature
	}

	if err := validatePlugins(args.Plugins); err != nil {
		return err
	}

	existing, err := ic.Load(ctx, collectionIndex)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		return mplcore.ErrAlreadyInitialized
	}

	updateAuthority := ic.Key(updateAuthorityIndex)
	if mplcore.IsPlaceholder(updateAuthority) {
		updateAuthority = ic.Key(payerIndex)
	}

	state := &mplcore.CollectionV1{
		UpdateAuthority: updateAuthority,
		Name:            args.Name,
		Uri:             args.Uri,
		Plugins:         args.Plugins,
	}

	if err := p.createAccount(ctx, ic, payerIndex, collectionIndex, state.Marshal()); err != nil {
		return err
	}

	log.WithField("update_authority", base58.Encode(updateAuthority)).Debug("collection created")
	return nil
}

func (p *Processor) create(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		assetIndex = iota
		collectionIndex
		authorityIndex
		payerIndex
		ownerIndex
		updateAuthorityIndex
	)

	if err := ic.RequireAccounts(mplcore.CreateV1InstructionAccountsCount); err != nil {
		return err
	}

	args, err := mplcore.CreateV1InstructionArgsFromBinary(ic.Data)
	if err != nil {
		return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
	}
	if args.DataState != mplcore.DataStateAccount {
		return errors.Wrap(bank.ErrInvalidInstructionData, "only account backed assets are supported")
	}

	log := p.log.WithFields(logrus.Fields{
		"method": "create",
		"asset":  base58.Encode(ic.Key(assetIndex)),
	})

	if !ic.IsSigner(assetIndex) || !ic.IsSigner(payerIndex) {
		return bank.ErrMissingRequiredSignature
	}

	if err := validatePlugins(args.Plugins); err != nil {
		return err
	}

	existing, err := ic.Load(ctx, assetIndex)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		return mplcore.ErrAlreadyInitialized
	}

	owner := ic.Key(ownerIndex)
	if mplcore.IsPlaceholder(owner) {
		owner = ic.Key(payerIndex)
	}

	state := &mplcore.AssetV1{
		Owner: owner,
		Name:  args.Name,
		Uri:   args.Uri,

		Plugins: args.Plugins,
	}

	var collectionAccount *bank.Account
	var collection *mplcore.CollectionV1

	if !mplcore.IsPlaceholder(ic.Key(collectionIndex)) {
		collectionAccount, collection, err = loadCollection(ctx, ic, collectionIndex)
		if err != nil {
			return err
		}

		authority, isSigner := ic.Key(payerIndex), ic.IsSigner(payerIndex)
		if !mplcore.IsPlaceholder(ic.Key(authorityIndex)) {
			authority, isSigner = ic.Key(authorityIndex), ic.IsSigner(authorityIndex)
		}

		if !isSigner {
			return bank.ErrMissingRequiredSignature
		}
		if !bytes.Equal(authority, collection.UpdateAuthority) {
			log.WithField("authority", base58.Encode(authority)).Debug("authority does not control collection")
			return mplcore.ErrInvalidAuthority
		}

		if collection.NumMinted == math.MaxUint32 || collection.CurrentSize == math.MaxUint32 {
			return mplcore.ErrNumericalOverflow
		}

		state.UpdateAuthority = mplcore.UpdateAuthority{
			Type:    mplcore.UpdateAuthorityCollection,
			Address: ic.Key(collectionIndex),
		}
	} else {
		updateAuthority := ic.Key(updateAuthorityIndex)
		if mplcore.IsPlaceholder(updateAuthority) {
			updateAuthority = ic.Key(payerIndex)
		}

		state.UpdateAuthority = mplcore.UpdateAuthority{
			Type:    mplcore.UpdateAuthorityAddress,
			Address: updateAuthority,
		}
	}

	if err := p.createAccount(ctx, ic, payerIndex, assetIndex, state.Marshal()); err != nil {
		return err
	}

	if collection != nil {
		collection.NumMinted++
		collection.CurrentSize++

		collectionAccount.Data = collection.Marshal()
		if err := ic.Store(ctx, collectionIndex, collectionAccount); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"owner":  base58.Encode(owner),
		"frozen": state.IsFrozen(),
	}).Debug("asset created")
	return nil
}

func (p *Processor) transfer(ctx context.Context, ic *bank.InstructionContext) error {
	const (
		assetIndex = iota
		collectionIndex
		payerIndex
		authorityIndex
		newOwnerIndex
	)

	if err := mplcore.ValidateTransferV1InstructionData(ic.Data); err != nil {
		return errors.Wrap(bank.ErrInvalidInstructionData, err.Error())
	}

	if err := ic.RequireAccounts(mplcore.TransferV1InstructionAccountsCount); err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"method": "transfer",
		"asset":  base58.Encode(ic.Key(assetIndex)),
	})

	acct, asset, err := loadAsset(ctx, ic, assetIndex)
	if err != nil {
		return err
	}

	authority, isSigner := ic.Key(payerIndex), ic.IsSigner(payerIndex)
	if !mplcore.IsPlaceholder(ic.Key(authorityIndex)) {
		authority, isSigner = ic.Key(authorityIndex), ic.IsSigner(authorityIndex)
	}

	if !isSigner {
		return bank.ErrMissingRequiredSignature
	}
	if !bytes.Equal(authority, asset.Owner) {
		return mplcore.ErrInvalidAuthority
	}

	if asset.UpdateAuthority.Type == mplcore.UpdateAuthorityCollection {
		if mplcore.IsPlaceholder(ic.Key(collectionIndex)) {
			return mplcore.ErrMissingCollection
		}
		if !bytes.Equal(ic.Key(collectionIndex), asset.UpdateAuthority.Address) {
			return mplcore.ErrInvalidCollection
		}
	}

	if asset.IsFrozen() {
		log.Debug("asset is frozen")
		return mplcore.ErrAssetIsFrozen
	}

	asset.Owner = cloneKey(ic.Key(newOwnerIndex))
	acct.Data = asset.Marshal()
	if err := ic.Store(ctx, assetIndex, acct); err != nil {
		return err
	}

	log.WithField("new_owner", base58.Encode(asset.Owner)).Debug("asset transferred")
	return nil
}

// createAccount allocates a rent exempt account owned by the program through
// the system program and writes its initial state
func (p *Processor) createAccount(ctx context.Context, ic *bank.InstructionContext, payerIndex, addressIndex int, data []byte) error {
	if err := metaverf_system.InvokeCreateAccount(
		ctx,
		ic,
		ic.Key(payerIndex),
		ic.Key(addressIndex),
		mplcore.PROGRAM_ID,
		uint64(len(data)),
	); err != nil {
		return err
	}

	created, err := ic.Load(ctx, addressIndex)
	if err != nil {
		return err
	}

	created.Data = data
	return ic.Store(ctx, addressIndex, created)
}

func validatePlugins(plugins []mplcore.Plugin) error {
	for _, plugin := range plugins {
		switch plugin.Type {
		case mplcore.PluginTypeFreezeDelegate, mplcore.PluginTypePermanentFreezeDelegate, mplcore.PluginTypeAttributes:
		default:
			return mplcore.ErrInvalidPlugin
		}
	}
	return nil
}

func cloneKey(key ed25519.PublicKey) ed25519.PublicKey {
	cloned := make(ed25519.PublicKey, len(key))
	copy(cloned, key)
	return cloned
}

package mplcore

import (
	"context"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/solana/mplcore"
)

// ParseAsset decodes an asset account owned by the core asset program
func ParseAsset(acct *bank.Account) (*mplcore.AssetV1, error) {
	if !acct.IsOwnedBy(mplcore.PROGRAM_ID) {
		return nil, mplcore.ErrIncorrectAccount
	}

	var asset mplcore.AssetV1
	if err := asset.Unmarshal(acct.Data); err != nil {
		return nil, mplcore.ErrDeserialization
	}
	return &asset, nil
}

// ParseCollection decodes a collection account owned by the core asset program
func ParseCollection(acct *bank.Account) (*mplcore.CollectionV1, error) {
	if !acct.IsOwnedBy(mplcore.PROGRAM_ID) {
		return nil, mplcore.ErrInvalidCollection
	}

	var collection mplcore.CollectionV1
	if err := collection.Unmarshal(acct.Data); err != nil {
		return nil, mplcore.ErrInvalidCollection
	}
	return &collection, nil
}

func loadAsset(ctx context.Context, ic *bank.InstructionContext, i int) (*bank.Account, *mplcore.AssetV1, error) {
	acct, err := ic.Load(ctx, i)
	if err != nil {
		return nil, nil, err
	}

	asset, err := ParseAsset(acct)
	if err != nil {
		return nil, nil, err
	}
	return acct, asset, nil
}

func loadCollection(ctx context.Context, ic *bank.InstructionContext, i int) (*bank.Account, *mplcore.CollectionV1, error) {
	acct, err := ic.Load(ctx, i)
	if err != nil {
		return nil, nil, err
	}

	collection, err := ParseCollection(acct)
	if err != nil {
		return nil, nil, err
	}
	return acct, collection, nil
}

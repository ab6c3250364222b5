package mplcore

import (
	"context"
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/registry"
	"github.com/metaverf/metaverf-ledger/pkg/solana/mplcore"
)

type client struct {
}

// New returns a CollectionRegistry that invokes the core asset program
func New() registry.CollectionRegistry {
	return &client{}
}

// CreateCollection implements registry.CollectionRegistry.CreateCollection
func (c *client) CreateCollection(ctx context.Context, ic *bank.InstructionContext, req *registry.CreateCollectionRequest) (ed25519.PublicKey, error) {
	ix := mplcore.NewCreateCollectionV1Instruction(
		&mplcore.CreateCollectionV1InstructionAccounts{
			Collection:      req.Collection,
			UpdateAuthority: req.UpdateAuthority,
			Payer:           req.Payer,
		},
		&mplcore.CreateCollectionV1InstructionArgs{
			Name: req.Name,
			Uri:  req.Uri,
		},
	)

	if err := ic.Invoke(ctx, ix); err != nil {
		return nil, err
	}
	return req.Collection, nil
}

// MintAsset implements registry.CollectionRegistry.MintAsset
func (c *client) MintAsset(ctx context.Context, ic *bank.InstructionContext, req *registry.MintAssetRequest) (ed25519.PublicKey, error) {
	var plugins []mplcore.Plugin

	if req.NonTransferable {
		plugins = append(plugins, mplcore.NewPermanentFreezeDelegatePlugin(
			true,
			&mplcore.PluginAuthority{Type: mplcore.PluginAuthorityNone},
		))
	}

	if len(req.Attributes) > 0 {
		attributes := make([]mplcore.Attribute, len(req.Attributes))
		for i, attribute := range req.Attributes {
			attributes[i] = mplcore.Attribute{Key: attribute.Key, Value: attribute.Value}
		}
		plugins = append(plugins, mplcore.NewAttributesPlugin(
			attributes,
			&mplcore.PluginAuthority{Type: mplcore.PluginAuthorityNone},
		))
	}

	ix := mplcore.NewCreateV1Instruction(
		&mplcore.CreateV1InstructionAccounts{
			Asset:      req.Asset,
			Collection: req.Collection,
			Authority:  req.Authority,
			Payer:      req.Payer,
			Owner:      req.Owner,
		},
		&mplcore.CreateV1InstructionArgs{
			DataState: mplcore.DataStateAccount,
			Name:      req.Name,
			Uri:       req.Uri,
			Plugins:   plugins,
		},
	)

	if err := ic.Invoke(ctx, ix); err != nil {
		return nil, err
	}
	return req.Asset, nil
}

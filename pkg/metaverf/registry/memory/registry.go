package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/registry"
	"github.com/metaverf/metaverf-ledger/pkg/solana/mplcore"
)

type Collection struct {
	Address         ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
	Name            string
	Uri             string
	NumMinted       uint32
}

type Asset struct {
	Address         ed25519.PublicKey
	Collection      ed25519.PublicKey
	Owner           ed25519.PublicKey
	Name            string
	Uri             string
	Attributes      []registry.Attribute
	NonTransferable bool
}

// Registry is an in memory CollectionRegistry. State lives outside the bank,
// so it is not rolled back when the enclosing transaction fails.
type Registry struct {
	mu          sync.Mutex
	collections map[string]*Collection
	assets      map[string]*Asset
}

func New() *Registry {
	return &Registry{
		collections: make(map[string]*Collection),
		assets:      make(map[string]*Asset),
	}
}

// CreateCollection implements registry.CollectionRegistry.CreateCollection
func (r *Registry) CreateCollection(_ context.Context, ic *bank.InstructionContext, req *registry.CreateCollectionRequest) (ed25519.PublicKey, error) {
	if !isSigner(ic, req.Collection) || !isSigner(ic, req.Payer) {
		return nil, bank.ErrMissingRequiredSignature
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := base58.Encode(req.Collection)
	if _, ok := r.collections[key]; ok {
		return nil, mplcore.ErrAlreadyInitialized
	}

	r.collections[key] = &Collection{
		Address:         req.Collection,
		UpdateAuthority: req.UpdateAuthority,
		Name:            req.Name,
		Uri:             req.Uri,
	}
	return req.Collection, nil
}

// MintAsset implements registry.CollectionRegistry.MintAsset
func (r *Registry) MintAsset(_ context.Context, ic *bank.InstructionContext, req *registry.MintAssetRequest) (ed25519.PublicKey, error) {
	if !isSigner(ic, req.Asset) || !isSigner(ic, req.Payer) || !isSigner(ic, req.Authority) {
		return nil, bank.ErrMissingRequiredSignature
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	collection, ok := r.collections[base58.Encode(req.Collection)]
	if !ok {
		return nil, mplcore.ErrInvalidCollection
	}
	if !bytes.Equal(collection.UpdateAuthority, req.Authority) {
		return nil, mplcore.ErrInvalidAuthority
	}

	key := base58.Encode(req.Asset)
	if _, ok := r.assets[key]; ok {
		return nil, mplcore.ErrAlreadyInitialized
	}

	attributes := make([]registry.Attribute, len(req.Attributes))
	copy(attributes, req.Attributes)

	r.assets[key] = &Asset{
		Address:         req.Asset,
		Collection:      req.Collection,
		Owner:           req.Owner,
		Name:            req.Name,
		Uri:             req.Uri,
		Attributes:      attributes,
		NonTransferable: req.NonTransferable,
	}
	collection.NumMinted++

	return req.Asset, nil
}

// Transfer moves an asset to a new owner on behalf of its current owner
func (r *Registry) Transfer(_ context.Context, asset, authority, newOwner ed25519.PublicKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.assets[base58.Encode(asset)]
	if !ok {
		return mplcore.ErrIncorrectAccount
	}
	if !bytes.Equal(existing.Owner, authority) {
		return mplcore.ErrInvalidAuthority
	}
	if existing.NonTransferable {
		return mplcore.ErrAssetIsFrozen
	}

	existing.Owner = newOwner
	return nil
}

func (r *Registry) GetCollection(address ed25519.PublicKey) (*Collection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	collection, ok := r.collections[base58.Encode(address)]
	if !ok {
		return nil, false
	}

	cloned := *collection
	return &cloned, true
}

func (r *Registry) GetAsset(address ed25519.PublicKey) (*Asset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[base58.Encode(address)]
	if !ok {
		return nil, false
	}

	cloned := *asset
	cloned.Attributes = make([]registry.Attribute, len(asset.Attributes))
	copy(cloned.Attributes, asset.Attributes)
	return &cloned, true
}

func isSigner(ic *bank.InstructionContext, key ed25519.PublicKey) bool {
	for _, meta := range ic.Accounts {
		if meta.IsSigner && bytes.Equal(meta.PublicKey, key) {
			return true
		}
	}
	return false
}

package registry

import (
	"context"
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
)

// Attribute is a key/value pair recorded on a minted asset
type Attribute struct {
	Key   string
	Value string
}

type CreateCollectionRequest struct {
	// Address of the new collection, which must sign the transaction
	Collection ed25519.PublicKey

	// Sole authority allowed to mint into the collection
	UpdateAuthority ed25519.PublicKey

	Payer ed25519.PublicKey

	Name string
	Uri  string
}

type MintAssetRequest struct {
	// Address of the new asset, which must sign the transaction
	Asset ed25519.PublicKey

	Collection ed25519.PublicKey

	// The collection's update authority, which must sign
	Authority ed25519.PublicKey

	Payer ed25519.PublicKey
	Owner ed25519.PublicKey

	Name       string
	Uri        string
	Attributes []Attribute

	// Permanently freezes the asset with its owner, with no authority able to
	// thaw it
	NonTransferable bool
}

// CollectionRegistry is the external asset program certificates are minted
// through. Calls are made from within an executing instruction, so every
// account the registry touches must be present in the instruction context.
type CollectionRegistry interface {
	// CreateCollection creates a collection and returns its address
	CreateCollection(ctx context.Context, ic *bank.InstructionContext, req *CreateCollectionRequest) (ed25519.PublicKey, error)

	// MintAsset mints an asset into an existing collection and returns its
	// address
	MintAsset(ctx context.Context, ic *bank.InstructionContext, req *MintAssetRequest) (ed25519.PublicKey, error)
}

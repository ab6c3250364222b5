package token

import (
	"context"
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
)

// InvokeTransferChecked moves amount tokens between accounts of the same mint
// through a cross program invocation. When owner is a program derived address
// of the calling program it signs through signerSeeds.
func InvokeTransferChecked(
	ctx context.Context,
	ic *bank.InstructionContext,
	source, mint, dest, owner ed25519.PublicKey,
	amount uint64,
	decimals byte,
	signerSeeds ...[][]byte,
) error {
	return ic.Invoke(
		ctx,
		token.TransferChecked(source, mint, dest, owner, amount, decimals),
		signerSeeds...,
	)
}

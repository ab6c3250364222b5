package metaverf

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/metaverf/metaverf-ledger/pkg/cache"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

// Bump searches are memoized since every instruction re-derives the
// addresses it touches
const derivationCacheBudget = 100_000

var derivationCache = cache.NewCache(derivationCacheBudget)

type derivedAddress struct {
	address ed25519.PublicKey
	bump    uint8
}

var (
	ProtocolPrefix         = []byte("protocol")
	CollegePrefix          = []byte("college")
	AuthorityRecordPrefix  = []byte("authority")
	CollectionRecordPrefix = []byte("collection")
)

func GetProtocolAddress() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		ProtocolPrefix,
	)
}

type GetCollegeAddressArgs struct {
	CollegeId uint16
}

func GetCollegeAddress(args *GetCollegeAddressArgs) (ed25519.PublicKey, uint8, error) {
	return findCachedProgramAddress(
		fmt.Sprintf("college:%d", args.CollegeId),
		CollegePrefix,
		CollegeIdSeed(args.CollegeId),
	)
}

type GetAuthorityRecordAddressArgs struct {
	Authority ed25519.PublicKey
}

func GetAuthorityRecordAddress(args *GetAuthorityRecordAddressArgs) (ed25519.PublicKey, uint8, error) {
	return findCachedProgramAddress(
		"authority:"+base58.Encode(args.Authority),
		AuthorityRecordPrefix,
		args.Authority,
	)
}

type GetCollectionRecordAddressArgs struct {
	CollegeId  uint16
	Collection ed25519.PublicKey
}

func GetCollectionRecordAddress(args *GetCollectionRecordAddressArgs) (ed25519.PublicKey, uint8, error) {
	return findCachedProgramAddress(
		fmt.Sprintf("collection:%d:%s", args.CollegeId, base58.Encode(args.Collection)),
		CollectionRecordPrefix,
		CollegeIdSeed(args.CollegeId),
		args.Collection,
	)
}

type GetTreasuryAddressArgs struct {
	Protocol ed25519.PublicKey
	Mint     ed25519.PublicKey
}

// GetTreasuryAddress returns the protocol owned associated token account
// holding collected fees
func GetTreasuryAddress(args *GetTreasuryAddressArgs) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		SPL_ASSOCIATED_TOKEN_PROGRAM_ID,
		args.Protocol,
		SPL_TOKEN_PROGRAM_ID,
		args.Mint,
	)
}

// CollegeIdSeed is the fixed width little endian encoding of a college id
// used in address derivation
func CollegeIdSeed(collegeId uint16) []byte {
	seed := make([]byte, 2)
	binary.LittleEndian.PutUint16(seed, collegeId)
	return seed
}

func findCachedProgramAddress(cacheKey string, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	if cached, ok := derivationCache.Retrieve(cacheKey); ok {
		derived := cached.(*derivedAddress)
		address := make(ed25519.PublicKey, len(derived.address))
		copy(address, derived.address)
		return address, derived.bump, nil
	}

	address, bump, err := solana.FindProgramAddressAndBump(PROGRAM_ID, seeds...)
	if err != nil {
		return nil, 0, err
	}

	stored := make(ed25519.PublicKey, len(address))
	copy(stored, address)
	_ = derivationCache.Insert(cacheKey, &derivedAddress{address: stored, bump: bump}, 1)

	return address, bump, nil
}

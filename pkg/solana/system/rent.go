package system

// Rent parameters matching the cluster defaults.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L29-L43
const (
	LamportsPerByteYear    = 3480
	ExemptionThreshold     = 2
	AccountStorageOverhead = 128
)

// RentExemptBalance returns the minimum balance for an account holding size
// bytes of data to be exempt from rent collection.
func RentExemptBalance(size uint64) uint64 {
	return (AccountStorageOverhead + size) * LamportsPerByteYear * ExemptionThreshold
}

package solana

import (
	"bytes"
	"crypto/ed25519"
	"errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is an account referenced by an instruction, along with the
// permissions the instruction requires on it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	isPayer   bool
	isProgram bool
}

func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner, IsWritable: true}
}

func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner}
}

// compareAccountMeta orders accounts the way a message lists them: the fee
// payer, then signers, then writable accounts, with invoked programs last.
// Ties are broken by key so that compilation is deterministic.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
func compareAccountMeta(a, b AccountMeta) int {
	for _, rule := range [][2]bool{
		{a.isPayer, b.isPayer},
		{!a.isProgram, !b.isProgram},
		{a.IsSigner, b.IsSigner},
		{a.IsWritable, b.IsWritable},
	} {
		if rule[0] != rule[1] {
			if rule[0] {
				return -1
			}
			return 1
		}
	}
	return bytes.Compare(a.PublicKey, b.PublicKey)
}

type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction is an instruction as it appears within a message, with
// the program and accounts replaced by their index in the message's account
// list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

package metaverf

import (
	"bytes"
)

type InstructionType uint8

const (
	InstructionTypeUnknown InstructionType = iota
	InstructionTypeInitialize
	InstructionTypeRegisterCollege
	InstructionTypeRenewSubscription
	InstructionTypeUpdateParameters
	InstructionTypeAddCollection
	InstructionTypeMintCertificate
	InstructionTypeWithdrawFees
)

var instructionDiscriminators = map[InstructionType][]byte{
	InstructionTypeInitialize:        initializeInstructionDiscriminator,
	InstructionTypeRegisterCollege:   registerCollegeInstructionDiscriminator,
	InstructionTypeRenewSubscription: renewSubscriptionInstructionDiscriminator,
	InstructionTypeUpdateParameters:  updateParametersInstructionDiscriminator,
	InstructionTypeAddCollection:     addCollectionInstructionDiscriminator,
	InstructionTypeMintCertificate:   mintCertificateInstructionDiscriminator,
	InstructionTypeWithdrawFees:      withdrawFeesInstructionDiscriminator,
}

// GetInstructionType identifies the instruction from its discriminator prefix
func GetInstructionType(data []byte) InstructionType {
	if len(data) < 8 {
		return InstructionTypeUnknown
	}

	for instructionType, discriminator := range instructionDiscriminators {
		if bytes.Equal(data[:8], discriminator) {
			return instructionType
		}
	}
	return InstructionTypeUnknown
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitialize:
		return "initialize"
	case InstructionTypeRegisterCollege:
		return "register_college"
	case InstructionTypeRenewSubscription:
		return "renew_subscription"
	case InstructionTypeUpdateParameters:
		return "update_parameters"
	case InstructionTypeAddCollection:
		return "add_collection"
	case InstructionTypeMintCertificate:
		return "mint_certificate"
	case InstructionTypeWithdrawFees:
		return "withdraw_fees"
	}
	return "unknown"
}

func checkDiscriminator(data []byte, expected []byte, offset *int) error {
	if len(data) < 8 {
		return ErrInvalidInstructionData
	}

	var discriminator []byte
	getDiscriminator(data, &discriminator, offset)
	if !bytes.Equal(discriminator, expected) {
		return ErrInvalidInstructionData
	}
	return nil
}

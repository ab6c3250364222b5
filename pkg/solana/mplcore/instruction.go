package mplcore

type InstructionType uint8

const (
	InstructionTypeCreateV1           InstructionType = 0
	InstructionTypeCreateCollectionV1 InstructionType = 1
	InstructionTypeTransferV1         InstructionType = 14
)

// GetInstructionType reads the leading enum byte of the instruction data
func GetInstructionType(data []byte) (InstructionType, error) {
	if len(data) == 0 {
		return 0, ErrInvalidInstructionData
	}

	switch t := InstructionType(data[0]); t {
	case InstructionTypeCreateV1, InstructionTypeCreateCollectionV1, InstructionTypeTransferV1:
		return t, nil
	}
	return 0, ErrInvalidInstructionData
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeCreateV1:
		return "create_v1"
	case InstructionTypeCreateCollectionV1:
		return "create_collection_v1"
	case InstructionTypeTransferV1:
		return "transfer_v1"
	}
	return "unknown"
}

func optionalPluginsSize(plugins []Plugin) int {
	if len(plugins) == 0 {
		return 1
	}
	return 1 + pluginsSize(plugins)
}

func putOptionalPlugins(dst []byte, plugins []Plugin, offset *int) {
	if len(plugins) == 0 {
		putUint8(dst, 0, offset)
		return
	}
	putUint8(dst, 1, offset)
	putPlugins(dst, plugins, offset)
}

func getOptionalPlugins(src []byte, dst *[]Plugin, offset *int) error {
	var isSome bool
	if err := getBool(src, &isSome, offset); err != nil {
		return err
	}
	if !isSome {
		return nil
	}
	return getPlugins(src, dst, offset)
}

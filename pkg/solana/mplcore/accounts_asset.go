package mplcore

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

type AssetV1 struct {
	Owner           ed25519.PublicKey
	UpdateAuthority UpdateAuthority
	Name            string
	Uri             string
	Plugins         []Plugin
}

func (obj *AssetV1) Size() int {
	return (1 + // key
		32 + // owner
		obj.UpdateAuthority.size() +
		4 + len(obj.Name) +
		4 + len(obj.Uri) +
		1 + // seq
		pluginsSize(obj.Plugins))
}

func (obj *AssetV1) Marshal() []byte {
	data := make([]byte, obj.Size())

	var offset int

	putUint8(data, uint8(KeyAssetV1), &offset)
	putKey(data, obj.Owner, &offset)
	putUpdateAuthority(data, &obj.UpdateAuthority, &offset)
	putString(data, obj.Name, &offset)
	putString(data, obj.Uri, &offset)
	putUint8(data, 0, &offset) // seq is only tracked for compressed assets
	putPlugins(data, obj.Plugins, &offset)

	return data
}

func (obj *AssetV1) Unmarshal(data []byte) error {
	var offset int

	var key uint8
	if err := getUint8(data, &key, &offset); err != nil {
		return err
	}
	if Key(key) != KeyAssetV1 {
		return ErrInvalidAccountData
	}

	if err := getKey(data, &obj.Owner, &offset); err != nil {
		return err
	}
	if err := getUpdateAuthority(data, &obj.UpdateAuthority, &offset); err != nil {
		return err
	}
	if err := getString(data, &obj.Name, &offset); err != nil {
		return err
	}
	if err := getString(data, &obj.Uri, &offset); err != nil {
		return err
	}

	var seq uint8
	if err := getUint8(data, &seq, &offset); err != nil {
		return err
	}
	if seq != 0 {
		return ErrInvalidAccountData
	}

	return getPlugins(data, &obj.Plugins, &offset)
}

// IsFrozen reports whether a freeze delegate currently blocks transfers
func (obj *AssetV1) IsFrozen() bool {
	return isFrozen(obj.Plugins)
}

// GetAttributes returns the attribute list, or nil without an attributes plugin
func (obj *AssetV1) GetAttributes() []Attribute {
	for _, plugin := range obj.Plugins {
		if plugin.Type == PluginTypeAttributes {
			return plugin.Attributes
		}
	}
	return nil
}

func (obj *AssetV1) String() string {
	return fmt.Sprintf(
		"AssetV1{owner=%s,update_authority=%s,name=%s,uri=%s,plugins=%v}",
		base58.Encode(obj.Owner),
		obj.UpdateAuthority,
		obj.Name,
		obj.Uri,
		obj.Plugins,
	)
}

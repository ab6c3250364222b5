package mplcore

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

type CollectionV1 struct {
	UpdateAuthority ed25519.PublicKey
	Name            string
	Uri             string
	NumMinted       uint32
	CurrentSize     uint32
	Plugins         []Plugin
}

func (obj *CollectionV1) Size() int {
	return (1 + // key
		32 + // update_authority
		4 + len(obj.Name) +
		4 + len(obj.Uri) +
		4 + // num_minted
		4 + // current_size
		pluginsSize(obj.Plugins))
}

func (obj *CollectionV1) Marshal() []byte {
	data := make([]byte, obj.Size())

	var offset int

	putUint8(data, uint8(KeyCollectionV1), &offset)
	putKey(data, obj.UpdateAuthority, &offset)
	putString(data, obj.Name, &offset)
	putString(data, obj.Uri, &offset)
	putUint32(data, obj.NumMinted, &offset)
	putUint32(data, obj.CurrentSize, &offset)
	putPlugins(data, obj.Plugins, &offset)

	return data
}

func (obj *CollectionV1) Unmarshal(data []byte) error {
	var offset int

	var key uint8
	if err := getUint8(data, &key, &offset); err != nil {
		return err
	}
	if Key(key) != KeyCollectionV1 {
		return ErrInvalidAccountData
	}

	if err := getKey(data, &obj.UpdateAuthority, &offset); err != nil {
		return err
	}
	if err := getString(data, &obj.Name, &offset); err != nil {
		return err
	}
	if err := getString(data, &obj.Uri, &offset); err != nil {
		return err
	}
	if err := getUint32(data, &obj.NumMinted, &offset); err != nil {
		return err
	}
	if err := getUint32(data, &obj.CurrentSize, &offset); err != nil {
		return err
	}

	return getPlugins(data, &obj.Plugins, &offset)
}

func (obj *CollectionV1) String() string {
	return fmt.Sprintf(
		"CollectionV1{update_authority=%s,name=%s,uri=%s,num_minted=%d,current_size=%d}",
		base58.Encode(obj.UpdateAuthority),
		obj.Name,
		obj.Uri,
		obj.NumMinted,
		obj.CurrentSize,
	)
}

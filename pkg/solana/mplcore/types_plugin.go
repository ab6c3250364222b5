package mplcore

import (
	"crypto/ed25519"
	"fmt"
	"strings"
)

type PluginType uint8

const (
	PluginTypeRoyalties PluginType = iota
	PluginTypeFreezeDelegate
	PluginTypeBurnDelegate
	PluginTypeTransferDelegate
	PluginTypeUpdateDelegate
	PluginTypePermanentFreezeDelegate
	PluginTypeAttributes
)

type PluginAuthorityType uint8

const (
	PluginAuthorityNone PluginAuthorityType = iota
	PluginAuthorityOwner
	PluginAuthorityUpdateAuthority
	PluginAuthorityAddress
)

type PluginAuthority struct {
	Type    PluginAuthorityType
	Address ed25519.PublicKey
}

type Attribute struct {
	Key   string
	Value string
}

// Plugin is a capability attached to an asset or collection. Only the freeze
// delegates and attributes are supported by this ledger.
type Plugin struct {
	Type PluginType

	// Set for the freeze delegate plugins
	Frozen bool

	// Set for the attributes plugin
	Attributes []Attribute

	// Nil leaves the authority to the plugin's default
	Authority *PluginAuthority
}

func NewPermanentFreezeDelegatePlugin(frozen bool, authority *PluginAuthority) Plugin {
	return Plugin{
		Type:      PluginTypePermanentFreezeDelegate,
		Frozen:    frozen,
		Authority: authority,
	}
}

func NewAttributesPlugin(attributes []Attribute, authority *PluginAuthority) Plugin {
	return Plugin{
		Type:       PluginTypeAttributes,
		Attributes: attributes,
		Authority:  authority,
	}
}

func (p *Plugin) size() int {
	size := 1 // type
	switch p.Type {
	case PluginTypeFreezeDelegate, PluginTypePermanentFreezeDelegate:
		size += 1
	case PluginTypeAttributes:
		size += 4
		for _, attribute := range p.Attributes {
			size += 4 + len(attribute.Key) + 4 + len(attribute.Value)
		}
	}

	size += 1 // authority option
	if p.Authority != nil {
		size += 1
		if p.Authority.Type == PluginAuthorityAddress {
			size += ed25519.PublicKeySize
		}
	}
	return size
}

func putPlugin(dst []byte, v *Plugin, offset *int) {
	putUint8(dst, uint8(v.Type), offset)
	switch v.Type {
	case PluginTypeFreezeDelegate, PluginTypePermanentFreezeDelegate:
		putBool(dst, v.Frozen, offset)
	case PluginTypeAttributes:
		putUint32(dst, uint32(len(v.Attributes)), offset)
		for _, attribute := range v.Attributes {
			putString(dst, attribute.Key, offset)
			putString(dst, attribute.Value, offset)
		}
	}

	if v.Authority == nil {
		putUint8(dst, 0, offset)
		return
	}
	putUint8(dst, 1, offset)
	putUint8(dst, uint8(v.Authority.Type), offset)
	if v.Authority.Type == PluginAuthorityAddress {
		putKey(dst, v.Authority.Address, offset)
	}
}

func getPlugin(src []byte, dst *Plugin, offset *int) error {
	var pluginType uint8
	if err := getUint8(src, &pluginType, offset); err != nil {
		return err
	}
	dst.Type = PluginType(pluginType)

	switch dst.Type {
	case PluginTypeFreezeDelegate, PluginTypePermanentFreezeDelegate:
		if err := getBool(src, &dst.Frozen, offset); err != nil {
			return err
		}
	case PluginTypeAttributes:
		var count uint32
		if err := getUint32(src, &count, offset); err != nil {
			return err
		}
		if int(count) > len(src) {
			return ErrInvalidAccountData
		}

		dst.Attributes = make([]Attribute, count)
		for i := range dst.Attributes {
			if err := getString(src, &dst.Attributes[i].Key, offset); err != nil {
				return err
			}
			if err := getString(src, &dst.Attributes[i].Value, offset); err != nil {
				return err
			}
		}
	default:
		return ErrInvalidAccountData
	}

	var hasAuthority bool
	if err := getBool(src, &hasAuthority, offset); err != nil {
		return err
	}
	if !hasAuthority {
		return nil
	}

	var authorityType uint8
	if err := getUint8(src, &authorityType, offset); err != nil {
		return err
	}
	dst.Authority = &PluginAuthority{Type: PluginAuthorityType(authorityType)}
	switch dst.Authority.Type {
	case PluginAuthorityNone, PluginAuthorityOwner, PluginAuthorityUpdateAuthority:
		return nil
	case PluginAuthorityAddress:
		return getKey(src, &dst.Authority.Address, offset)
	}
	return ErrInvalidAccountData
}

func pluginsSize(plugins []Plugin) int {
	size := 4
	for i := range plugins {
		size += plugins[i].size()
	}
	return size
}

func putPlugins(dst []byte, plugins []Plugin, offset *int) {
	putUint32(dst, uint32(len(plugins)), offset)
	for i := range plugins {
		putPlugin(dst, &plugins[i], offset)
	}
}

func getPlugins(src []byte, dst *[]Plugin, offset *int) error {
	var count uint32
	if err := getUint32(src, &count, offset); err != nil {
		return err
	}
	if int(count) > len(src) {
		return ErrInvalidAccountData
	}

	if count == 0 {
		*dst = nil
		return nil
	}

	*dst = make([]Plugin, count)
	for i := range *dst {
		if err := getPlugin(src, &(*dst)[i], offset); err != nil {
			return err
		}
	}
	return nil
}

// isFrozen reports whether any freeze delegate in the set holds the asset
func isFrozen(plugins []Plugin) bool {
	for _, plugin := range plugins {
		switch plugin.Type {
		case PluginTypeFreezeDelegate, PluginTypePermanentFreezeDelegate:
			if plugin.Frozen {
				return true
			}
		}
	}
	return false
}

func (p Plugin) String() string {
	switch p.Type {
	case PluginTypeFreezeDelegate:
		return fmt.Sprintf("FreezeDelegate{frozen=%t}", p.Frozen)
	case PluginTypePermanentFreezeDelegate:
		return fmt.Sprintf("PermanentFreezeDelegate{frozen=%t}", p.Frozen)
	case PluginTypeAttributes:
		pairs := make([]string, len(p.Attributes))
		for i, attribute := range p.Attributes {
			pairs[i] = fmt.Sprintf("%s=%s", attribute.Key, attribute.Value)
		}
		return fmt.Sprintf("Attributes{%s}", strings.Join(pairs, ","))
	}
	return fmt.Sprintf("Plugin{type=%d}", p.Type)
}

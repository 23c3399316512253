// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"strings"

	"github.com/kefir-project/kefir/internal/model"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// addressFamily is the IP version an ethtool flow-type selects.
type addressFamily int

const (
	familyNone addressFamily = iota
	familyIPv4
	familyIPv6
)

// ethtoolFlowType describes one recognized flow-type keyword: the
// address family it selects and, if any, the L4 protocol it implies.
type ethtoolFlowType struct {
	family addressFamily
	proto  uint8 // 0 means "no implied protocol"
}

// ethtoolFlowTypes is the flow-type keyword vocabulary from spec.md
// §4.2. No pack library exports an ntuple flow-type string table
// (github.com/safchain/ethtool wraps driver-info/ring/feature ioctls,
// not ETHTOOL_{G,S}RXCLSRNTUPLE's flow-spec vocabulary — see
// DESIGN.md), so this is a small, literal, hand-authored table.
var ethtoolFlowTypes = map[string]ethtoolFlowType{
	"tcp4":  {familyIPv4, 6},
	"udp4":  {familyIPv4, 17},
	"sctp4": {familyIPv4, 132},
	"ip4":   {familyIPv4, 0},
	"tcp6":  {familyIPv6, 6},
	"udp6":  {familyIPv6, 17},
	"sctp6": {familyIPv6, 132},
	"ip6":   {familyIPv6, 0},
	"ether": {familyNone, 0},
}

// ethtoolIPKind maps a family-agnostic ethtool key to the MatchType
// bound to the flow-type's selected address family.
func ethtoolIPKind(dialect, key string, family addressFamily, ipv4, ipv6 model.MatchType) (model.MatchType, error) {
	switch family {
	case familyIPv4:
		return ipv4, nil
	case familyIPv6:
		return ipv6, nil
	default:
		return 0, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubUnsupportedPredicate, "key %q requires an IPv4 or IPv6 flow-type", key),
			dialect, key)
	}
}

// ParseEthtool parses ethtool n-tuple rule tokens into a Rule.
func ParseEthtool(tokens []string) (*model.Rule, error) {
	const dialect = "ethtool"
	if len(tokens)%2 != 0 {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMalformedValue, "ethtool rule has an odd token count"), dialect, "")
	}

	flowIdx := -1
	for i := 0; i+1 < len(tokens); i += 2 {
		if tokens[i] == "flow-type" {
			flowIdx = i
			break
		}
	}
	if flowIdx == -1 {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMissingAction, "ethtool rule is missing flow-type"), dialect, "")
	}
	ft, ok := ethtoolFlowTypes[strings.ToLower(tokens[flowIdx+1])]
	if !ok {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized flow-type %q", tokens[flowIdx+1]),
			dialect, tokens[flowIdx+1])
	}

	var matches []model.Match
	if ft.proto != 0 {
		kind := model.MatchIP4L4Proto
		if ft.family == familyIPv6 {
			kind = model.MatchIP6L4Proto
		}
		buf := []byte{ft.proto}
		m, err := model.NewMatch(kind, model.OpEqual, buf, nil)
		if err != nil {
			return nil, kerrors.WithDialectToken(err, dialect, tokens[flowIdx+1])
		}
		matches = append(matches, m)
	}

	action := model.ActionPass
	haveAction := false

	for i := 0; i+1 < len(tokens); i += 2 {
		key, val := tokens[i], tokens[i+1]
		if i == flowIdx {
			continue
		}

		switch key {
		case "action":
			switch val {
			case "pass":
				action = model.ActionPass
			case "drop":
				action = model.ActionDrop
			default:
				return nil, kerrors.WithDialectToken(
					kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized action %q", val), dialect, val)
			}
			haveAction = true
			continue
		case "m":
			// Consumed as part of the preceding key's mask handling
			// below; seeing it here means it followed a key that
			// doesn't take a mask, or appeared out of place.
			return nil, kerrors.WithDialectToken(
				kerrors.ParseErrorf(kerrors.SubMalformedValue, "unexpected mask token"), dialect, val)
		}

		var kind model.MatchType
		var err error
		switch key {
		case "src-ip":
			kind, err = ethtoolIPKind(dialect, key, ft.family, model.MatchIP4Src, model.MatchIP6Src)
		case "dst-ip":
			kind, err = ethtoolIPKind(dialect, key, ft.family, model.MatchIP4Dst, model.MatchIP6Dst)
		case "src-mac":
			kind = model.MatchEtherSrc
		case "dst-mac":
			kind = model.MatchEtherDst
		case "ether-proto":
			kind = model.MatchEtherProto
		case "src-port":
			kind, err = ethtoolIPKind(dialect, key, ft.family, model.MatchIP4L4PortSrc, model.MatchIP6L4PortSrc)
		case "dst-port":
			kind, err = ethtoolIPKind(dialect, key, ft.family, model.MatchIP4L4PortDst, model.MatchIP6L4PortDst)
		case "l4proto":
			kind, err = ethtoolIPKind(dialect, key, ft.family, model.MatchIP4L4Proto, model.MatchIP6L4Proto)
		case "vlan":
			kind = model.MatchVlanID
		case "vlan-etype":
			kind = model.MatchVlanEthertype
		case "tos":
			kind, err = ethtoolIPKind(dialect, key, ft.family, model.MatchIP4Tos, model.MatchIP6Tos)
		case "ttl":
			kind, err = ethtoolIPKind(dialect, key, ft.family, model.MatchIP4Ttl, model.MatchIP6Ttl)
		default:
			err = kerrors.WithDialectToken(
				kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized ethtool key %q", key), dialect, key)
		}
		if err != nil {
			return nil, err
		}

		var valBytes []byte
		switch kind {
		case model.MatchIP4Src, model.MatchIP4Dst, model.MatchIP6Src, model.MatchIP6Dst:
			width := kind.Format().Bytes()
			valBytes, err = ipFieldBytes(dialect, width, val)
		case model.MatchEtherSrc, model.MatchEtherDst:
			valBytes, err = macFieldBytes(dialect, val)
		case model.MatchIP4L4Proto, model.MatchIP6L4Proto:
			var proto uint8
			proto, err = resolveProtocol(dialect, val)
			valBytes = []byte{proto}
		default:
			valBytes, err = uintFieldBytes(dialect, kind, val)
		}
		if err != nil {
			return nil, err
		}

		var maskBytes []byte
		if i+3 < len(tokens) && tokens[i+2] == "m" {
			maskBytes, err = fieldBytes(dialect, kind, tokens[i+3])
			if err != nil {
				return nil, err
			}
			i += 2
		}

		m, err := model.NewMatch(kind, model.OpEqual, valBytes, maskBytes)
		if err != nil {
			return nil, kerrors.WithDialectToken(err, dialect, val)
		}
		matches = append(matches, m)
	}

	if !haveAction {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMissingAction, "ethtool rule has no action"), dialect, "")
	}

	return model.NewRule(matches, action, 0)
}

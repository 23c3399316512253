// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"strings"

	"github.com/kefir-project/kefir/internal/model"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// ParseTCFlower parses TC flower key/value rule tokens into a Rule.
// Address family defaults to IPv4 and becomes IPv6 if an eth_type key
// names the IPv6 ethertype or any src_ip/dst_ip value contains ':'; an
// eth_type naming IPv4 does not override an IPv6 address literal. A
// first pass over the tokens resolves this before the
// second pass builds Matches, so key order in the rule text does not
// matter (spec.md §4.2).
func ParseTCFlower(tokens []string) (*model.Rule, error) {
	const dialect = "tc-flower"
	if len(tokens)%2 != 0 {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMalformedValue, "tc flower rule has an odd token count"), dialect, "")
	}

	family := familyIPv4
	for i := 0; i+1 < len(tokens); i += 2 {
		key, val := tokens[i], tokens[i+1]
		switch key {
		case "eth_type":
			et, err := resolveEtherType(dialect, val)
			if err != nil {
				return nil, err
			}
			if et == uint16(0x86DD) {
				family = familyIPv6
			}
		case "src_ip", "dst_ip":
			addr := val
			if idx := strings.IndexByte(addr, '/'); idx >= 0 {
				addr = addr[:idx]
			}
			if strings.Contains(addr, ":") {
				family = familyIPv6
			}
		}
	}

	var matches []model.Match
	action := model.ActionPass
	haveAction := false

	for i := 0; i+1 < len(tokens); i += 2 {
		key, val := tokens[i], tokens[i+1]

		if key == "action" {
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
		}
		if key == "eth_type" {
			continue
		}

		m, err := tcFlowerMatch(dialect, family, key, val)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	if !haveAction {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMissingAction, "tc flower rule has no action"), dialect, "")
	}

	return model.NewRule(matches, action, 0)
}

func tcFlowerMatch(dialect string, family addressFamily, key, val string) (model.Match, error) {
	switch key {
	case "src_mac":
		return parseMAC(dialect, model.MatchEtherSrc, val)
	case "dst_mac":
		return parseMAC(dialect, model.MatchEtherDst, val)
	case "ip_proto":
		proto, err := resolveProtocol(dialect, val)
		if err != nil {
			return model.Match{}, err
		}
		return model.NewMatch(l4ProtoKind(family), model.OpEqual, []byte{proto}, nil)
	case "src_ip":
		return parseIPOrCIDR(dialect, srcAddrKind(family), val)
	case "dst_ip":
		return parseIPOrCIDR(dialect, dstAddrKind(family), val)
	case "src_port":
		return parsePort(dialect, srcPortKind(family), val)
	case "dst_port":
		return parsePort(dialect, dstPortKind(family), val)
	case "vlan_id":
		return parseUintFieldMatch(dialect, model.MatchVlanID, val)
	case "vlan_prio":
		return parseUintFieldMatch(dialect, model.MatchVlanPrio, val)
	case "vlan_ethtype":
		et, err := resolveEtherType(dialect, val)
		if err != nil {
			return model.Match{}, err
		}
		return model.NewMatch(model.MatchVlanEthertype, model.OpEqual, uint16Bytes(et), nil)
	case "cvlan_id":
		return parseUintFieldMatch(dialect, model.MatchCVlanID, val)
	case "cvlan_prio":
		return parseUintFieldMatch(dialect, model.MatchCVlanPrio, val)
	case "cvlan_ethtype":
		et, err := resolveEtherType(dialect, val)
		if err != nil {
			return model.Match{}, err
		}
		return model.NewMatch(model.MatchCVlanEthertype, model.OpEqual, uint16Bytes(et), nil)
	case "ip_tos":
		return parseUintFieldFamily(dialect, family, val, model.MatchIP4Tos, model.MatchIP6Tos)
	case "ip_ttl":
		return parseUintFieldFamily(dialect, family, val, model.MatchIP4Ttl, model.MatchIP6Ttl)
	default:
		return model.Match{}, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized tc flower key %q", key), dialect, key)
	}
}

func parseUintFieldMatch(dialect string, kind model.MatchType, val string) (model.Match, error) {
	return parseUintField(dialect, kind, val)
}

func parseUintFieldFamily(dialect string, family addressFamily, val string, ipv4, ipv6 model.MatchType) (model.Match, error) {
	kind := ipv4
	if family == familyIPv6 {
		kind = ipv6
	}
	return parseUintField(dialect, kind, val)
}

func uint16Bytes(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

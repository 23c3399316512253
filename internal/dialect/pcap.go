// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"github.com/kefir-project/kefir/internal/model"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// ParsePcap parses a subset of the libpcap filter expression grammar:
// atoms (host, net, port, src, dst, tcp, udp, icmp, vlan, ether host)
// joined by the boolean "and" operator only, per spec.md §4.2.
//
// libpcap filters have no action clause — they describe what to
// capture, not what to do with it. A parsed pcap rule's action is
// always ActionPass: the filter selects traffic of interest, and
// passing is the natural default for a capture expression with no
// verdict syntax of its own.
func ParsePcap(tokens []string) (*model.Rule, error) {
	const dialect = "pcap"
	if len(tokens) == 0 {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMalformedValue, "empty pcap expression"), dialect, "")
	}

	groups := splitOnAnd(tokens)

	family := familyIPv4
	for _, g := range groups {
		if len(g) == 1 && g[0] == "ip6" {
			family = familyIPv6
		}
	}

	var matches []model.Match
	for _, g := range groups {
		ms, err := parsePcapAtom(dialect, family, g)
		if err != nil {
			return nil, err
		}
		matches = append(matches, ms...)
	}

	return model.NewRule(matches, model.ActionPass, 0)
}

// splitOnAnd splits tokens on literal "and" separators into atom
// groups.
func splitOnAnd(tokens []string) [][]string {
	var groups [][]string
	var cur []string
	for _, tok := range tokens {
		if tok == "and" {
			if len(cur) > 0 {
				groups = append(groups, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, tok)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func anyAddrKind(family addressFamily) model.MatchType {
	if family == familyIPv6 {
		return model.MatchIP6Any
	}
	return model.MatchIP4Any
}

func srcAddrKind(family addressFamily) model.MatchType {
	if family == familyIPv6 {
		return model.MatchIP6Src
	}
	return model.MatchIP4Src
}

func dstAddrKind(family addressFamily) model.MatchType {
	if family == familyIPv6 {
		return model.MatchIP6Dst
	}
	return model.MatchIP4Dst
}

func anyPortKind(family addressFamily) model.MatchType {
	if family == familyIPv6 {
		return model.MatchIP6L4PortAny
	}
	return model.MatchIP4L4PortAny
}

func srcPortKind(family addressFamily) model.MatchType {
	if family == familyIPv6 {
		return model.MatchIP6L4PortSrc
	}
	return model.MatchIP4L4PortSrc
}

func dstPortKind(family addressFamily) model.MatchType {
	if family == familyIPv6 {
		return model.MatchIP6L4PortDst
	}
	return model.MatchIP4L4PortDst
}

func l4ProtoKind(family addressFamily) model.MatchType {
	if family == familyIPv6 {
		return model.MatchIP6L4Proto
	}
	return model.MatchIP4L4Proto
}

// presenceMatch builds a Match that is trivially true once its
// header is decoded — the "IPv4/IPv6 present" assertion the bare
// "ip"/"ip6" atom makes, expressed as kind >= zero rather than as a
// new CompareOp-less predicate shape.
func presenceMatch(kind model.MatchType) (model.Match, error) {
	width := kind.Format().Bytes()
	return model.NewMatch(kind, model.OpGreaterOrEqual, make([]byte, width), nil)
}

func parsePcapAtom(dialect string, family addressFamily, atom []string) ([]model.Match, error) {
	switch {
	case len(atom) == 1 && atom[0] == "ip":
		m, err := presenceMatch(model.MatchIP4Any)
		return []model.Match{m}, err

	case len(atom) == 1 && atom[0] == "ip6":
		m, err := presenceMatch(model.MatchIP6Any)
		return []model.Match{m}, err

	case len(atom) == 1 && (atom[0] == "tcp" || atom[0] == "udp" || atom[0] == "icmp"):
		proto, err := resolveProtocol(dialect, atom[0])
		if err != nil {
			return nil, err
		}
		m, err := model.NewMatch(l4ProtoKind(family), model.OpEqual, []byte{proto}, nil)
		return []model.Match{m}, err

	case len(atom) == 2 && atom[0] == "host":
		m, err := parseIPOrCIDR(dialect, anyAddrKind(family), atom[1])
		return []model.Match{m}, err

	case len(atom) == 3 && atom[0] == "src" && atom[1] == "host":
		m, err := parseIPOrCIDR(dialect, srcAddrKind(family), atom[2])
		return []model.Match{m}, err

	case len(atom) == 3 && atom[0] == "dst" && atom[1] == "host":
		m, err := parseIPOrCIDR(dialect, dstAddrKind(family), atom[2])
		return []model.Match{m}, err

	case len(atom) == 2 && atom[0] == "src":
		m, err := parseIPOrCIDR(dialect, srcAddrKind(family), atom[1])
		return []model.Match{m}, err

	case len(atom) == 2 && atom[0] == "dst":
		m, err := parseIPOrCIDR(dialect, dstAddrKind(family), atom[1])
		return []model.Match{m}, err

	case len(atom) == 2 && atom[0] == "net":
		m, err := parseIPOrCIDR(dialect, anyAddrKind(family), atom[1])
		return []model.Match{m}, err

	case len(atom) == 3 && atom[0] == "src" && atom[1] == "net":
		m, err := parseIPOrCIDR(dialect, srcAddrKind(family), atom[2])
		return []model.Match{m}, err

	case len(atom) == 3 && atom[0] == "dst" && atom[1] == "net":
		m, err := parseIPOrCIDR(dialect, dstAddrKind(family), atom[2])
		return []model.Match{m}, err

	case len(atom) == 2 && atom[0] == "port":
		m, err := parsePort(dialect, anyPortKind(family), atom[1])
		return []model.Match{m}, err

	case len(atom) == 3 && atom[0] == "src" && atom[1] == "port":
		m, err := parsePort(dialect, srcPortKind(family), atom[2])
		return []model.Match{m}, err

	case len(atom) == 3 && atom[0] == "dst" && atom[1] == "port":
		m, err := parsePort(dialect, dstPortKind(family), atom[2])
		return []model.Match{m}, err

	case len(atom) == 1 && atom[0] == "vlan":
		m, err := presenceMatch(model.MatchVlanID)
		return []model.Match{m}, err

	case len(atom) == 2 && atom[0] == "vlan":
		m, err := parseUintField(dialect, model.MatchVlanID, atom[1])
		return []model.Match{m}, err

	case len(atom) == 3 && atom[0] == "ether" && atom[1] == "host":
		m, err := parseMAC(dialect, model.MatchEtherAny, atom[2])
		return []model.Match{m}, err

	default:
		tok := ""
		if len(atom) > 0 {
			tok = atom[0]
		}
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubUnsupportedPredicate, "unsupported pcap atom: %v", atom), dialect, tok)
	}
}

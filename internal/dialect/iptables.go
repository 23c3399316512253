// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"github.com/kefir-project/kefir/internal/model"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// ParseIPTables parses a whitelisted subset of the iptables -A rule
// grammar: -s, -d, -p tcp|udp|sctp, --sport, --dport, -j ACCEPT|DROP.
// Unknown options fail parsing with UnknownKeyword (spec.md §4.2).
// iptables rules are IPv4-only in this whitelist, matching the
// classic iptables/ip6tables tool split (ip6tables is a separate,
// unsupported dialect).
func ParseIPTables(tokens []string) (*model.Rule, error) {
	const dialect = "iptables"
	if len(tokens)%2 != 0 {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMalformedValue, "iptables rule has an odd token count"), dialect, "")
	}

	var matches []model.Match
	action := model.ActionPass
	haveAction := false

	for i := 0; i+1 < len(tokens); i += 2 {
		flag, val := tokens[i], tokens[i+1]

		switch flag {
		case "-s":
			m, err := parseIPOrCIDR(dialect, model.MatchIP4Src, val)
			if err != nil {
				return nil, err
			}
			matches = append(matches, m)
		case "-d":
			m, err := parseIPOrCIDR(dialect, model.MatchIP4Dst, val)
			if err != nil {
				return nil, err
			}
			matches = append(matches, m)
		case "-p":
			proto, err := resolveProtocol(dialect, val)
			if err != nil {
				return nil, err
			}
			if proto != uint8(6) && proto != uint8(17) && proto != uint8(132) {
				return nil, kerrors.WithDialectToken(
					kerrors.ParseErrorf(kerrors.SubUnsupportedPredicate, "unsupported iptables protocol %q", val), dialect, val)
			}
			m, err := model.NewMatch(model.MatchIP4L4Proto, model.OpEqual, []byte{proto}, nil)
			if err != nil {
				return nil, kerrors.WithDialectToken(err, dialect, val)
			}
			matches = append(matches, m)
		case "--sport":
			m, err := parsePort(dialect, model.MatchIP4L4PortSrc, val)
			if err != nil {
				return nil, err
			}
			matches = append(matches, m)
		case "--dport":
			m, err := parsePort(dialect, model.MatchIP4L4PortDst, val)
			if err != nil {
				return nil, err
			}
			matches = append(matches, m)
		case "-j":
			switch val {
			case "ACCEPT":
				action = model.ActionPass
			case "DROP":
				action = model.ActionDrop
			default:
				return nil, kerrors.WithDialectToken(
					kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized target %q", val), dialect, val)
			}
			haveAction = true
		default:
			return nil, kerrors.WithDialectToken(
				kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized iptables option %q", flag), dialect, flag)
		}
	}

	if !haveAction {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMissingAction, "iptables rule has no -j target"), dialect, "")
	}

	return model.NewRule(matches, action, 0)
}

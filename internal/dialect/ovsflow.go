// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"strings"

	"github.com/kefir-project/kefir/internal/model"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// ParseOVSFlow parses OVS flow tokens, each a comma-separated
// "key=value" pair, sharing TC flower's field vocabulary plus
// actions=output|drop (spec.md §4.2). Unlike the space-separated
// dialects, each OVS token is already one key=value pair — see
// dialect.go's LoadRuleString, which splits an OVS line on commas
// rather than whitespace before calling this parser.
func ParseOVSFlow(tokens []string) (*model.Rule, error) {
	const dialect = "ovs-flow"
	if len(tokens) == 0 {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMalformedValue, "empty OVS flow rule"), dialect, "")
	}

	pairs := make(map[string]string, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		key, val, ok := splitComposite(strings.TrimSpace(tok), "=")
		if !ok {
			return nil, kerrors.WithDialectToken(
				kerrors.ParseErrorf(kerrors.SubMalformedValue, "malformed key=value pair: %q", tok), dialect, tok)
		}
		if _, dup := pairs[key]; dup {
			return nil, kerrors.WithDialectToken(
				kerrors.ParseErrorf(kerrors.SubDuplicateMatch, "duplicate key %q", key), dialect, key)
		}
		pairs[key] = val
		order = append(order, key)
	}

	family := familyIPv4
	if et, ok := pairs["eth_type"]; ok {
		v, err := resolveEtherType(dialect, et)
		if err != nil {
			return nil, err
		}
		if v == uint16(0x86DD) {
			family = familyIPv6
		}
	}
	for _, key := range []string{"src_ip", "dst_ip"} {
		if addr, ok := pairs[key]; ok {
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

	for _, key := range order {
		val := pairs[key]
		switch key {
		case "eth_type":
			continue
		case "actions":
			switch val {
			case "output":
				action = model.ActionPass
			case "drop":
				action = model.ActionDrop
			default:
				return nil, kerrors.WithDialectToken(
					kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized action %q", val), dialect, val)
			}
			haveAction = true
		default:
			m, err := tcFlowerMatch(dialect, family, key, val)
			if err != nil {
				return nil, err
			}
			matches = append(matches, m)
		}
	}

	if !haveAction {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMissingAction, "OVS flow rule has no actions= clause"), dialect, "")
	}

	return model.NewRule(matches, action, 0)
}

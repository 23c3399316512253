// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package dialect translates human-authored packet-filter rule text,
// in any of five supported syntaxes, into a *model.Rule. Each parser
// shares the tokenization convention of spec.md §4.2: whitespace-
// separated words, with single-token composites (key=value,
// key/mask) split internally by the parser that recognizes them.
package dialect

import (
	"strings"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// Tag identifies which dialect a rule's tokens are written in.
type Tag int

const (
	TagEthtool Tag = iota
	TagPcap
	TagTCFlower
	TagIPTables
	TagOVSFlow
)

func (t Tag) String() string {
	switch t {
	case TagEthtool:
		return "ethtool"
	case TagPcap:
		return "pcap"
	case TagTCFlower:
		return "tc-flower"
	case TagIPTables:
		return "iptables"
	case TagOVSFlow:
		return "ovs-flow"
	default:
		return "unknown"
	}
}

// ParseTag resolves a dialect's command-line name (as printed by
// Tag.String) back to its Tag, for kefirctl's --dialect flag.
func ParseTag(s string) (Tag, error) {
	switch s {
	case "ethtool":
		return TagEthtool, nil
	case "pcap":
		return TagPcap, nil
	case "tc-flower":
		return TagTCFlower, nil
	case "iptables":
		return TagIPTables, nil
	case "ovs-flow":
		return TagOVSFlow, nil
	default:
		return 0, kerrors.Errorf(kerrors.InvalidArgument, "unrecognized dialect %q", s)
	}
}

// tokenize splits a raw rule line into whitespace-separated words.
// Dialect-specific splitting within a token (key=value for OVS, the
// /prefix of a CIDR address) happens inside the parsers, not here —
// this is only the shared outer split every dialect agrees on.
func tokenize(line string) []string {
	return strings.Fields(line)
}

// splitComposite splits a single "key=value" or "key/value" token at
// the first occurrence of sep, returning ok=false if sep does not
// appear or either side of it is empty. Later occurrences of sep stay
// in value.
func splitComposite(tok, sep string) (key, value string, ok bool) {
	parts := strings.SplitN(tok, sep, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

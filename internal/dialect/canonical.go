// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"net"
	"strconv"

	"github.com/kefir-project/kefir/internal/model"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// protocolNames is the reverse of protocolNumbers, used by
// DumpIPTables to render a protocol byte back into the name iptables
// itself would print (falling back to the bare number for anything
// outside the whitelist ParseIPTables accepts).
var protocolNames = func() map[uint8]string {
	out := make(map[uint8]string, len(protocolNumbers))
	for name, num := range protocolNumbers {
		out[num] = name
	}
	return out
}()

// DumpIPTables renders r back into the iptables -A token form
// ParseIPTables accepts, the dialect's canonical form for spec.md §8's
// "re-dumping R in its canonical form and re-parsing yields R"
// property. Only matches within ParseIPTables's own whitelist (-s, -d,
// -p, --sport, --dport) round-trip; a Rule built with anything else
// (via the public model API directly, bypassing the dialect parser)
// fails with UnsupportedPredicate rather than silently dropping it.
func DumpIPTables(r *model.Rule) ([]string, error) {
	const dialect = "iptables"
	var tokens []string

	for _, m := range r.Matches {
		switch m.Kind {
		case model.MatchIP4Src:
			tok, err := dumpIPv4(m)
			if err != nil {
				return nil, kerrors.WithDialectToken(err, dialect, "")
			}
			tokens = append(tokens, "-s", tok)
		case model.MatchIP4Dst:
			tok, err := dumpIPv4(m)
			if err != nil {
				return nil, kerrors.WithDialectToken(err, dialect, "")
			}
			tokens = append(tokens, "-d", tok)
		case model.MatchIP4L4Proto:
			tokens = append(tokens, "-p", dumpProtocol(m))
		case model.MatchIP4L4PortSrc:
			tokens = append(tokens, "--sport", dumpPort(m))
		case model.MatchIP4L4PortDst:
			tokens = append(tokens, "--dport", dumpPort(m))
		default:
			return nil, kerrors.WithDialectToken(
				kerrors.ParseErrorf(kerrors.SubUnsupportedPredicate,
					"%s has no canonical iptables rendering", m.Kind), dialect, "")
		}
	}

	switch r.Action {
	case model.ActionDrop:
		tokens = append(tokens, "-j", "DROP")
	default:
		tokens = append(tokens, "-j", "ACCEPT")
	}

	return tokens, nil
}

func dumpIPv4(m model.Match) (string, error) {
	width := m.Kind.Format().Bytes()
	val := m.Value[model.MaxValueBytes-width:]
	ip := net.IP(val).String()
	if !m.Flags.UseMask() {
		return ip, nil
	}
	mask := m.Mask[model.MaxValueBytes-width:]
	ones, bits := net.IPMask(mask).Size()
	if ones == 0 && bits == 0 {
		return "", kerrors.New(kerrors.KindParse, "non-contiguous iptables mask has no CIDR form")
	}
	return ip + "/" + strconv.Itoa(ones), nil
}

func dumpProtocol(m model.Match) string {
	width := m.Kind.Format().Bytes()
	proto := m.Value[model.MaxValueBytes-width:][0]
	if name, ok := protocolNames[proto]; ok {
		return name
	}
	return strconv.Itoa(int(proto))
}

func dumpPort(m model.Match) string {
	width := m.Kind.Format().Bytes()
	val := m.Value[model.MaxValueBytes-width:]
	var v uint64
	for _, b := range val {
		v = v<<8 | uint64(b)
	}
	return strconv.FormatUint(v, 10)
}

// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"strconv"
	"strings"

	"github.com/gopacket/gopacket/layers"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// protocolNumbers resolves the L4-protocol name vocabulary shared by
// the pcap, flower, iptables, and OVS parsers to IP protocol numbers.
// Values are layers.IPProtocol constants rather than a hand-copied
// numeric table, so the parser tracks the same protocol-number
// registry gopacket's own dissectors use.
var protocolNumbers = map[string]uint8{
	"tcp":    uint8(layers.IPProtocolTCP),
	"udp":    uint8(layers.IPProtocolUDP),
	"sctp":   uint8(layers.IPProtocolSCTP),
	"icmp":   uint8(layers.IPProtocolICMPv4),
	"icmpv6": uint8(layers.IPProtocolICMPv6),
}

// etherTypes resolves ethertype name tokens to their 16-bit value,
// grounded on layers.EthernetType constants.
var etherTypes = map[string]uint16{
	"ip":   uint16(layers.EthernetTypeIPv4),
	"ip4":  uint16(layers.EthernetTypeIPv4),
	"ipv4": uint16(layers.EthernetTypeIPv4),
	"ip6":  uint16(layers.EthernetTypeIPv6),
	"ipv6": uint16(layers.EthernetTypeIPv6),
	"arp":  uint16(layers.EthernetTypeARP),
	"vlan": uint16(layers.EthernetTypeDot1Q),
}

// resolveProtocol parses either a protocol name ("tcp") or a bare
// decimal protocol number ("6") into an IP protocol number.
func resolveProtocol(dialect, tok string) (uint8, error) {
	if n, ok := protocolNumbers[strings.ToLower(tok)]; ok {
		return n, nil
	}
	if v, err := strconv.ParseUint(tok, 10, 8); err == nil {
		return uint8(v), nil
	}
	return 0, kerrors.WithDialectToken(
		kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized protocol %q", tok),
		dialect, tok)
}

// resolveEtherType parses an ethertype name token into its numeric
// value.
func resolveEtherType(dialect, tok string) (uint16, error) {
	if n, ok := etherTypes[strings.ToLower(tok)]; ok {
		return n, nil
	}
	if v, err := strconv.ParseUint(tok, 0, 16); err == nil {
		return uint16(v), nil
	}
	return 0, kerrors.WithDialectToken(
		kerrors.ParseErrorf(kerrors.SubUnknownKeyword, "unrecognized ethertype %q", tok),
		dialect, tok)
}

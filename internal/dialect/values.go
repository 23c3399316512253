// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"net"
	"strconv"
	"strings"

	"github.com/kefir-project/kefir/internal/model"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// ipFieldBytes parses a plain (non-CIDR) IP address token into a
// width-byte slice.
func ipFieldBytes(dialect string, width int, tok string) ([]byte, error) {
	ip := net.ParseIP(tok)
	if ip == nil {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMalformedValue, "invalid IP address: %s", tok), dialect, tok)
	}
	v, err := ipBytes(ip, width)
	if err != nil {
		return nil, kerrors.WithDialectToken(err, dialect, tok)
	}
	return v, nil
}

// ipBytes renders ip as a width-byte slice (4 for IPv4, 16 for IPv6).
func ipBytes(ip net.IP, width int) ([]byte, error) {
	switch width {
	case 4:
		v4 := ip.To4()
		if v4 == nil {
			return nil, kerrors.New(kerrors.KindParse, "expected an IPv4 address")
		}
		return []byte(v4), nil
	case 16:
		v6 := ip.To16()
		if v6 == nil {
			return nil, kerrors.New(kerrors.KindParse, "expected an IPv6 address")
		}
		return []byte(v6), nil
	default:
		return nil, kerrors.New(kerrors.KindInternal, "unsupported IP field width")
	}
}

// macFieldBytes parses a MAC address token into a 6-byte slice.
func macFieldBytes(dialect, tok string) ([]byte, error) {
	hw, err := net.ParseMAC(tok)
	if err != nil {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMalformedValue, "invalid MAC address: %s", tok), dialect, tok)
	}
	return []byte(hw), nil
}

// uintFieldBytes parses an integer token (decimal, or with a 0x, 0o or
// 0b prefix) into a big-endian,
// right-justified byte slice sized to kind's byte width, rejecting
// values that overflow the field's bit width.
func uintFieldBytes(dialect string, kind model.MatchType, tok string) ([]byte, error) {
	width := kind.Format().Bytes()
	bits := kind.Format().Bits()
	v, err := strconv.ParseUint(tok, 0, 64)
	if err != nil {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubMalformedValue, "invalid integer: %s", tok), dialect, tok)
	}
	if bits < 64 && v >= uint64(1)<<uint(bits) {
		return nil, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubValueOutOfRange, "%s value %d exceeds %d-bit field", kind, v, bits), dialect, tok)
	}
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	return buf, nil
}

// fieldBytes dispatches to the right byte-level parser for kind's
// ValueFormat, used wherever a dialect supplies value and mask tokens
// of the same kind (the ethtool "m <mask>" suffix).
func fieldBytes(dialect string, kind model.MatchType, tok string) ([]byte, error) {
	switch kind.Format() {
	case model.FormatMAC:
		return macFieldBytes(dialect, tok)
	case model.FormatIPv4:
		return ipFieldBytes(dialect, 4, tok)
	case model.FormatIPv6:
		return ipFieldBytes(dialect, 16, tok)
	default:
		return uintFieldBytes(dialect, kind, tok)
	}
}

// parseIPOrCIDR parses an address, optionally in CIDR notation, into
// a Match for the given MatchType. CIDR notation sets a contiguous
// prefix mask in network byte order, per spec.md §4.2's "CIDR
// notation on addresses sets a mask".
func parseIPOrCIDR(dialect string, kind model.MatchType, tok string) (model.Match, error) {
	width := kind.Format().Bytes()

	if strings.Contains(tok, "/") {
		ip, ipnet, err := net.ParseCIDR(tok)
		if err != nil {
			return model.Match{}, kerrors.WithDialectToken(
				kerrors.ParseErrorf(kerrors.SubMalformedValue, "malformed CIDR: %v", err), dialect, tok)
		}
		value, maskErr := ipBytes(ip, width)
		if maskErr != nil {
			return model.Match{}, kerrors.WithDialectToken(maskErr, dialect, tok)
		}
		mask := make([]byte, len(ipnet.Mask))
		copy(mask, ipnet.Mask)
		if len(mask) != width {
			return model.Match{}, kerrors.WithDialectToken(
				kerrors.ParseErrorf(kerrors.SubValueOutOfRange, "CIDR mask width mismatch for %s", kind), dialect, tok)
		}
		m, err := model.NewMatch(kind, model.OpEqual, value, mask)
		if err != nil {
			return model.Match{}, kerrors.WithDialectToken(err, dialect, tok)
		}
		return m, nil
	}

	value, err := ipFieldBytes(dialect, width, tok)
	if err != nil {
		return model.Match{}, err
	}
	m, err := model.NewMatch(kind, model.OpEqual, value, nil)
	if err != nil {
		return model.Match{}, kerrors.WithDialectToken(err, dialect, tok)
	}
	return m, nil
}

// parseMAC parses a MAC address token into a Match.
func parseMAC(dialect string, kind model.MatchType, tok string) (model.Match, error) {
	hw, err := macFieldBytes(dialect, tok)
	if err != nil {
		return model.Match{}, err
	}
	m, err := model.NewMatch(kind, model.OpEqual, hw, nil)
	if err != nil {
		return model.Match{}, kerrors.WithDialectToken(err, dialect, tok)
	}
	return m, nil
}

// parseUintField parses an integer token (decimal, or with a 0x, 0o or
// 0b prefix) into a Match.
func parseUintField(dialect string, kind model.MatchType, tok string) (model.Match, error) {
	buf, err := uintFieldBytes(dialect, kind, tok)
	if err != nil {
		return model.Match{}, err
	}
	m, err := model.NewMatch(kind, model.OpEqual, buf, nil)
	if err != nil {
		return model.Match{}, kerrors.WithDialectToken(err, dialect, tok)
	}
	return m, nil
}

// parsePort parses a decimal port token (1-65535) into a Match.
func parsePort(dialect string, kind model.MatchType, tok string) (model.Match, error) {
	v, err := strconv.ParseUint(tok, 10, 32)
	if err != nil || v == 0 || v > 65535 {
		return model.Match{}, kerrors.WithDialectToken(
			kerrors.ParseErrorf(kerrors.SubValueOutOfRange, "invalid port: %s", tok), dialect, tok)
	}
	return parseUintField(dialect, kind, tok)
}

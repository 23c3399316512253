// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import kerrors "github.com/kefir-project/kefir/internal/errors"

// Target is the in-kernel attachment hook the emitted program targets.
// The two variants mirror original_source/src/libkefir.h's
// kefir_cprog_target (XDP/TC), renamed per spec.md §6's
// "ingress-express / ingress-classifier" terminology.
type Target int

const (
	TargetIngressExpress Target = iota
	TargetIngressClassifier
)

func (t Target) String() string {
	switch t {
	case TargetIngressExpress:
		return "ingress-express"
	case TargetIngressClassifier:
		return "ingress-classifier"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the two recognized targets.
func (t Target) Valid() bool {
	return t == TargetIngressExpress || t == TargetIngressClassifier
}

// ParseTarget resolves a target's command-line name (as printed by
// Target.String) back to its Target, for kefirctl's --target flag.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "ingress-express":
		return TargetIngressExpress, nil
	case "ingress-classifier":
		return TargetIngressClassifier, nil
	default:
		return 0, kerrors.Errorf(kerrors.InvalidArgument, "unrecognized target %q", s)
	}
}

// Needs is a tagged bitset over the protocol decode stages and emitter
// behaviors a generated program must include, per spec.md §3's
// CprogOptions.needs. It replaces libkefir's OPT_FLAGS_* static
// bit-flag words with a named-member bitset type, per spec.md §9.
type Needs uint32

const (
	NeedEthernet Needs = 1 << iota
	NeedIPv4
	NeedIPv6
	NeedL4Window
	NeedUDP
	NeedTCP
	NeedSCTP
	NeedCVlan
	NeedSVlan
	NeedUseMasks
	NeedInlineMatch
	NeedNoLoops
	NeedClonedFilter
	NeedNoVlan
	NeedDebugPrint
)

// Has reports whether all bits in want are set in n.
func (n Needs) Has(want Needs) bool { return n&want == want }

// Set returns n with bits added.
func (n Needs) Set(bits Needs) Needs { return n | bits }

// Clear returns n with bits removed.
func (n Needs) Clear(bits Needs) Needs { return n &^ bits }

func (n Needs) String() string {
	names := []struct {
		bit  Needs
		name string
	}{
		{NeedEthernet, "ethernet"},
		{NeedIPv4, "ipv4"},
		{NeedIPv6, "ipv6"},
		{NeedL4Window, "l4-4b"},
		{NeedUDP, "udp"},
		{NeedTCP, "tcp"},
		{NeedSCTP, "sctp"},
		{NeedCVlan, "cvlan"},
		{NeedSVlan, "svlan"},
		{NeedUseMasks, "use-masks"},
		{NeedInlineMatch, "inline-match"},
		{NeedNoLoops, "no-loops"},
		{NeedClonedFilter, "cloned-filter"},
		{NeedNoVlan, "no-vlan"},
		{NeedDebugPrint, "debug-print"},
	}
	out := ""
	for _, e := range names {
		if n.Has(e.bit) {
			if out != "" {
				out += "|"
			}
			out += e.name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// HelperID identifies a kernel helper function the generated program
// calls.
type HelperID int

const (
	HelperMapLookup HelperID = iota
	HelperTracePrintk

	helperCount
)

// HelperSet is a bitset over HelperID, spec.md §3's
// "helper-requirements: bitset over kernel-helper identifiers".
type HelperSet uint32

func (h HelperSet) Has(id HelperID) bool       { return h&(1<<uint(id)) != 0 }
func (h HelperSet) With(id HelperID) HelperSet { return h | (1 << uint(id)) }

// CprogOptions captures everything the emitter needs beyond the
// Filter itself: target, sizing, required decode/behavior flags,
// license, and helper usage. See spec.md §3.
type CprogOptions struct {
	Target     Target
	MatchCount int
	Needs      Needs
	License    string
	HelperReqs HelperSet
}

// DefaultLicense is used when CprogOptions.License is empty.
const DefaultLicense = "GPL"

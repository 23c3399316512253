// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package analyzer computes the CprogOptions a Filter requires: the
// protocol-decode/behavior flag union, the widest rule's match count,
// and the kernel helper set the emitted program will call. Analysis is
// a pure function of the Filter plus caller-supplied overrides.
package analyzer

import (
	"github.com/kefir-project/kefir/internal/model"
)

// Overrides are the caller-supplied behavior flags spec.md §4.3 lists
// as not derivable from the Filter itself: inline-match vs. table
// loop, loop unrolling, VLAN suppression, and debug tracing.
type Overrides struct {
	InlineMatch bool
	NoLoops     bool
	NoVlan      bool
	DebugPrint  bool
}

// Analyze returns the CprogOptions f and overrides require for target.
// It never fails: every MatchType maps to a fixed, known set of needs,
// so there is no input shape this function rejects.
func Analyze(f *model.Filter, target model.Target, overrides Overrides) model.CprogOptions {
	var needs model.Needs
	matchCount := 0

	for _, r := range f.Rules() {
		if len(r.Matches) > matchCount {
			matchCount = len(r.Matches)
		}
		for _, m := range r.Matches {
			needs |= needsForMatch(m)
		}
	}

	if overrides.InlineMatch {
		needs = needs.Set(model.NeedInlineMatch)
	}
	if overrides.NoLoops {
		needs = needs.Set(model.NeedNoLoops)
	}
	if overrides.DebugPrint {
		needs = needs.Set(model.NeedDebugPrint)
	}
	if overrides.NoVlan {
		needs = needs.Set(model.NeedNoVlan)
		needs = needs.Clear(model.NeedCVlan | model.NeedSVlan)
	}

	helpers := model.HelperSet(0).With(model.HelperMapLookup)
	if needs.Has(model.NeedDebugPrint) {
		helpers = helpers.With(model.HelperTracePrintk)
	}

	return model.CprogOptions{
		Target:     target,
		MatchCount: matchCount,
		Needs:      needs,
		License:    model.DefaultLicense,
		HelperReqs: helpers,
	}
}

// needsForMatch returns the minimal decode/behavior flags a single
// Match contributes, per spec.md §4.3's per-MatchType rule list.
func needsForMatch(m model.Match) model.Needs {
	var needs model.Needs
	if m.Flags.UseMask() {
		needs |= model.NeedUseMasks
	}

	kind := m.Kind
	switch {
	case kind.IsEthernet():
		needs |= model.NeedEthernet
		switch {
		case kind.IsCVlan():
			needs |= model.NeedCVlan
		case kind.IsSVlan():
			needs |= model.NeedSVlan
		case kind.IsGenericVlan():
			needs |= model.NeedCVlan | model.NeedSVlan
		}
	case kind.IsIPv4():
		needs |= model.NeedEthernet | model.NeedIPv4
		if kind.IsL4() {
			needs |= model.NeedL4Window
		}
		if kind == model.MatchIP4L4Proto {
			needs |= l4ProtoNeeds(m)
		}
	case kind.IsIPv6():
		needs |= model.NeedEthernet | model.NeedIPv6
		if kind.IsL4() {
			needs |= model.NeedL4Window
		}
		if kind == model.MatchIP6L4Proto {
			needs |= l4ProtoNeeds(m)
		}
	case kind.IsL3Agnostic():
		needs |= model.NeedEthernet | model.NeedIPv4 | model.NeedIPv6
		if kind.IsL4() {
			needs |= model.NeedL4Window
		}
		if kind == model.MatchIPAnyL4Proto {
			needs |= l4ProtoNeeds(m)
		}
	}
	return needs
}

// l4ProtoNeeds inspects an equality match against an ip-proto field
// and, when the compared value names TCP/UDP/SCTP, sets the matching
// protocol decode flag — spec.md §4.3's "ip-proto == TCP/UDP/SCTP
// additionally set the respective protocol decode flag".
func l4ProtoNeeds(m model.Match) model.Needs {
	if m.Op != model.OpEqual {
		return 0
	}
	width := m.Kind.Format().Bytes()
	proto := m.Value[model.MaxValueBytes-width]
	switch proto {
	case 6:
		return model.NeedTCP
	case 17:
		return model.NeedUDP
	case 132:
		return model.NeedSCTP
	default:
		return 0
	}
}

// Minimal reports whether removing any one bit from needs would leave
// some MatchType referenced by f undecodable — the minimality invariant of
// spec.md §8. It is exercised by analyzer_test.go, not by Analyze
// itself (Analyze already only ever sets bits a MatchType demands).
func Minimal(f *model.Filter, needs model.Needs) bool {
	for _, bit := range minimalityCandidates(needs) {
		reduced := needs.Clear(bit)
		if stillDecodable(f, reduced) {
			return false
		}
	}
	return true
}

func minimalityCandidates(needs model.Needs) []model.Needs {
	var out []model.Needs
	for _, bit := range []model.Needs{
		model.NeedEthernet, model.NeedIPv4, model.NeedIPv6,
		model.NeedL4Window, model.NeedUDP, model.NeedTCP, model.NeedSCTP,
		model.NeedCVlan, model.NeedSVlan, model.NeedUseMasks,
	} {
		if needs.Has(bit) {
			out = append(out, bit)
		}
	}
	return out
}

// stillDecodable reports whether every Match in f can still be
// decoded under the reduced needs set.
func stillDecodable(f *model.Filter, reduced model.Needs) bool {
	for _, r := range f.Rules() {
		for _, m := range r.Matches {
			want := needsForMatch(m)
			if want&^reduced != 0 {
				return false
			}
		}
	}
	return true
}

// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package emitter

import (
	"github.com/kefir-project/kefir/internal/model"
)

// emitHeaders picks headers/type forward declarations from needs, per
// spec.md §4.4 step 1.
func emitHeaders(src *cSource, needs model.Needs) {
	src.addHeader(`#include <linux/bpf.h>`)
	src.addHeader(`#include <bpf/bpf_helpers.h>`)
	if needs.Has(model.NeedEthernet) {
		src.addHeader(`#include <linux/if_ether.h>`)
	}
	if needs.Has(model.NeedIPv4) {
		src.addHeader(`#include <linux/ip.h>`)
	}
	if needs.Has(model.NeedIPv6) {
		src.addHeader(`#include <linux/ipv6.h>`)
	}
	if needs.Has(model.NeedTCP) {
		src.addHeader(`#include <linux/tcp.h>`)
	}
	if needs.Has(model.NeedUDP) {
		src.addHeader(`#include <linux/udp.h>`)
	}
	if needs.Has(model.NeedSCTP) {
		src.addHeader(`#include <linux/sctp.h>`)
	}
	if needs.Has(model.NeedCVlan) || needs.Has(model.NeedSVlan) {
		src.addHeader(`#include <linux/if_vlan.h>`)
	}
}

// emitKeyType emits the fixed key record type, one field per
// MatchType in KeyLayout order — spec.md §4.4 step 2. Field ordering
// is the single source of truth shared with the table builder
// (model.KeyLayout), and the key type is declared packed so the C
// compiler inserts no alignment padding between its __u16/__u32
// fields; this type and table.Build can therefore never disagree on
// offsets.
func emitKeyType(src *cSource, layout []model.KeyField) {
	src.addTypedef("struct kefir_key {")
	for _, f := range layout {
		name := cFieldName(f.Kind)
		if cFieldIsArray(f.Kind) {
			src.addTypedef(line("\t%s %s[%d];", cFieldType(f.Kind), name, f.Width))
		} else {
			src.addTypedef(line("\t%s %s;", cFieldType(f.Kind), name))
		}
	}
	src.addTypedef("} __attribute__((packed));")
	src.addTypedef("")
	src.addTypedef("struct kefir_ops {")
	for _, f := range layout {
		src.addTypedef(line("\t__u8 %s_op;", cFieldName(f.Kind)))
	}
	src.addTypedef("};")
	src.addTypedef("")
	src.addTypedef("struct kefir_entry {")
	src.addTypedef("\tstruct kefir_key value;")
	src.addTypedef("\tstruct kefir_key mask;")
	src.addTypedef("\tstruct kefir_ops ops;")
	src.addTypedef("\t__u8 action;")
	src.addTypedef("};")
}

// emitTableMap declares the lookup-table map, sized to the filter's
// rule count — spec.md §4.4 step 3.
func emitTableMap(src *cSource, ruleCount int) {
	if ruleCount < 1 {
		ruleCount = 1
	}
	src.addMap("struct {")
	src.addMap("\t__uint(type, BPF_MAP_TYPE_ARRAY);")
	src.addMap("\t__type(key, __u32);")
	src.addMap("\t__type(value, struct kefir_entry);")
	src.addMap(line("\t__uint(max_entries, %d);", ruleCount))
	src.addMap("} kefir_table SEC(\".maps\");")
}

// cOpCode mirrors model.CompareOp's iota ordering, so a byte read out
// of struct kefir_ops at runtime selects the same operator the
// corresponding Go constant names — kept as a local doc anchor rather
// than generated, since CompareOp's six values are effectively fixed.
const (
	cOpCodeEqual = iota
	cOpCodeNotEqual
	cOpCodeLess
	cOpCodeLessOrEqual
	cOpCodeGreater
	cOpCodeGreaterOrEqual
)

// emitHelpers renders the trace-print wrapper, kefir_bytes_masked_eq
// (used by both the inline and table match variants below), and
// kefir_entry_matches, the field-by-field comparator the table match
// variant calls — spec.md §4.3's helper-requirements bitset and
// §4.4 step 6's "(field & mask) op (value & mask)" / "field op value"
// rule made concrete as one shared function. Scalar fields compare via
// kefir_cmp_u64 using the operator stored in the entry's own
// struct kefir_ops, so a non-equality Match.Op (spec.md §3) survives
// into table mode exactly as it already does for inline-match
// (inlineComparison/cOpFor). Array fields (MAC/IPv6) keep a pure
// equality/masked-equality comparison regardless of op, matching
// inline-match's own treatment of array fields.
func emitHelpers(src *cSource, helpers model.HelperSet, layout []model.KeyField, useMasks bool) {
	if helpers.Has(model.HelperTracePrintk) {
		src.addHelper(`#define kefir_trace(fmt, ...) bpf_printk(fmt, ##__VA_ARGS__)`)
	} else {
		src.addHelper(`#define kefir_trace(fmt, ...) do {} while (0)`)
	}
	src.addHelper("")
	src.addHelper("static __always_inline int kefir_bytes_masked_eq(const __u8 *a, const __u8 *b, const __u8 *mask, int n)")
	src.addHelper("{")
	src.addHelper("\tfor (int i = 0; i < n; i++)")
	src.addHelper("\t\tif ((a[i] & mask[i]) != (b[i] & mask[i]))")
	src.addHelper("\t\t\treturn 0;")
	src.addHelper("\treturn 1;")
	src.addHelper("}")
	src.addHelper("")
	src.addHelper("static __always_inline int kefir_cmp_u64(__u64 a, __u8 op, __u64 b)")
	src.addHelper("{")
	src.addHelper("\tswitch (op) {")
	src.addHelper(line("\tcase %d: return a != b;", cOpCodeNotEqual))
	src.addHelper(line("\tcase %d: return a < b;", cOpCodeLess))
	src.addHelper(line("\tcase %d: return a <= b;", cOpCodeLessOrEqual))
	src.addHelper(line("\tcase %d: return a > b;", cOpCodeGreater))
	src.addHelper(line("\tcase %d: return a >= b;", cOpCodeGreaterOrEqual))
	src.addHelper("\tdefault: return a == b;")
	src.addHelper("\t}")
	src.addHelper("}")
	src.addHelper("")
	src.addHelper("static __always_inline int kefir_entry_matches(const struct kefir_entry *e, const struct kefir_key *key)")
	src.addHelper("{")
	for _, f := range layout {
		name := cFieldName(f.Kind)
		if cFieldIsArray(f.Kind) {
			if useMasks {
				src.addHelper(line("\tfor (int i = 0; i < %d; i++)", f.Width))
				src.addHelper(line("\t\tif ((key->%s[i] & e->mask.%s[i]) != (e->value.%s[i] & e->mask.%s[i]))", name, name, name, name))
				src.addHelper("\t\t\treturn 0;")
			} else {
				src.addHelper(line("\tif (__builtin_memcmp(key->%s, e->value.%s, %d) != 0)", name, name, f.Width))
				src.addHelper("\t\treturn 0;")
			}
			continue
		}
		if useMasks {
			src.addHelper(line("\tif (!kefir_cmp_u64((__u64)(key->%s & e->mask.%s), e->ops.%s_op, (__u64)(e->value.%s & e->mask.%s)))",
				name, name, name, name, name))
		} else {
			src.addHelper(line("\tif (!kefir_cmp_u64((__u64)key->%s, e->ops.%s_op, (__u64)e->value.%s))", name, name, name))
		}
		src.addHelper("\t\treturn 0;")
	}
	src.addHelper("\treturn 1;")
	src.addHelper("}")
}

// entryPointSignature returns the function name and return type C
// expects for the selected attachment target.
func entryPointSignature(target model.Target) (section, name, retType string) {
	switch target {
	case model.TargetIngressExpress:
		return "xdp", "kefir_classify", "int"
	default:
		return "tc", "kefir_classify", "int"
	}
}

func verdictConstants(target model.Target) (pass, drop string) {
	if target == model.TargetIngressExpress {
		return "XDP_PASS", "XDP_DROP"
	}
	return "TC_ACT_OK", "TC_ACT_SHOT"
}

// emitDecodeAndMatch emits the single packet-entry function: decode
// stage (step 5) then match stage (step 6), returning the rule action
// or the target default on fall-through (step 7).
func emitDecodeAndMatch(src *cSource, f *model.Filter, opts model.CprogOptions, layout []model.KeyField) {
	section, name, retType := entryPointSignature(opts.Target)
	passVerdict, dropVerdict := verdictConstants(opts.Target)

	src.addFunction(line(`SEC("%s")`, section))
	src.addFunction(line("%s %s(struct %s *ctx)", retType, name, ctxTypeFor(opts.Target)))
	src.addFunction("{")
	src.addFunction("\tstruct kefir_key key = {};")
	src.addFunction("")
	emitDecodeBody(src, opts.Needs)
	src.addFunction("")

	if opts.Needs.Has(model.NeedInlineMatch) {
		emitInlineMatch(src, f, passVerdict, dropVerdict)
	} else {
		emitTableMatch(src, f, opts.Needs, passVerdict, dropVerdict)
	}

	src.addFunction(line("\treturn %s;", passVerdict))
	src.addFunction("}")
}

func ctxTypeFor(target model.Target) string {
	if target == model.TargetIngressExpress {
		return "xdp_md"
	}
	return "__sk_buff"
}

// emitDecodeBody walks headers in protocol order, setting key fields
// as each is parsed; a header this program doesn't need is skipped
// entirely, leaving its key fields at their zero value (spec.md §4.4
// step 5 — "missing headers leave their key fields zero").
func emitDecodeBody(src *cSource, needs model.Needs) {
	src.addFunction("\tvoid *data = (void *)(long)ctx->data;")
	src.addFunction("\tvoid *data_end = (void *)(long)ctx->data_end;")
	src.addFunction("\tvoid *l3 = data;")
	if needs.Has(model.NeedEthernet) {
		src.addFunction("\tstruct ethhdr *eth = data;")
		src.addFunction("\tif ((void *)(eth + 1) > data_end)")
		src.addFunction("\t\tgoto kefir_decode_done;")
		src.addFunction("\tkey.ether_proto = eth->h_proto;")
		src.addFunction("\tl3 = eth + 1;")
	}
	if needs.Has(model.NeedIPv4) {
		src.addFunction("\tstruct iphdr *ip4 = l3;")
		src.addFunction("\tif ((void *)(ip4 + 1) > data_end)")
		src.addFunction("\t\tgoto kefir_decode_done;")
		src.addFunction("\tkey.ip4_src = ip4->saddr;")
		src.addFunction("\tkey.ip4_dst = ip4->daddr;")
		src.addFunction("\tkey.ip4_l4proto = ip4->protocol;")
		src.addFunction("\tkey.ip4_ttl = ip4->ttl;")
		if needs.Has(model.NeedL4Window) {
			src.addFunction("\t__u8 *l4_4 = (void *)(ip4 + 1);")
			src.addFunction("\tif (l4_4 + 4 <= (__u8 *)data_end) {")
			src.addFunction("\t\tkey.ip4_l4port_src = ((__u16 *)l4_4)[0];")
			src.addFunction("\t\tkey.ip4_l4port_dst = ((__u16 *)l4_4)[1];")
			src.addFunction("\t}")
		}
	}
	if needs.Has(model.NeedIPv6) {
		src.addFunction("\tstruct ipv6hdr *ip6 = l3;")
		src.addFunction("\tif ((void *)(ip6 + 1) > data_end)")
		src.addFunction("\t\tgoto kefir_decode_done;")
		src.addFunction("\t__builtin_memcpy(key.ip6_src, &ip6->saddr, sizeof(key.ip6_src));")
		src.addFunction("\t__builtin_memcpy(key.ip6_dst, &ip6->daddr, sizeof(key.ip6_dst));")
		src.addFunction("\tkey.ip6_l4proto = ip6->nexthdr;")
		src.addFunction("\tkey.ip6_ttl = ip6->hop_limit;")
		if needs.Has(model.NeedL4Window) {
			src.addFunction("\t__u8 *l4_6 = (void *)(ip6 + 1);")
			src.addFunction("\tif (l4_6 + 4 <= (__u8 *)data_end) {")
			src.addFunction("\t\tkey.ip6_l4port_src = ((__u16 *)l4_6)[0];")
			src.addFunction("\t\tkey.ip6_l4port_dst = ((__u16 *)l4_6)[1];")
			src.addFunction("\t}")
		}
	}
	src.addFunction("kefir_decode_done:")
	src.addFunction("\t;")
}

// emitInlineMatch emits a straight-line conjunction per rule in filter
// order (spec.md §4.4 step 6, inline-match variant): each Match
// compiles to one field comparison directly against the decoded key,
// with no lookup-table indirection.
func emitInlineMatch(src *cSource, f *model.Filter, passVerdict, dropVerdict string) {
	for i, r := range f.Rules() {
		src.addFunction(line("\t/* rule %d */", i))
		src.addFunction("\tif (1")
		for _, m := range r.Matches {
			src.addFunction(line("\t    && %s", inlineComparison(m)))
		}
		src.addFunction("\t) {")
		verdict := passVerdict
		if r.Action == model.ActionDrop {
			verdict = dropVerdict
		}
		src.addFunction(line("\t\treturn %s;", verdict))
		src.addFunction("\t}")
	}
}

// inlineComparison renders one Match as a C boolean expression over
// key.<field>. Mask use is folded into the comparison rather than
// referencing a table entry, since inline-match mode has no entry to
// look up.
func inlineComparison(m model.Match) string {
	name := cFieldName(m.Kind)
	op := cOpFor(m.Op)
	width := m.Kind.Format().Bytes()
	val := m.Value[model.MaxValueBytes-width:]

	if cFieldIsArray(m.Kind) {
		literal := cByteArrayLiteral(val)
		if m.Flags.UseMask() {
			mask := m.Mask[model.MaxValueBytes-width:]
			return line("kefir_bytes_masked_eq(key.%s, (__u8[]){%s}, (__u8[]){%s}, %d)",
				name, literal, cByteArrayLiteral(mask), width)
		}
		return line("__builtin_memcmp(key.%s, (__u8[]){%s}, %d) == 0", name, literal, width)
	}

	literal := cScalarLiteral(val)
	if m.Flags.UseMask() {
		mask := m.Mask[model.MaxValueBytes-width:]
		return line("((key.%s & %sU) %s (%sU & %sU))", name, cScalarLiteral(mask), op, literal, cScalarLiteral(mask))
	}
	return line("(key.%s %s %sU)", name, op, literal)
}

func cOpFor(op model.CompareOp) string {
	switch op {
	case model.OpNotEqual:
		return "!="
	case model.OpLess:
		return "<"
	case model.OpLessOrEqual:
		return "<="
	case model.OpGreater:
		return ">"
	case model.OpGreaterOrEqual:
		return ">="
	default:
		return "=="
	}
}

func cScalarLiteral(b []byte) string {
	var v uint64
	for _, by := range b {
		v = v<<8 | uint64(by)
	}
	return line("%d", v)
}

func cByteArrayLiteral(b []byte) string {
	s := ""
	for i, by := range b {
		if i > 0 {
			s += ", "
		}
		s += line("0x%02x", by)
	}
	return s
}

// emitTableMatch emits a loop over the lookup table, short-circuiting
// on first match (spec.md §4.4 step 6, table variant). By default this
// is a genuine bounded loop the verifier walks once; with the NoLoops
// override it is unrolled to len(F) iterations via #pragma unroll,
// per spec.md §4.4 step 6.
func emitTableMatch(src *cSource, f *model.Filter, needs model.Needs, passVerdict, dropVerdict string) {
	count := f.Len()
	if needs.Has(model.NeedNoLoops) {
		src.addFunction("\t#pragma unroll")
	}
	src.addFunction(line("\tfor (__u32 i = 0; i < %d; i++) {", count))
	src.addFunction("\t\t__u32 idx = i;")
	src.addFunction("\t\tstruct kefir_entry *e = bpf_map_lookup_elem(&kefir_table, &idx);")
	src.addFunction("\t\tif (!e)")
	src.addFunction("\t\t\tcontinue;")
	src.addFunction("\t\tif (kefir_entry_matches(e, &key)) {")
	src.addFunction(line("\t\t\tkefir_trace(\"kefir: matched rule %%d\\n\", i);"))
	src.addFunction(line("\t\t\treturn e->action ? %s : %s;", dropVerdict, passVerdict))
	src.addFunction("\t\t}")
	src.addFunction("\t}")
}

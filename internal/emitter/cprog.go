// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package emitter

import (
	"io"
	"os"
	"strings"

	kerrors "github.com/kefir-project/kefir/internal/errors"
	"github.com/kefir-project/kefir/internal/model"
)

// MaxEmittableMatches is the emitter's compile-time bound on a rule's
// match count — the fixed size of the straight-line conjunction (or
// per-rule comparison block) the generated C can hold. Distinct from
// model.DefaultMaxMatches, which bounds rule construction itself; this
// bound is the emitter's own array-sizing limit (spec.md §4.4 failure
// modes: "TooManyMatches if a rule's match count exceeds the emitter's
// compile-time bound").
const MaxEmittableMatches = 32

// Cprog pairs a read-only Filter snapshot with the CprogOptions
// describing how to render it. Emission never mutates either.
type Cprog struct {
	Filter  *model.Filter
	Options model.CprogOptions
}

// New constructs a Cprog. Callers must not mutate filter while any
// Emit/CprogToBuf/Dump/ToFile call on the returned Cprog is in flight
// (spec.md §5: "Emission takes a read-only snapshot of the Filter;
// callers must not mutate the Filter during an emission call").
func New(filter *model.Filter, opts model.CprogOptions) *Cprog {
	return &Cprog{Filter: filter, Options: opts}
}

// Emit renders the complete C source text for c. Output is
// byte-for-byte deterministic for equal (Filter, Options): section
// order is fixed and rule order follows filter index ascending.
func (c *Cprog) Emit() (string, error) {
	if !c.Options.Target.Valid() {
		return "", kerrors.Errorf(kerrors.UnsupportedTarget, "unsupported cprog target %d", int(c.Options.Target))
	}
	if c.Options.MatchCount > MaxEmittableMatches {
		return "", kerrors.Errorf(kerrors.TooManyMatches,
			"match count %d exceeds emitter bound %d", c.Options.MatchCount, MaxEmittableMatches)
	}

	src := newCSource()
	emitHeaders(src, c.Options.Needs)
	layout := model.KeyLayout()
	emitKeyType(src, layout)
	emitTableMap(src, c.Filter.Len())
	emitHelpers(src, c.Options.HelperReqs, layout, c.Options.Needs.Has(model.NeedUseMasks))
	emitDecodeAndMatch(src, c.Filter, c.Options, layout)
	emitLicense(src, c.Options.License)

	return src.Build(), nil
}

// CprogToBuf renders c and replaces *buf with a newly allocated slice
// holding the result plus a terminating nul byte; any previous
// contents of *buf are discarded. *buf may start nil. On failure
// (Emit returning an error), *buf is left unchanged — spec.md §4.4.1's
// buffer protocol, expressed as a Go byte slice instead of a C
// out-parameter pair.
func CprogToBuf(c *Cprog, buf *[]byte) error {
	src, err := c.Emit()
	if err != nil {
		return err
	}
	out := make([]byte, 0, len(src)+1)
	out = append(out, src...)
	out = append(out, 0)
	*buf = out
	return nil
}

// Dump writes c's emitted source to sink.
func (c *Cprog) Dump(sink io.Writer) error {
	src, err := c.Emit()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(sink, src); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write cprog dump")
	}
	return nil
}

// ToFile emits c and writes it to path.
func (c *Cprog) ToFile(path string) error {
	src, err := c.Emit()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write cprog to file")
	}
	return nil
}

func emitLicense(src *cSource, license string) {
	if license == "" {
		license = model.DefaultLicense
	}
	src.addFunction(
		"char LICENSE[] SEC(\"license\") = \""+license+"\";",
	)
}

// cFieldName turns a MatchType's display name ("ip4-l4port-dst") into
// a valid C identifier fragment ("ip4_l4port_dst").
func cFieldName(kind model.MatchType) string {
	return strings.ReplaceAll(kind.String(), "-", "_")
}

// cFieldType returns the C storage type for a MatchType's ValueFormat,
// sized to its byte-ceiling width.
func cFieldType(kind model.MatchType) string {
	switch kind.Format() {
	case model.FormatMAC:
		return "__u8"
	case model.FormatIPv4:
		return "__u32"
	case model.FormatIPv6:
		return "__u8"
	default:
		switch kind.Format().Bytes() {
		case 1:
			return "__u8"
		case 2:
			return "__u16"
		case 4:
			return "__u32"
		default:
			return "__u8"
		}
	}
}

// cFieldIsArray reports whether the field is rendered as a byte array
// (MAC/IPv6) rather than a scalar.
func cFieldIsArray(kind model.MatchType) bool {
	return kind.Format() == model.FormatMAC || kind.Format() == model.FormatIPv6
}

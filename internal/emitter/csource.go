// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package emitter turns a Filter plus CprogOptions into self-contained
// C source for an eBPF classifier program, and the caller-owned buffer
// protocol (§4.4.1) that hands the generated text back out.
package emitter

import (
	"fmt"
	"strings"
)

// cSource collects C source lines into ordered sections and joins them
// once at Build(): distinct section slices appended in a fixed order,
// rather than one running buffer, so each emission stage can be
// written independently of the others' position in the final text.
type cSource struct {
	headers   []string
	typedefs  []string
	maps      []string
	helpers   []string
	functions []string
}

func newCSource() *cSource {
	return &cSource{}
}

func (s *cSource) addHeader(line string) {
	s.headers = append(s.headers, line)
}

func (s *cSource) addTypedef(lines ...string) {
	s.typedefs = append(s.typedefs, lines...)
}

func (s *cSource) addMap(lines ...string) {
	s.maps = append(s.maps, lines...)
}

func (s *cSource) addHelper(lines ...string) {
	s.helpers = append(s.helpers, lines...)
}

func (s *cSource) addFunction(lines ...string) {
	s.functions = append(s.functions, lines...)
}

// Build assembles the complete C source text. Section order is fixed:
// headers, type declarations, map declarations, helper wrappers, then
// the packet-entry function(s) — headers and types must precede any
// code that references them, per C's single-pass declaration ordering.
func (s *cSource) Build() string {
	var lines []string
	lines = append(lines, s.headers...)
	lines = append(lines, "")
	lines = append(lines, s.typedefs...)
	lines = append(lines, "")
	lines = append(lines, s.maps...)
	lines = append(lines, "")
	lines = append(lines, s.helpers...)
	lines = append(lines, "")
	lines = append(lines, s.functions...)
	return strings.Join(lines, "\n") + "\n"
}

func (s *cSource) String() string {
	return s.Build()
}

// line is a small fmt.Sprintf shorthand used throughout the emission
// stages below, kept local to avoid importing fmt into every file.
func line(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

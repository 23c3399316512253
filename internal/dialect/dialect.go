// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"strings"

	"github.com/kefir-project/kefir/internal/model"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// parseFuncs dispatches a dialect Tag to its token parser, mirroring
// original_source/src/libkefir.h's kefir_load_rule dialect switch.
var parseFuncs = map[Tag]func([]string) (*model.Rule, error){
	TagEthtool:  ParseEthtool,
	TagPcap:     ParsePcap,
	TagTCFlower: ParseTCFlower,
	TagIPTables: ParseIPTables,
	TagOVSFlow:  ParseOVSFlow,
}

// ParseRule parses pre-tokenized tokens in the given dialect into a
// Rule, without touching a Filter. Used directly by callers that
// already have a Rule pipeline (e.g. persist round-trip tests) and by
// LoadRule below.
func ParseRule(tag Tag, tokens []string) (*model.Rule, error) {
	fn, ok := parseFuncs[tag]
	if !ok {
		return nil, kerrors.Errorf(kerrors.InvalidArgument, "unrecognized dialect tag %d", int(tag))
	}
	return fn(tokens)
}

// LoadRule parses tokens in the given dialect and inserts the
// resulting Rule into filter at index, per spec.md §6's
// load_rule(filter, dialect, tokens, count, index). A parse failure
// leaves filter unchanged.
func LoadRule(filter *model.Filter, tag Tag, tokens []string, index int) error {
	r, err := ParseRule(tag, tokens)
	if err != nil {
		return err
	}
	return filter.Insert(index, r)
}

// LoadRuleString tokenizes line per dialect's convention (comma-
// separated for OVS flow, whitespace-separated for every other
// dialect) and delegates to LoadRule.
func LoadRuleString(filter *model.Filter, tag Tag, line string, index int) error {
	var tokens []string
	if tag == TagOVSFlow {
		for _, field := range strings.Split(line, ",") {
			field = strings.TrimSpace(field)
			if field != "" {
				tokens = append(tokens, field)
			}
		}
	} else {
		tokens = tokenize(line)
	}
	return LoadRule(filter, tag, tokens, index)
}

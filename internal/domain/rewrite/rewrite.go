// Package rewrite applies configured regex substitutions to hit aux paths.
package rewrite

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
)

// templateToken matches the parts of a replacement that are not copied as-is:
// ${name} and \N / \g<name> group references, an escaped backslash, or a lone $.
var templateToken = regexp.MustCompile(`\$\{(\w+)\}|\\(\d+)|\\g<(\w+)>|\\\\|\$`)

// Spec is an uncompiled (pattern, replacement) pair.
type Spec struct {
	Pattern     string
	Replacement string
}

// Rule is a compiled substitution.
type Rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Pattern returns the source expression of the rule.
func (r Rule) Pattern() string { return r.pattern.String() }

// Replacement returns the replacement template in regexp.Expand syntax.
func (r Rule) Replacement() string { return r.replacement }

// Rules is an ordered list of substitutions. The zero value is a no-op.
type Rules []Rule

// Compile compiles specs in order. A replacement refers to capture groups
// as ${1}/${name} or \1/\g<name>; any other $ is a literal character.
func Compile(specs []Spec) (Rules, error) {
	rules := make(Rules, 0, len(specs))
	for i, s := range specs {
		if s.Pattern == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i)
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: compile %q: %w", i, s.Pattern, err)
		}
		rules = append(rules, Rule{pattern: re, replacement: toTemplate(s.Replacement)})
	}
	return rules, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(specs []Spec) Rules {
	rules, err := Compile(specs)
	if err != nil {
		panic(err)
	}
	return rules
}

// Rewrite applies every rule in order to s.
func (rs Rules) Rewrite(s string) string {
	for _, r := range rs {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Apply rewrites the aux path of h. Hits without an aux path are returned unchanged.
func (rs Rules) Apply(h hit.Hit) hit.Hit {
	if len(rs) == 0 {
		return h
	}
	p, ok := h.AuxPath()
	if !ok {
		return h
	}
	return h.WithAuxPath(rs.Rewrite(p))
}

// ApplyAll rewrites a page of hits, keeping their order. The input slice is not modified.
func (rs Rules) ApplyAll(hits []hit.Hit) []hit.Hit {
	if len(rs) == 0 {
		return hits
	}
	out := make([]hit.Hit, len(hits))
	for i, h := range hits {
		out[i] = rs.Apply(h)
	}
	return out
}

// toTemplate converts a replacement into regexp.Expand syntax.
func toTemplate(repl string) string {
	return templateToken.ReplaceAllStringFunc(repl, func(m string) string {
		sub := templateToken.FindStringSubmatch(m)
		switch {
		case sub[1] != "":
			return m
		case sub[2] != "":
			return "${" + sub[2] + "}"
		case sub[3] != "":
			return "${" + sub[3] + "}"
		case m == `\\`:
			return `\`
		default:
			return "$$"
		}
	})
}

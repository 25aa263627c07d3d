package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// AssignmentRule maps item name patterns to a package.  Patterns are an
// exact name ("system.site"), a prefix ("node.type.*"), the wildcard "*",
// or any of those qualified by a config type ("field.field:node.article.*").
type AssignmentRule struct {
	Package string
	Matches []string
}

// AssignmentPolicy resolves which rule claims a config item.  When several
// rules match, the earliest declared rule wins.
type AssignmentPolicy struct {
	Rules          []AssignmentRule
	exactByType    map[string]map[string]int
	exactAny       map[string]int
	prefixByType   map[string][]prefixPattern
	prefixAny      []prefixPattern
	wildcardByType map[string]int
	wildcardAny    int
}

func NewAssignmentPolicy(rules []AssignmentRule) AssignmentPolicy {
	policy := AssignmentPolicy{
		Rules:       append([]AssignmentRule(nil), rules...),
		wildcardAny: -1,
	}
	policy.compile()
	return policy
}

// NewPatternSet builds a policy with a single anonymous rule, used to test
// names against a list of patterns.
func NewPatternSet(patterns []string) AssignmentPolicy {
	return NewAssignmentPolicy([]AssignmentRule{{Matches: patterns}})
}

// Resolve returns the package of the first rule matching the item.
func (p AssignmentPolicy) Resolve(itemType string, name string) (string, bool) {
	best := -1
	if matches, ok := p.exactByType[itemType]; ok {
		if idx, found := matches[name]; found {
			best = minIndex(best, idx)
		}
	}
	if idx, found := p.exactAny[name]; found {
		best = minIndex(best, idx)
	}
	for _, entry := range p.prefixByType[itemType] {
		if strings.HasPrefix(name, entry.prefix) {
			best = minIndex(best, entry.ruleIndex)
		}
	}
	for _, entry := range p.prefixAny {
		if strings.HasPrefix(name, entry.prefix) {
			best = minIndex(best, entry.ruleIndex)
		}
	}
	if idx, found := p.wildcardByType[itemType]; found {
		best = minIndex(best, idx)
	}
	if p.wildcardAny >= 0 {
		best = minIndex(best, p.wildcardAny)
	}
	if best >= 0 && best < len(p.Rules) {
		return p.Rules[best].Package, true
	}
	return "", false
}

func (p AssignmentPolicy) Matches(itemType string, name string) bool {
	_, ok := p.Resolve(itemType, name)
	return ok
}

// ValidatePattern reports whether pattern can be compiled.
func ValidatePattern(pattern string) error {
	if _, ok := parsePattern(pattern); !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid config pattern: %q", pattern))
	}
	return nil
}

type prefixPattern struct {
	prefix    string
	ruleIndex int
}

type parsedPattern struct {
	itemType string
	kind     patternKind
	name     string
}

type patternKind int

const (
	patternExact patternKind = iota
	patternPrefix
	patternWildcard
	patternInvalid
)

func (p *AssignmentPolicy) compile() {
	p.exactByType = map[string]map[string]int{}
	p.exactAny = map[string]int{}
	p.prefixByType = map[string][]prefixPattern{}
	p.prefixAny = nil
	p.wildcardByType = map[string]int{}
	p.wildcardAny = -1
	for idx, rule := range p.Rules {
		for _, pattern := range rule.Matches {
			parsed, ok := parsePattern(pattern)
			if !ok {
				continue
			}
			switch parsed.kind {
			case patternWildcard:
				p.storeWildcard(parsed.itemType, idx)
			case patternExact:
				p.storeExact(parsed.itemType, parsed.name, idx)
			case patternPrefix:
				p.storePrefix(parsed.itemType, parsed.name, idx)
			}
		}
	}
}

func (p *AssignmentPolicy) storeExact(itemType string, name string, index int) {
	if itemType == "" {
		if _, ok := p.exactAny[name]; !ok {
			p.exactAny[name] = index
		}
		return
	}
	if p.exactByType[itemType] == nil {
		p.exactByType[itemType] = map[string]int{}
	}
	if _, ok := p.exactByType[itemType][name]; !ok {
		p.exactByType[itemType][name] = index
	}
}

func (p *AssignmentPolicy) storePrefix(itemType string, prefix string, index int) {
	entry := prefixPattern{prefix: prefix, ruleIndex: index}
	if itemType == "" {
		p.prefixAny = append(p.prefixAny, entry)
		return
	}
	p.prefixByType[itemType] = append(p.prefixByType[itemType], entry)
}

func (p *AssignmentPolicy) storeWildcard(itemType string, index int) {
	if itemType == "" {
		if p.wildcardAny < 0 {
			p.wildcardAny = index
		}
		return
	}
	if _, ok := p.wildcardByType[itemType]; !ok {
		p.wildcardByType[itemType] = index
	}
}

func parsePattern(pattern string) (parsedPattern, bool) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return parsedPattern{kind: patternInvalid}, false
	}
	if trimmed == "*" {
		return parsedPattern{kind: patternWildcard}, true
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) > 2 {
		return parsedPattern{kind: patternInvalid}, false
	}
	if len(parts) == 2 {
		itemType := strings.TrimSpace(parts[0])
		if itemType == "" || strings.Contains(itemType, "*") {
			return parsedPattern{kind: patternInvalid}, false
		}
		name, kind := parseNamePattern(parts[1])
		if kind == patternInvalid {
			return parsedPattern{kind: patternInvalid}, false
		}
		return parsedPattern{itemType: itemType, kind: kind, name: name}, true
	}
	name, kind := parseNamePattern(trimmed)
	if kind == patternInvalid {
		return parsedPattern{kind: patternInvalid}, false
	}
	return parsedPattern{kind: kind, name: name}, true
}

func parseNamePattern(value string) (string, patternKind) {
	pattern := strings.TrimSpace(value)
	if pattern == "" {
		return "", patternInvalid
	}
	if pattern == "*" {
		return "", patternWildcard
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		if strings.Contains(prefix, "*") {
			return "", patternInvalid
		}
		return prefix, patternPrefix
	}
	if strings.Contains(pattern, "*") {
		return "", patternInvalid
	}
	return pattern, patternExact
}

func minIndex(current int, candidate int) int {
	if candidate < 0 {
		return current
	}
	if current < 0 || candidate < current {
		return candidate
	}
	return current
}

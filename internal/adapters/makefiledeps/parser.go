// Package makefiledeps parses dependency files in makefile-rule syntax
// ("target: dep1 dep2 \" continuation lines, "\ " escaped spaces), the
// format compiler wrappers emit to report discovered dependencies. The
// core's core specification treats this parser as an external
// collaborator; it is implemented concretely here so the clang-style tool
// can drive real discovered-dependency calls end to end.
package makefiledeps

import (
	"bufio"
	"io"
	"strings"
)

// Actions receives the callbacks the parser emits while streaming through
// a deps file, mirroring the original's callback-based design rather than
// building an intermediate AST.
type Actions struct {
	OnRuleStart      func(target string)
	OnRuleDependency func(path string)
}

// Parse streams r, joining backslash-continued lines, splitting each rule on
// the first unescaped ':', and reporting each whitespace-separated
// dependency via actions.OnRuleDependency.
func Parse(r io.Reader, actions Actions) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var logical strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasSuffix(line, "\\") {
			logical.WriteString(strings.TrimSuffix(line, "\\"))
			logical.WriteByte(' ')
			continue
		}
		logical.WriteString(line)
		if err := parseRule(logical.String(), actions); err != nil {
			return err
		}
		logical.Reset()
	}
	if logical.Len() > 0 {
		if err := parseRule(logical.String(), actions); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseRule(rule string, actions Actions) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}
	colon := unescapedColon(rule)
	if colon < 0 {
		return nil
	}
	target := unescapeSpaces(strings.TrimSpace(rule[:colon]))
	if actions.OnRuleStart != nil {
		actions.OnRuleStart(target)
	}
	// Split the dependency list on unescaped whitespace only, so "\ " stays
	// part of a path (as a plain space).
	deps := rule[colon+1:]
	var dep strings.Builder
	for i := 0; i <= len(deps); i++ {
		if i+1 < len(deps) && deps[i] == '\\' && deps[i+1] == ' ' {
			dep.WriteByte(' ')
			i++
			continue
		}
		if i == len(deps) || deps[i] == ' ' || deps[i] == '\t' {
			if dep.Len() > 0 && actions.OnRuleDependency != nil {
				actions.OnRuleDependency(dep.String())
			}
			dep.Reset()
			continue
		}
		dep.WriteByte(deps[i])
	}
	return nil
}

func unescapedColon(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

func unescapeSpaces(s string) string {
	return strings.ReplaceAll(s, `\ `, " ")
}

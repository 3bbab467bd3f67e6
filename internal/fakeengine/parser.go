package fakeengine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sqlsim/simulator/pkg/predicate"
	"github.com/sqlsim/simulator/pkg/value"
)

// parsePredicate parses the WHERE-clause text pkg/predicate.Predicate.SQL
// renders: fully parenthesized "(a AND b)"/"(a OR b)" groups around bare
// "column op literal" leaves. It is not a general boolean expression
// parser — only this closed grammar is ever produced by this simulator.
func parsePredicate(s string) (*predicate.Predicate, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		inner := s[1 : len(s)-1]
		parts, op, err := splitTopLevel(inner)
		if err != nil {
			return nil, err
		}
		children := make([]*predicate.Predicate, len(parts))
		for i, part := range parts {
			child, err := parsePredicate(part)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		kind := predicate.KindOr
		if op == "AND" {
			kind = predicate.KindAnd
		}
		return &predicate.Predicate{Kind: kind, Children: children}, nil
	}
	return parseLeaf(s)
}

// splitTopLevel splits inner on whichever of " AND " / " OR " joins its
// top-level (paren-depth zero) terms, per joinChildren's single-operator
// invariant. Parentheses and operators inside quoted literals are skipped.
func splitTopLevel(inner string) ([]string, string, error) {
	depth := 0
	inQuote := false
	var parts []string
	op := ""
	start := 0
	i := 0
	for i < len(inner) {
		switch inner[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
			}
		}
		if depth == 0 && !inQuote {
			if strings.HasPrefix(inner[i:], " AND ") {
				parts = append(parts, inner[start:i])
				op = "AND"
				i += len(" AND ")
				start = i
				continue
			}
			if strings.HasPrefix(inner[i:], " OR ") {
				parts = append(parts, inner[start:i])
				op = "OR"
				i += len(" OR ")
				start = i
				continue
			}
		}
		i++
	}
	parts = append(parts, inner[start:])
	if len(parts) == 1 {
		// A single-child group still renders wrapped in parens; treat it
		// as a trivial AND-of-one so Eval short-circuits correctly.
		op = "AND"
	}
	return parts, op, nil
}

func parseLeaf(s string) (*predicate.Predicate, error) {
	fields := strings.SplitN(s, " ", 3)
	if len(fields) != 3 {
		return nil, fmt.Errorf("fakeengine: malformed comparison %q", s)
	}
	column, opText, litText := fields[0], fields[1], fields[2]

	var op predicate.Op
	switch opText {
	case "=":
		op = predicate.OpEq
	case ">":
		op = predicate.OpGt
	case "<":
		op = predicate.OpLt
	default:
		return nil, fmt.Errorf("fakeengine: unknown operator %q", opText)
	}

	return &predicate.Predicate{
		Kind:   predicate.KindCompare,
		Column: column,
		Op:     op,
		Value:  parseValueLiteral(litText),
	}, nil
}

// parseValueLiteral parses one value.Value.SQL()-rendered literal.
func parseValueLiteral(lit string) value.Value {
	switch {
	case lit == "NULL":
		return value.Null()
	case strings.HasPrefix(lit, "X'") && strings.HasSuffix(lit, "'"):
		hex := lit[2 : len(lit)-1]
		blob := make([]byte, len(hex)/2)
		for i := range blob {
			b, _ := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
			blob[i] = byte(b)
		}
		return value.NewBlob(blob)
	case strings.HasPrefix(lit, "'") && strings.HasSuffix(lit, "'"):
		unescaped := strings.ReplaceAll(lit[1:len(lit)-1], "''", "'")
		return value.NewText(unescaped)
	default:
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return value.NewInteger(i)
		}
		f, _ := strconv.ParseFloat(lit, 64)
		return value.NewFloat(f)
	}
}

package testutil

import (
	"fmt"
	"strings"
)

// filterNode is a parsed $filter expression. Only the subset the repositories
// emit is supported: eq/ne comparisons on (possibly nested) field paths,
// substringof, and/or conjunctions, and parentheses.
type filterNode struct {
	op    string // "and", "or", "eq", "ne", "substringof"
	left  *filterNode
	right *filterNode

	path  string
	value any
	// substringof arguments
	needle string
	field  string
}

func (n *filterNode) eval(row map[string]any) bool {
	switch n.op {
	case "and":
		return n.left.eval(row) && n.right.eval(row)
	case "or":
		return n.left.eval(row) || n.right.eval(row)
	case "eq":
		return valuesEqual(resolvePath(row, n.path), n.value)
	case "ne":
		return !valuesEqual(resolvePath(row, n.path), n.value)
	case "substringof":
		s, _ := resolvePath(row, n.field).(string)
		return strings.Contains(s, n.needle)
	default:
		return false
	}
}

func resolvePath(row map[string]any, path string) any {
	parts := strings.Split(path, "/")
	var cur any = row
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func valuesEqual(field, literal any) bool {
	if field == nil {
		return literal == nil
	}
	if ff, fok := toFloat(field); fok {
		if lf, lok := toFloat(literal); lok {
			return ff == lf
		}
		return false
	}
	switch f := field.(type) {
	case string:
		l, ok := literal.(string)
		return ok && f == l
	case bool:
		l, ok := literal.(bool)
		return ok && f == l
	default:
		return fmt.Sprint(field) == fmt.Sprint(literal)
	}
}

type filterParser struct {
	s   string
	pos int
}

func parseFilter(s string) (*filterNode, error) {
	p := &filterParser{s: s}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("unexpected trailing input at %d in %q", p.pos, s)
	}
	return node, nil
}

func (p *filterParser) parseExpr() (*filterNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		word := p.peekWord()
		if word != "and" && word != "or" {
			return left, nil
		}
		p.pos += len(word)
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &filterNode{op: word, left: left, right: right}
	}
}

func (p *filterParser) parseTerm() (*filterNode, error) {
	p.skipSpace()
	if p.eof() {
		return nil, fmt.Errorf("unexpected end of filter %q", p.s)
	}
	if p.s[p.pos] == '(' {
		p.pos++
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.eof() || p.s[p.pos] != ')' {
			return nil, fmt.Errorf("missing ')' in %q", p.s)
		}
		p.pos++
		return node, nil
	}
	if strings.HasPrefix(p.s[p.pos:], "substringof(") {
		return p.parseSubstringOf()
	}
	return p.parseComparison()
}

func (p *filterParser) parseSubstringOf() (*filterNode, error) {
	p.pos += len("substringof(")
	p.skipSpace()
	needle, err := p.parseString()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.eof() || p.s[p.pos] != ',' {
		return nil, fmt.Errorf("missing ',' in substringof in %q", p.s)
	}
	p.pos++
	p.skipSpace()
	field := p.parseIdentifier()
	p.skipSpace()
	if p.eof() || p.s[p.pos] != ')' {
		return nil, fmt.Errorf("missing ')' in substringof in %q", p.s)
	}
	p.pos++
	return &filterNode{op: "substringof", needle: needle, field: field}, nil
}

func (p *filterParser) parseComparison() (*filterNode, error) {
	path := p.parseIdentifier()
	if path == "" {
		return nil, fmt.Errorf("expected field at %d in %q", p.pos, p.s)
	}
	p.skipSpace()
	op := p.peekWord()
	if op != "eq" && op != "ne" {
		return nil, fmt.Errorf("expected eq/ne at %d in %q", p.pos, p.s)
	}
	p.pos += len(op)
	p.skipSpace()
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &filterNode{op: op, path: path, value: value}, nil
}

func (p *filterParser) parseValue() (any, error) {
	if p.eof() {
		return nil, fmt.Errorf("expected value in %q", p.s)
	}
	if p.s[p.pos] == '\'' {
		return p.parseString()
	}
	word := p.parseIdentifier()
	switch word {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	var f float64
	if _, err := fmt.Sscanf(word, "%g", &f); err != nil {
		return nil, fmt.Errorf("bad literal %q in %q", word, p.s)
	}
	return f, nil
}

// parseString reads a single-quoted literal with '' escaping.
func (p *filterParser) parseString() (string, error) {
	if p.eof() || p.s[p.pos] != '\'' {
		return "", fmt.Errorf("expected string at %d in %q", p.pos, p.s)
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.s) {
		ch := p.s[p.pos]
		if ch == '\'' {
			if p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), nil
		}
		b.WriteByte(ch)
		p.pos++
	}
	return "", fmt.Errorf("unterminated string in %q", p.s)
}

func (p *filterParser) parseIdentifier() string {
	start := p.pos
	for p.pos < len(p.s) {
		ch := p.s[p.pos]
		if ch == ' ' || ch == '(' || ch == ')' || ch == ',' || ch == '\'' {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

// peekWord returns the next space-delimited word without consuming it.
func (p *filterParser) peekWord() string {
	i := p.pos
	for i < len(p.s) && p.s[i] != ' ' && p.s[i] != '(' && p.s[i] != ')' {
		i++
	}
	return p.s[p.pos:i]
}

func (p *filterParser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *filterParser) eof() bool { return p.pos >= len(p.s) }

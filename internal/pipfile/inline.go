// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipfile

import (
	"fmt"
	"regexp"
	"strings"
)

// ValueKind tags the shape of a Value in an inline attribute map.
type ValueKind int

const (
	// KindString is a single- or double-quoted string.
	KindString ValueKind = iota
	// KindBare is an unquoted token such as true, 3 or a word.
	KindBare
	// KindArray is a bracketed list of values.
	KindArray
	// KindTable is a nested brace-delimited map.
	KindTable
)

// Value is one right-hand side inside an inline attribute map.
type Value struct {
	Kind  ValueKind
	Text  string
	Items []Value
	Table *InlineMap
}

// Strings flattens an array of scalar values to their text. Nested arrays and
// tables are skipped. A scalar value yields a one-element slice.
func (v Value) Strings() []string {
	switch v.Kind {
	case KindString, KindBare:
		return []string{v.Text}
	case KindArray:
		out := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			if item.Kind == KindString || item.Kind == KindBare {
				out = append(out, item.Text)
			}
		}
		return out
	}
	return nil
}

// InlineMap is an ordered key/value map parsed from `{ key = value, ... }`.
type InlineMap struct {
	keys   []string
	values map[string]Value
}

func newInlineMap() *InlineMap {
	return &InlineMap{values: make(map[string]Value)}
}

// Get returns the value stored under key.
func (m *InlineMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in first-seen order.
func (m *InlineMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of distinct keys.
func (m *InlineMap) Len() int {
	return len(m.keys)
}

func (m *InlineMap) set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// ParseInlineMap parses a brace-delimited attribute list such as
// `{version = ">=2.25.1", extras = ["socks"], index = "internal"}`.
// The input must start with '{' and end with the matching '}' (surrounding
// whitespace is ignored).
func ParseInlineMap(s string) (*InlineMap, error) {
	p := &inlineParser{src: strings.TrimSpace(s)}
	m, err := p.table()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after closing brace", p.src[p.pos:])
	}
	return m, nil
}

type inlineParser struct {
	src string
	pos int
}

func (p *inlineParser) errorf(format string, args ...any) error {
	return fmt.Errorf("inline map offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *inlineParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *inlineParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *inlineParser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *inlineParser) expect(c byte) error {
	if p.peek() != c {
		if p.eof() {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, p.peek())
	}
	p.pos++
	return nil
}

func (p *inlineParser) table() (*InlineMap, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	m := newInlineMap()
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return m, nil
	}
	for {
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		m.set(key, v)
		p.skipSpace()

		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == '}' {
				p.pos++
				return m, nil
			}
		case '}':
			p.pos++
			return m, nil
		default:
			if p.eof() {
				return nil, p.errorf("unterminated table")
			}
			return nil, p.errorf("expected ',' or '}', got %q", p.peek())
		}
	}
}

func (p *inlineParser) key() (string, error) {
	if p.peek() == '"' {
		return p.basicString()
	}
	start := p.pos
	for !p.eof() && isKeyChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected key")
	}
	return p.src[start:p.pos], nil
}

func (p *inlineParser) value() (Value, error) {
	switch p.peek() {
	case '"':
		s, err := p.basicString()
		return Value{Kind: KindString, Text: s}, err
	case '\'':
		s, err := p.literalString()
		return Value{Kind: KindString, Text: s}, err
	case '[':
		return p.array()
	case '{':
		t, err := p.table()
		return Value{Kind: KindTable, Table: t}, err
	}

	start := p.pos
	for !p.eof() && !strings.ContainsRune(" \t,]}", rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return Value{}, p.errorf("expected value")
	}
	return Value{Kind: KindBare, Text: p.src[start:p.pos]}, nil
}

func (p *inlineParser) array() (Value, error) {
	if err := p.expect('['); err != nil {
		return Value{}, err
	}
	v := Value{Kind: KindArray}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return v, nil
	}
	for {
		item, err := p.value()
		if err != nil {
			return Value{}, err
		}
		v.Items = append(v.Items, item)
		p.skipSpace()

		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == ']' {
				p.pos++
				return v, nil
			}
		case ']':
			p.pos++
			return v, nil
		default:
			if p.eof() {
				return Value{}, p.errorf("unterminated array")
			}
			return Value{}, p.errorf("expected ',' or ']', got %q", p.peek())
		}
	}
}

func (p *inlineParser) basicString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if p.eof() {
				return "", p.errorf("unterminated escape")
			}
			esc := p.src[p.pos]
			p.pos++
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *inlineParser) literalString() (string, error) {
	if err := p.expect('\''); err != nil {
		return "", err
	}
	end := strings.IndexByte(p.src[p.pos:], '\'')
	if end < 0 {
		return "", p.errorf("unterminated string")
	}
	s := p.src[p.pos : p.pos+end]
	p.pos += end + 1
	return s, nil
}

func isKeyChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

var (
	// versionPattern limits inline versions to comparison operators, digits,
	// separators and the wildcard. Anything else (e.g. "~=1.2") is not
	// recognized and the whole braced token becomes the version text.
	versionPattern = regexp.MustCompile(`^[0-9<>=,.*]+$`)
	indexPattern   = regexp.MustCompile(`^\w+$`)
)

// packageAttrs is the field view of an inline attribute map.
type packageAttrs struct {
	version string
	index   string
	extras  []string
}

// extractPackageAttrs pulls version, index and extras out of the braced
// token on the right of a package line. It never fails: an unparsable map
// yields the token itself as the version and err describing why.
func extractPackageAttrs(token string) (packageAttrs, error) {
	attrs := packageAttrs{version: token}

	m, err := ParseInlineMap(token)
	if err != nil {
		return attrs, err
	}

	if v, ok := m.Get("version"); ok && v.Kind == KindString && versionPattern.MatchString(v.Text) {
		attrs.version = v.Text
	}
	if v, ok := m.Get("index"); ok && v.Kind == KindString && indexPattern.MatchString(v.Text) {
		attrs.index = v.Text
	}
	if v, ok := m.Get("extras"); ok {
		attrs.extras = uniqueStrings(v.Strings())
	}
	return attrs, nil
}

// uniqueStrings drops empty and repeated entries, keeping first-seen order.
func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

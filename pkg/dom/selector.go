// Package dom provides the small slice of DOM behavior navmenu needs on top of
// golang.org/x/net/html: a CSS selector subset, class token helpers and tree
// mutation helpers.
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a compiled CSS selector list.
//
// Supported subset:
//   - type selectors: "ul", "li", "*"
//   - .class, #id, [attr], [attr=val], [attr="val"]
//   - :scope (the element a query is relative to)
//   - descendant (" ") and child (">") combinators
//   - comma separated lists
//
// A selector starting with ">" is relative to the scope element, so "> li"
// is the same as ":scope > li".
type Selector struct {
	source string
	groups []complexSelector
}

type complexSelector struct {
	parts []compound
	combs []byte // combs[i] joins parts[i] and parts[i+1]
}

type compound struct {
	scope   bool
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	key    string
	val    string
	hasVal bool
}

// Compile parses a selector list.
func Compile(src string) (*Selector, error) {
	groups, err := splitGroups(src)
	if err != nil {
		return nil, err
	}

	sel := &Selector{source: src}
	for _, g := range groups {
		cx, err := parseComplex(strings.TrimSpace(g))
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", src, err)
		}
		sel.groups = append(sel.groups, cx)
	}

	return sel, nil
}

// MustCompile is like Compile but panics on error. It is meant for selectors
// known at build time.
func MustCompile(src string) *Selector {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.source
}

// Match reports whether n matches the selector. scope is the element :scope
// refers to; when nil, :scope matches the document's top element.
func (s *Selector) Match(n, scope *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, g := range s.groups {
		if g.matchAt(n, len(g.parts)-1, scope) {
			return true
		}
	}
	return false
}

// QueryAll returns the descendants of scope matching the selector, in
// document order. scope itself is never part of the result.
func (s *Selector) QueryAll(scope *html.Node) []*html.Node {
	if scope == nil {
		return nil
	}
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if s.Match(c, scope) {
				results = append(results, c)
			}
			walk(c)
		}
	}
	walk(scope)
	return results
}

// Query returns the first descendant of scope matching the selector.
func (s *Selector) Query(scope *html.Node) *html.Node {
	if scope == nil {
		return nil
	}
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if s.Match(c, scope) {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(scope)
	return found
}

func (cx complexSelector) matchAt(n *html.Node, i int, scope *html.Node) bool {
	if !cx.parts[i].match(n, scope) {
		return false
	}
	if i == 0 {
		return true
	}

	if cx.combs[i-1] == '>' {
		p := n.Parent
		return p != nil && cx.matchAt(p, i-1, scope)
	}

	for p := n.Parent; p != nil; p = p.Parent {
		if cx.matchAt(p, i-1, scope) {
			return true
		}
	}
	return false
}

func (c compound) match(n *html.Node, scope *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}

	if c.scope {
		if scope != nil && scope.Type == html.ElementNode {
			if n != scope {
				return false
			}
		} else if n.Parent == nil || n.Parent.Type != html.DocumentNode {
			return false
		}
	}

	if c.tag != "" && c.tag != "*" && !strings.EqualFold(n.Data, c.tag) {
		return false
	}

	if c.id != "" && Attr(n, "id") != c.id {
		return false
	}

	for _, class := range c.classes {
		if !HasClass(n, class) {
			return false
		}
	}

	for _, a := range c.attrs {
		v, ok := LookupAttr(n, a.key)
		if !ok {
			return false
		}
		if a.hasVal && v != a.val {
			return false
		}
	}

	return true
}

// splitGroups splits a selector list on commas outside brackets and quotes.
func splitGroups(src string) ([]string, error) {
	var (
		groups []string
		start  int
		quote  byte
		depth  int
	)
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == ',' && depth == 0:
			groups = append(groups, src[start:i])
			start = i + 1
		}
	}
	if quote != 0 || depth != 0 {
		return nil, fmt.Errorf("selector %q: unbalanced brackets or quotes", src)
	}
	groups = append(groups, src[start:])
	return groups, nil
}

func parseComplex(s string) (complexSelector, error) {
	var (
		cx   complexSelector
		comb byte
	)
	for i := 0; i < len(s); {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
			if comb == 0 && len(cx.parts) > 0 {
				comb = ' '
			}
			i++
			continue
		case '>':
			if comb == '>' {
				return cx, fmt.Errorf("doubled child combinator")
			}
			if len(cx.parts) == 0 {
				cx.parts = append(cx.parts, compound{scope: true})
			}
			comb = '>'
			i++
			continue
		}

		c, n, err := parseCompound(s[i:])
		if err != nil {
			return cx, err
		}
		if len(cx.parts) > 0 {
			cx.combs = append(cx.combs, comb)
		}
		cx.parts = append(cx.parts, c)
		comb = 0
		i += n
	}

	if len(cx.parts) == 0 {
		return cx, fmt.Errorf("empty selector")
	}
	if comb == '>' {
		return cx, fmt.Errorf("dangling child combinator")
	}
	return cx, nil
}

func parseCompound(s string) (compound, int, error) {
	var c compound
	i := 0
	for i < len(s) {
		switch ch := s[i]; {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '>':
			if i == 0 {
				return c, 0, fmt.Errorf("expected selector at %q", s)
			}
			return c, i, nil
		case ch == '*':
			if i != 0 {
				return c, 0, fmt.Errorf("misplaced '*' in %q", s)
			}
			c.tag = "*"
			i++
		case ch == '.':
			name, n := readIdent(s[i+1:])
			if n == 0 {
				return c, 0, fmt.Errorf("empty class in %q", s)
			}
			c.classes = append(c.classes, name)
			i += 1 + n
		case ch == '#':
			name, n := readIdent(s[i+1:])
			if n == 0 {
				return c, 0, fmt.Errorf("empty id in %q", s)
			}
			c.id = name
			i += 1 + n
		case ch == '[':
			a, n, err := parseAttr(s[i:])
			if err != nil {
				return c, 0, err
			}
			c.attrs = append(c.attrs, a)
			i += n
		case ch == ':':
			name, n := readIdent(s[i+1:])
			if !strings.EqualFold(name, "scope") {
				return c, 0, fmt.Errorf("unsupported pseudo-class %q", ":"+name)
			}
			c.scope = true
			i += 1 + n
		case isIdentByte(ch):
			if i != 0 {
				return c, 0, fmt.Errorf("misplaced type selector in %q", s)
			}
			name, n := readIdent(s)
			c.tag = strings.ToLower(name)
			i += n
		default:
			return c, 0, fmt.Errorf("unexpected %q in %q", ch, s)
		}
	}
	return c, i, nil
}

// parseAttr parses "[key]" or "[key=value]" at the start of s.
func parseAttr(s string) (attrMatch, int, error) {
	var a attrMatch
	end := -1
	var quote byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if c == ']' {
			end = i
			break
		}
	}
	if end < 0 {
		return a, 0, fmt.Errorf("unterminated attribute selector in %q", s)
	}

	body := s[1:end]
	if eq := strings.IndexByte(body, '='); eq >= 0 {
		a.key = strings.TrimSpace(body[:eq])
		a.val = strings.Trim(strings.TrimSpace(body[eq+1:]), `"'`)
		a.hasVal = true
	} else {
		a.key = strings.TrimSpace(body)
	}
	if a.key == "" {
		return a, 0, fmt.Errorf("empty attribute name in %q", s)
	}
	a.key = strings.ToLower(a.key)
	return a, end + 1, nil
}

func readIdent(s string) (string, int) {
	n := 0
	for n < len(s) && isIdentByte(s[n]) {
		n++
	}
	return s[:n], n
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c >= 0x80
}

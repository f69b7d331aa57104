package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LookupAttr returns the value of an attribute and whether it is present.
func LookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns the value of an attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	v, _ := LookupAttr(n, key)
	return v
}

// HasAttr checks if a node carries an attribute.
func HasAttr(n *html.Node, key string) bool {
	_, ok := LookupAttr(n, key)
	return ok
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// Classes returns the class tokens of a node.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass checks a single class token.
func HasClass(n *html.Node, class string) bool {
	if class == "" {
		return false
	}
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// HasAnyClass reports whether the node carries at least one of the tokens.
// An empty token list never matches.
func HasAnyClass(n *html.Node, tokens []string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, t := range tokens {
		if HasClass(n, t) {
			return true
		}
	}
	return false
}

// ContainsClass reports whether any descendant of n carries one of the tokens.
func ContainsClass(n *html.Node, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if HasAnyClass(c, tokens) || ContainsClass(c, tokens) {
			return true
		}
	}
	return false
}

// AddClass appends the tokens not yet present.
func AddClass(n *html.Node, tokens ...string) {
	classes := Classes(n)
	changed := false
	for _, t := range tokens {
		if t == "" || contains(classes, t) {
			continue
		}
		classes = append(classes, t)
		changed = true
	}
	if changed {
		SetAttr(n, "class", strings.Join(classes, " "))
	}
}

// RemoveClass drops the given tokens. The class attribute is removed when
// nothing is left.
func RemoveClass(n *html.Node, tokens ...string) {
	classes := Classes(n)
	kept := classes[:0]
	for _, c := range classes {
		if !contains(tokens, c) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Contains reports whether b is a or one of its descendants.
func Contains(a, b *html.Node) bool {
	for n := b; n != nil; n = n.Parent {
		if n == a {
			return true
		}
	}
	return false
}

// FirstElementChild returns the first child that is an element.
func FirstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// Element creates a detached element.
func Element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// InsertBefore inserts child right before ref in ref's parent.
func InsertBefore(child, ref *html.Node) {
	if ref.Parent == nil {
		return
	}
	ref.Parent.InsertBefore(child, ref)
}

// Replace swaps old for repl in old's parent. A nil repl just removes old.
func Replace(old, repl *html.Node) {
	p := old.Parent
	if p == nil {
		return
	}
	if repl != nil {
		p.InsertBefore(repl, old)
	}
	p.RemoveChild(old)
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// TextContent concatenates all descendant text.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// Render serializes a node and its subtree.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

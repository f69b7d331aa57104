// Package outline describes a site navigation tree and renders it into the
// nested list markup the menu package enhances.
package outline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/navmenu/pkg/dom"
)

const (
	// DefaultRootClass is the class the menu looks for by default.
	DefaultRootClass = "navmenu"

	// DefaultItemClass marks each link.
	DefaultItemClass = "navmenu__item"
)

// Outline represents the root of the navigation tree.
type Outline struct {
	// Title labels the <nav> landmark and the preview page.
	Title string `json:"title" yaml:"title"`

	// Description of the outline
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version of the outline
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Items is the list of top level items
	Items []Item `json:"items,omitempty" yaml:"items,omitempty"`
}

// Classes controls the classes written into the markup.
type Classes struct {
	Root string
	Item string
}

// DefaultClasses matches the menu package defaults.
func DefaultClasses() Classes {
	return Classes{Root: DefaultRootClass, Item: DefaultItemClass}
}

// LoadFile reads a YAML outline.
func LoadFile(path string) (*Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outline: %w", err)
	}

	var o Outline
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse outline %s: %w", path, err)
	}

	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid outline %s: %w", path, err)
	}

	return &o, nil
}

// Validate checks that every item has a title.
func (o *Outline) Validate() error {
	var err error
	o.Walk(func(depth int, item *Item) {
		if err == nil && strings.TrimSpace(item.Title) == "" {
			err = fmt.Errorf("item at depth %d (path %q) has no title", depth, item.Path)
		}
	})
	return err
}

// Walk visits every item depth first, the top level being depth 1.
func (o *Outline) Walk(fn func(depth int, item *Item)) {
	for i := range o.Items {
		o.walkItem(&o.Items[i], 1, fn)
	}
}

// walkItem recursively visits an item and all its sub-items.
func (o *Outline) walkItem(item *Item, depth int, fn func(depth int, item *Item)) {
	fn(depth, item)

	for i := range item.Items {
		o.walkItem(&item.Items[i], depth+1, fn)
	}
}

// Paths lists every item path in walk order.
func (o *Outline) Paths() []string {
	var paths []string
	o.Walk(func(_ int, item *Item) {
		if item.Path != "" {
			paths = append(paths, item.Path)
		}
	})
	return paths
}

// Nav renders the outline as a detached
//
//	<nav aria-label="Title"><ul class="navmenu"><li><a class="navmenu__item" href="…">…</a><ul>…</ul></li></ul></nav>
func (o *Outline) Nav(c Classes) *html.Node {
	nav := dom.Element("nav")
	if o.Title != "" {
		dom.SetAttr(nav, "aria-label", o.Title)
	}

	root := dom.Element("ul")
	dom.AddClass(root, strings.Fields(c.Root)...)
	appendItems(root, o.Items, c)
	nav.AppendChild(root)

	return nav
}

func appendItems(list *html.Node, items []Item, c Classes) {
	for _, item := range items {
		li := dom.Element("li")

		var label *html.Node
		if item.Path != "" {
			label = dom.Element("a", html.Attribute{Key: "href", Val: item.Path})
			dom.AddClass(label, strings.Fields(c.Item)...)
			if item.Description != "" {
				dom.SetAttr(label, "title", item.Description)
			}
		} else {
			label = dom.Element("span")
		}
		label.AppendChild(dom.Text(item.Title))
		li.AppendChild(label)

		if len(item.Items) > 0 {
			sub := dom.Element("ul")
			appendItems(sub, item.Items, c)
			li.AppendChild(sub)
		}

		list.AppendChild(li)
	}
}

// Document wraps Nav in a minimal HTML page.
func (o *Outline) Document(c Classes) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := dom.Element("html")
	head := dom.Element("head")
	head.AppendChild(dom.Element("meta", html.Attribute{Key: "charset", Val: "utf-8"}))
	title := dom.Element("title")
	title.AppendChild(dom.Text(o.Title))
	head.AppendChild(title)

	body := dom.Element("body")
	body.AppendChild(o.Nav(c))

	root.AppendChild(head)
	root.AppendChild(body)
	doc.AppendChild(root)

	return doc
}

// Handler returns an HTTP handler that responds with the outline as JSON.
func (o *Outline) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("handling outline request",
			"method", r.Method,
			"url", r.URL.Path,
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(o); err != nil {
			slog.Error("failed to encode outline", "error", err)
			return
		}
	})
}

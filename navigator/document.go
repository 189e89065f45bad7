package navigator

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrNoTarget is returned when the element a navigation should load
	// into can't be found.
	ErrNoTarget = errors.New("navigation target not found")
)

// ReadyState mirrors the browser's document.readyState.
type ReadyState string

const (
	// ReadyStateLoading is the state of a Document until MarkLoaded is
	// called on the Navigator using it.
	ReadyStateLoading ReadyState = "loading"

	// ReadyStateComplete is the state of a Document after it has loaded.
	ReadyStateComplete ReadyState = "complete"
)

// Document is a parsed HTML document that navigations are loaded into. It's
// safe for concurrent use; the *html.Node values it hands out should only be
// read while no navigation is in progress.
type Document struct {
	mu    sync.Mutex
	root  *html.Node
	state ReadyState
}

// Parse parses a whole HTML document. Missing <html>, <head>, and <body>
// elements are created, as a browser would.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing document: %w", err)
	}
	return &Document{root: root, state: ReadyStateLoading}, nil
}

// ParseString is Parse for a string.
func ParseString(doc string) (*Document, error) {
	return Parse(strings.NewReader(doc))
}

// ReadyState returns the Document's current state.
func (d *Document) ReadyState() ReadyState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Document) setState(state ReadyState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
}

// Head returns the document's <head> element.
func (d *Document) Head() *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return findElement(d.root, atom.Head)
}

// Body returns the document's <body> element.
func (d *Document) Body() *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return findElement(d.root, atom.Body)
}

// Query returns the first element matching the CSS selector, or an error
// wrapping ErrNoTarget if nothing matches.
func (d *Document) Query(selector string) (*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("error parsing selector %q: %w", selector, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	node := sel.MatchFirst(d.root)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTarget, selector)
	}
	return node, nil
}

// HasAsset reports whether any element in the document has the attribute
// key set to exactly url, e.g. HasAsset("src", "/a.js").
func (d *Document) HasAsset(key, url string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return hasAttrValue(d.root, key, url)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String returns the document as HTML.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// mutate runs fn with the document locked.
func (d *Document) mutate(fn func(root *html.Node) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.root)
}

func findElement(node *html.Node, a atom.Atom) *html.Node {
	if node.Type == html.ElementNode && node.DataAtom == a {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}
	return nil
}

func hasAttrValue(node *html.Node, key, val string) bool {
	if node.Type == html.ElementNode {
		for _, attr := range node.Attr {
			if attr.Namespace == "" && attr.Key == key && attr.Val == val {
				return true
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if hasAttrValue(child, key, val) {
			return true
		}
	}
	return false
}

// setAttr sets key on node, replacing any value it already has.
func setAttr(node *html.Node, key, val string) {
	for i, attr := range node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			node.Attr[i].Val = val
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: val})
}

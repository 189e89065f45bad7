// Package navigator loads pages served by markup.Site.PageHandler into a
// Document without a full page load, the way the browser script does: it
// fetches a Fragment, adds the stylesheets and scripts the document doesn't
// already reference to its <head>, replaces the target element's content,
// and re-attaches the page's inline scripts so a ScriptRunner can run them.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"impractical.co/markup"
)

var (
	// ErrUnexpectedStatus is returned when the server answers a
	// navigation with anything but 200 OK.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

var tracer = otel.Tracer("impractical.co/markup/navigator")

// Event names the hooks listeners can register for.
type Event string

const (
	// EventLoad fires once, when the document has loaded.
	EventLoad Event = "load"

	// EventAjax fires after every completed navigation.
	EventAjax Event = "ajax"
)

// State is a step of a navigation.
type State string

// A navigation moves through these states in order, returning to StateIdle
// when it completes or fails.
const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateExtracting State = "extracting"
	StateInjecting  State = "injecting-assets"
	StateSplicing   State = "splicing-dom"
	StateExecuting  State = "executing-scripts"
)

// ScriptRunner executes the inline scripts of a loaded page, in order, after
// they've been attached to the document.
type ScriptRunner interface {
	RunScript(ctx context.Context, script *html.Node) error
}

// Config configures a Navigator.
type Config struct {
	// Client makes the requests. Defaults to http.DefaultClient. Set a
	// Timeout on it to bound navigations; none is applied otherwise.
	Client *http.Client

	// BaseURL resolves relative hrefs.
	BaseURL string

	// Runner, if set, is handed each inline script after it's attached.
	Runner ScriptRunner

	// Msgpack asks the server for msgpack payloads instead of JSON.
	Msgpack bool

	// Observe, if set, is called as a navigation moves between states.
	Observe func(ctx context.Context, href string, state State)
}

// Options controls a single navigation.
type Options struct {
	// Delay is the minimum time between the start of the request and the
	// target's content being replaced. Time spent waiting on the server
	// counts towards it.
	Delay time.Duration

	// History records the loaded URL in the Navigator's history.
	History bool

	// HistoryIgnoreSegment, if set, trims the URL recorded in history
	// from the last occurrence of the segment onwards.
	HistoryIgnoreSegment string
}

// ListenerID identifies a registered listener so it can be removed with Off.
type ListenerID uint64

type listener struct {
	id ListenerID
	fn func(context.Context)
}

// Navigator performs partial page loads into a Document. Navigations aren't
// coordinated: starting a second one while the first is still in flight runs
// both, and whichever finishes last decides the target's content.
type Navigator struct {
	doc     *Document
	client  *http.Client
	base    *url.URL
	runner  ScriptRunner
	accept  string
	observe func(context.Context, string, State)

	mu            sync.Mutex
	nextID        ListenerID
	loadListeners []listener
	ajaxListeners []listener
	history       []string
}

// New returns a Navigator loading pages into doc.
func New(doc *Document, cfg Config) (*Navigator, error) {
	nav := &Navigator{
		doc:     doc,
		client:  cfg.Client,
		runner:  cfg.Runner,
		accept:  markup.ContentTypeJSON,
		observe: cfg.Observe,
	}
	if nav.client == nil {
		nav.client = http.DefaultClient
	}
	if cfg.Msgpack {
		nav.accept = markup.ContentTypeMsgpack
	}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("error parsing base URL %q: %w", cfg.BaseURL, err)
		}
		nav.base = base
	}
	return nav, nil
}

// Document returns the Document the Navigator loads into.
func (n *Navigator) Document() *Document {
	return n.doc
}

// Load fetches href and loads it into the first element matching the CSS
// selector target. See LoadInto.
func (n *Navigator) Load(ctx context.Context, href, target string, opts Options) error {
	if href == "" {
		return nil
	}
	if target == "" {
		target = "body"
	}
	node, err := n.doc.Query(target)
	if err != nil {
		markup.Logger(ctx).ErrorContext(ctx, "error finding navigation target", "href", href, "target", target, "error", err)
		return err
	}
	return n.LoadInto(ctx, href, node, opts)
}

// LoadInto fetches href as a Fragment and loads it into target.
//
// The stylesheets and scripts the Fragment lists are appended to the
// document's <head>, except ones an element in the document already points
// at. Once opts.Delay has passed, target's children are replaced by the
// Fragment's markup, minus its inline scripts, which are appended to target
// afterwards and handed to the ScriptRunner. Finally, EventAjax listeners
// are called.
//
// If the request or the payload fails, the error is logged and returned and
// the document is left as it was.
func (n *Navigator) LoadInto(ctx context.Context, href string, target *html.Node, opts Options) (err error) {
	if href == "" {
		return nil
	}
	if target == nil {
		return ErrNoTarget
	}
	started := time.Now()
	ctx, span := tracer.Start(ctx, "navigator.Load", traceAttrs(href, opts)...)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			markup.Logger(ctx).ErrorContext(ctx, "error loading page", "href", href, "error", err)
		}
		n.setState(ctx, href, StateIdle)
		span.End()
	}()

	n.setState(ctx, href, StateFetching)
	frag, err := n.fetch(ctx, href)
	if err != nil {
		return err
	}

	n.setState(ctx, href, StateExtracting)
	cleaned, scripts := ExtractScripts(frag.HTML)
	var nodes []*html.Node
	err = n.doc.mutate(func(_ *html.Node) error {
		var err error
		nodes, err = html.ParseFragment(strings.NewReader(cleaned), target)
		return err
	})
	if err != nil {
		return fmt.Errorf("error parsing fragment from %q: %w", href, err)
	}

	n.setState(ctx, href, StateInjecting)
	added := n.injectAssets(frag)
	span.SetAttributes(attribute.Int("navigator.assets_added", added))
	if opts.History {
		n.pushHistory(href, opts.HistoryIgnoreSegment)
	}

	if wait := opts.Delay - time.Since(started); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	n.setState(ctx, href, StateSplicing)
	_ = n.doc.mutate(func(_ *html.Node) error {
		for child := target.FirstChild; child != nil; child = target.FirstChild {
			target.RemoveChild(child)
		}
		for _, node := range nodes {
			target.AppendChild(node)
		}
		for _, script := range scripts {
			target.AppendChild(script)
		}
		return nil
	})

	n.setState(ctx, href, StateExecuting)
	if n.runner != nil {
		for _, script := range scripts {
			if err := n.runner.RunScript(ctx, script); err != nil {
				markup.Logger(ctx).WarnContext(ctx, "error running inline script", "href", href, "error", err)
			}
		}
	}
	n.trigger(ctx, EventAjax)
	return nil
}

func traceAttrs(href string, opts Options) []trace.SpanStartOption {
	return []trace.SpanStartOption{trace.WithAttributes(
		attribute.String("navigator.href", href),
		attribute.Int64("navigator.delay_ms", opts.Delay.Milliseconds()),
		attribute.Bool("navigator.history", opts.History),
	)}
}

func (n *Navigator) setState(ctx context.Context, href string, state State) {
	markup.Logger(ctx).DebugContext(ctx, "navigation state", "href", href, "state", state)
	if n.observe != nil {
		n.observe(ctx, href, state)
	}
}

func (n *Navigator) fetch(ctx context.Context, href string) (markup.Fragment, error) {
	u, err := url.Parse(href)
	if err != nil {
		return markup.Fragment{}, fmt.Errorf("error parsing %q: %w", href, err)
	}
	if n.base != nil {
		u = n.base.ResolveReference(u)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return markup.Fragment{}, fmt.Errorf("error building request for %q: %w", u, err)
	}
	req.Header.Set(markup.RequestedWithHeader, markup.RequestedWithValue)
	req.Header.Set("Accept", n.accept)
	resp, err := n.client.Do(req)
	if err != nil {
		return markup.Fragment{}, fmt.Errorf("error requesting %q: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return markup.Fragment{}, fmt.Errorf("%w: %s from %q", ErrUnexpectedStatus, resp.Status, u)
	}
	frag, err := markup.DecodeFragment(resp.Header.Get("Content-Type"), resp.Body)
	if err != nil {
		return markup.Fragment{}, fmt.Errorf("error reading %q: %w", u, err)
	}
	return frag, nil
}

// injectAssets appends an element to <head> for every stylesheet and script
// in frag that the document doesn't already reference, and returns how many
// it added. The document, not any server-side Registry, decides what's
// already loaded.
func (n *Navigator) injectAssets(frag markup.Fragment) int {
	added := 0
	_ = n.doc.mutate(func(root *html.Node) error {
		head := findElement(root, atom.Head)
		if head == nil {
			return nil
		}
		for _, style := range frag.Styles {
			if style.Src == "" || hasAttrValue(root, "href", style.Src) {
				continue
			}
			link := &html.Node{Type: html.ElementNode, DataAtom: atom.Link, Data: "link"}
			setAttr(link, "href", style.Src)
			setAttr(link, "rel", "stylesheet")
			setAttr(link, "type", "text/css")
			copyAttrs(link, style.Attrs)
			head.AppendChild(link)
			added++
		}
		for _, script := range frag.Scripts {
			if script.Src == "" || hasAttrValue(root, "src", script.Src) {
				continue
			}
			// no async attribute: injected scripts run in order, so
			// later ones can depend on earlier ones
			tag := &html.Node{Type: html.ElementNode, DataAtom: atom.Script, Data: "script"}
			setAttr(tag, "src", script.Src)
			copyAttrs(tag, script.Attrs)
			head.AppendChild(tag)
			added++
		}
		return nil
	})
	return added
}

func copyAttrs(node *html.Node, attrs markup.Attrs) {
	for _, attr := range attrs {
		if attr.Name == "" {
			continue
		}
		setAttr(node, attr.Name, attr.Value)
	}
}

func (n *Navigator) pushHistory(href, ignoreSegment string) {
	if ignoreSegment != "" {
		if idx := strings.LastIndex(href, ignoreSegment); idx >= 0 {
			href = href[:idx]
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = append(n.history, href)
}

// History returns the URLs recorded by navigations with Options.History set,
// oldest first.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	res := make([]string, len(n.history))
	copy(res, n.history)
	return res
}

// On registers fn for event.
//
// For EventLoad, fn is called right away if the document has already loaded,
// and otherwise once MarkLoaded is called. Setting alsoAfterAjax registers fn
// for EventAjax too, so it runs on load and after every navigation.
//
// The returned ListenerID removes fn again with Off.
func (n *Navigator) On(ctx context.Context, event Event, fn func(context.Context), alsoAfterAjax bool) ListenerID {
	n.mu.Lock()
	n.nextID++
	l := listener{id: n.nextID, fn: fn}
	callNow := false
	switch event {
	case EventLoad:
		if n.doc.ReadyState() == ReadyStateComplete {
			callNow = true
		} else {
			n.loadListeners = append(n.loadListeners, l)
		}
		if alsoAfterAjax {
			n.ajaxListeners = append(n.ajaxListeners, l)
		}
	case EventAjax:
		n.ajaxListeners = append(n.ajaxListeners, l)
	}
	n.mu.Unlock()
	if callNow {
		fn(ctx)
	}
	return l.id
}

// Off removes the listener registered for event under id. A listener
// registered for EventLoad with alsoAfterAjax needs removing from both
// events.
func (n *Navigator) Off(event Event, id ListenerID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	remove := func(list []listener) []listener {
		res := list[:0]
		for _, l := range list {
			if l.id != id {
				res = append(res, l)
			}
		}
		return res
	}
	switch event {
	case EventLoad:
		n.loadListeners = remove(n.loadListeners)
	case EventAjax:
		n.ajaxListeners = remove(n.ajaxListeners)
	}
}

// MarkLoaded moves the document to ReadyStateComplete and calls the pending
// EventLoad listeners. Calling it again does nothing.
func (n *Navigator) MarkLoaded(ctx context.Context) {
	if n.doc.ReadyState() == ReadyStateComplete {
		return
	}
	n.doc.setState(ReadyStateComplete)
	n.mu.Lock()
	pending := n.loadListeners
	n.loadListeners = nil
	n.mu.Unlock()
	for _, l := range pending {
		l.fn(ctx)
	}
}

func (n *Navigator) trigger(ctx context.Context, event Event) {
	if event != EventAjax {
		return
	}
	n.mu.Lock()
	listeners := make([]listener, len(n.ajaxListeners))
	copy(listeners, n.ajaxListeners)
	n.mu.Unlock()
	for _, l := range listeners {
		l.fn(ctx)
	}
}

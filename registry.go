package markup

import (
	"strings"
)

// orderedSet is a set of Assets keyed by Src that remembers insertion order.
type orderedSet struct {
	assets []Asset
	seen   map[string]struct{}
}

func (set *orderedSet) add(asset Asset) bool {
	if asset.Src == "" {
		return false
	}
	if set.seen == nil {
		set.seen = map[string]struct{}{}
	}
	if _, ok := set.seen[asset.Src]; ok {
		return false
	}
	if asset.Attr == "" {
		asset.Attr = asset.Attrs.String()
	}
	set.seen[asset.Src] = struct{}{}
	set.assets = append(set.assets, asset)
	return true
}

func (set *orderedSet) list() []Asset {
	res := make([]Asset, len(set.assets))
	copy(res, set.assets)
	return res
}

// Registry keeps track of the components that have been rendered and the
// scripts and stylesheets they need. It should be created fresh for every
// page being rendered and thrown away once the page has been written; it is
// not safe for use by multiple goroutines.
//
// The zero value is ready to use.
type Registry struct {
	components []string
	seen       map[string]struct{}

	headScripts orderedSet
	bodyScripts orderedSet
	styles      orderedSet
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddComponent records that the component identified by key has been
// rendered. It returns false if the key was already recorded.
func (reg *Registry) AddComponent(key string) bool {
	if key == "" {
		return false
	}
	if reg.seen == nil {
		reg.seen = map[string]struct{}{}
	}
	if _, ok := reg.seen[key]; ok {
		return false
	}
	reg.seen[key] = struct{}{}
	reg.components = append(reg.components, key)
	return true
}

// HasComponent reports whether key has been recorded with AddComponent.
func (reg *Registry) HasComponent(key string) bool {
	_, ok := reg.seen[key]
	return ok
}

// Components returns the recorded component keys in the order they were
// first rendered.
func (reg *Registry) Components() []string {
	res := make([]string, len(reg.components))
	copy(res, reg.components)
	return res
}

// AddScript adds a script to the bucket for placement. It returns false,
// leaving the Registry untouched, if the asset has no Src or a script with the
// same Src is already in that bucket.
func (reg *Registry) AddScript(placement Placement, asset Asset) bool {
	if placement == PlaceHead {
		return reg.headScripts.add(asset)
	}
	return reg.bodyScripts.add(asset)
}

// Scripts returns the scripts registered for placement, in registration
// order.
func (reg *Registry) Scripts(placement Placement) []Asset {
	if placement == PlaceHead {
		return reg.headScripts.list()
	}
	return reg.bodyScripts.list()
}

// AddStyle adds a stylesheet. It returns false if the asset has no Src or a
// stylesheet with the same Src was already added.
func (reg *Registry) AddStyle(asset Asset) bool {
	return reg.styles.add(asset)
}

// Styles returns the registered stylesheets in registration order.
func (reg *Registry) Styles() []Asset {
	return reg.styles.list()
}

// ListOptions controls how ListComponents joins component keys.
type ListOptions struct {
	// Separator goes between two quoted keys. Defaults to ",".
	Separator string

	// Quote opens each key. Defaults to `"`.
	Quote string

	// ClosingQuote closes each key. Defaults to Quote.
	ClosingQuote string

	// Prepend and Append wrap the whole list.
	Prepend string
	Append  string
}

// ListComponents joins the recorded component keys into a single string,
// for example to hand them to a script as an array literal:
//
//	reg.ListComponents(ListOptions{Prepend: "[", Append: "]"})
//	// ["components/nav","components/card"]
//
// An empty Registry produces an empty string.
func (reg *Registry) ListComponents(opts ListOptions) string {
	if len(reg.components) < 1 {
		return ""
	}
	if opts.Separator == "" {
		opts.Separator = ","
	}
	if opts.Quote == "" {
		opts.Quote = `"`
	}
	if opts.ClosingQuote == "" {
		opts.ClosingQuote = opts.Quote
	}
	sep := opts.ClosingQuote + opts.Separator + opts.Quote
	return opts.Prepend + opts.Quote + strings.Join(reg.components, sep) + opts.ClosingQuote + opts.Append
}

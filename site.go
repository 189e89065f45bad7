package markup

import (
	"context"
	"html/template"
	"io/fs"
	"strings"
	"sync"
)

const (
	// DefaultComponentsDir is the folder, relative to the root of a Site's
	// fs.FS, that components are loaded from.
	DefaultComponentsDir = "components"

	// DefaultSnippetsDir is the folder, relative to the root of a Site's
	// fs.FS, that snippets are loaded from.
	DefaultSnippetsDir = "snippets"

	// DefaultTemplateExt is the extension of component template files.
	DefaultTemplateExt = ".tmpl"
)

// SiteOptions configures a Site. Only FS is required.
type SiteOptions struct {
	// FS holds the component templates and the scripts and stylesheets
	// that sit next to them.
	FS fs.FS

	// BaseURL is the public URL that FS is served under, e.g.
	// "/templates/". Asset srcs are built by joining it with the asset's
	// path inside FS.
	BaseURL string

	// ComponentsDir, SnippetsDir, and TemplateExt override the defaults.
	ComponentsDir string
	SnippetsDir   string
	TemplateExt   string

	// CacheTemplates keeps parsed templates in memory between renders.
	// Rendered output is never cached.
	CacheTemplates bool

	// HostAssets, if set, receives the src of every asset registered by
	// any Renderer created from this Site, for hosts that emit their own
	// tags.
	HostAssets *HostAssets

	// Metrics, if set, is updated as components are rendered and assets
	// are registered.
	Metrics *Metrics

	// Funcs are made available to every template, alongside the
	// Renderer's own functions. The Renderer's functions win on conflict.
	Funcs template.FuncMap
}

// Site is the long-lived, per-server half of the package: it knows where
// templates live and how they're exposed publicly, and it can cache parsed
// templates. Each page render gets its own Renderer from NewRenderer.
//
// A Site must be created with NewSite; its methods are safe for concurrent
// use.
type Site struct {
	fsys          fs.FS
	baseURL       string
	componentsDir string
	snippetsDir   string
	ext           string
	hostAssets    *HostAssets
	metrics       *Metrics
	funcs         template.FuncMap

	cacheTemplates  bool
	templateCache   map[string]*template.Template
	templateCacheMu sync.RWMutex
}

// NewSite returns a Site that is ready to be used.
func NewSite(opts SiteOptions) *Site {
	site := &Site{
		fsys:           opts.FS,
		baseURL:        opts.BaseURL,
		componentsDir:  strings.Trim(opts.ComponentsDir, "/"),
		snippetsDir:    strings.Trim(opts.SnippetsDir, "/"),
		ext:            opts.TemplateExt,
		hostAssets:     opts.HostAssets,
		metrics:        opts.Metrics,
		funcs:          opts.Funcs,
		cacheTemplates: opts.CacheTemplates,
		templateCache:  map[string]*template.Template{},
	}
	if site.baseURL != "" && !strings.HasSuffix(site.baseURL, "/") {
		site.baseURL += "/"
	}
	if site.componentsDir == "" {
		site.componentsDir = DefaultComponentsDir
	}
	if site.snippetsDir == "" {
		site.snippetsDir = DefaultSnippetsDir
	}
	if site.ext == "" {
		site.ext = DefaultTemplateExt
	}
	if !strings.HasPrefix(site.ext, ".") {
		site.ext = "." + site.ext
	}
	return site
}

// FS returns the fs.FS templates and assets are read from.
func (s *Site) FS() fs.FS {
	return s.fsys
}

// BaseURL returns the public URL the Site's fs.FS is served under.
func (s *Site) BaseURL() string {
	return s.baseURL
}

// TemplateExt returns the extension of component template files.
func (s *Site) TemplateExt() string {
	return s.ext
}

// NewRenderer returns a Renderer with a fresh Registry. Call it once per page
// being rendered.
func (s *Site) NewRenderer() *Renderer {
	return &Renderer{
		site:     s,
		registry: NewRegistry(),
	}
}

// cachedTemplate returns the parsed template for path, if one has been
// cached.
func (s *Site) cachedTemplate(_ context.Context, path string) *template.Template {
	if !s.cacheTemplates {
		return nil
	}
	s.templateCacheMu.RLock()
	defer s.templateCacheMu.RUnlock()
	return s.templateCache[path]
}

// setCachedTemplate caches a parsed template for path. It's a no-op unless
// the Site was configured with CacheTemplates.
func (s *Site) setCachedTemplate(_ context.Context, path string, tmpl *template.Template) {
	if !s.cacheTemplates {
		return
	}
	s.templateCacheMu.Lock()
	defer s.templateCacheMu.Unlock()
	s.templateCache[path] = tmpl
}

// HostAssets collects the src of every registered asset, in registration
// order and without duplicates, for hosts that manage their own script and
// stylesheet tags. It is safe for concurrent use.
type HostAssets struct {
	mu      sync.Mutex
	scripts orderedSet
	styles  orderedSet
}

func (h *HostAssets) addScript(src string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scripts.add(Asset{Src: src})
}

func (h *HostAssets) addStyle(src string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.styles.add(Asset{Src: src})
}

// Scripts returns the srcs of every script registered so far.
func (h *HostAssets) Scripts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return srcs(h.scripts.assets)
}

// Styles returns the srcs of every stylesheet registered so far.
func (h *HostAssets) Styles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return srcs(h.styles.assets)
}

func srcs(assets []Asset) []string {
	res := make([]string, 0, len(assets))
	for _, asset := range assets {
		res = append(res, asset.Src)
	}
	return res
}

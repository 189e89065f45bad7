package markup

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrTemplateNotFound is returned when a component or snippet is
	// rendered but its template file doesn't exist.
	ErrTemplateNotFound = errors.New("template not found")
)

const tracerName = "impractical.co/markup"

var tracer = otel.Tracer(tracerName)

// Vars is the data passed to a component's template, available as dot.
//
// Two keys are special: the value of "attrScript" is used as the attributes
// of the component's <script> tag, and the value of "attrStyle" as the
// attributes of its <link> tag. Either can be Attrs, a single Attr, a string
// or []string of bare attribute names, or a map of names to values.
type Vars map[string]any

// Renderer renders components for a single page and remembers which scripts
// and stylesheets they need. Get one from Site.NewRenderer for every page
// being rendered; it is not safe for use by multiple goroutines.
type Renderer struct {
	site     *Site
	registry *Registry
}

// Registry returns the Registry the Renderer records components and assets
// in.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Site returns the Site the Renderer was created from.
func (r *Renderer) Site() *Site {
	return r.site
}

// Component renders the named component from the Site's components folder
// and returns its output.
//
// The first time a component is rendered with a Renderer, a script and a
// stylesheet sharing the component's base name are registered if they exist,
// so components/card.tmpl brings in components/card.js and
// components/card.css. Rendering the same component again renders the
// template again but doesn't register anything new.
//
// An empty name renders nothing. A component whose template doesn't exist
// returns an error wrapping ErrTemplateNotFound.
func (r *Renderer) Component(ctx context.Context, name string, vars Vars) (template.HTML, error) {
	return r.render(ctx, name, normalizeName(name), vars, false)
}

// page renders the component at a request path. Unlike Component, dots in
// the path are kept, so "about.html" is a file name rather than a folder.
func (r *Renderer) page(ctx context.Context, urlPath string, vars Vars) (template.HTML, error) {
	return r.render(ctx, urlPath, cleanName(urlPath), vars, false)
}

// Snippet is like Component, but loads from the Site's snippets folder.
func (r *Renderer) Snippet(ctx context.Context, name string, vars Vars) (template.HTML, error) {
	return r.render(ctx, name, normalizeName(name), vars, true)
}

func (r *Renderer) render(ctx context.Context, name, clean string, vars Vars, snippet bool) (template.HTML, error) {
	if clean == "" {
		return "", nil
	}
	kind := "component"
	if snippet {
		kind = "snippet"
	}
	ctx, span := tracer.Start(ctx, "markup.Component", trace.WithAttributes(
		attribute.String("markup.name", name),
		attribute.String("markup.kind", kind),
	))
	defer span.End()

	key := r.site.resolveKey(clean, snippet)
	span.SetAttributes(attribute.String("markup.key", key.String()))

	if !r.registry.HasComponent(key.String()) {
		if script := key.file(".js"); r.site.exists(script) {
			r.Script(ctx, script, PlaceBody, toAttrs(vars["attrScript"]))
		}
		if style := key.file(".css"); r.site.exists(style) {
			r.Style(ctx, style, toAttrs(vars["attrStyle"]))
		}
		r.registry.AddComponent(key.String())
	}

	out, err := r.execute(ctx, key.file(r.site.ext), vars)
	if err != nil {
		reason := "execute"
		if errors.Is(err, ErrTemplateNotFound) {
			reason = "not_found"
		}
		r.site.metrics.renderFailed(kind, reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("error rendering %s %q: %w", kind, name, err)
	}
	r.site.metrics.rendered(kind)
	return out, nil
}

func (r *Renderer) execute(ctx context.Context, path string, vars Vars) (template.HTML, error) {
	tmpl, err := r.template(ctx, path)
	if err != nil {
		return "", err
	}
	if vars == nil {
		vars = Vars{}
	}
	var out strings.Builder
	err = tmpl.Execute(&out, vars)
	if err != nil {
		return "", fmt.Errorf("error executing template %q: %w", path, err)
	}
	return template.HTML(out.String()), nil // #nosec G203
}

// template returns the parsed template at path with the Renderer's functions
// bound to it, parsing it if the Site doesn't have it cached.
func (r *Renderer) template(ctx context.Context, path string) (*template.Template, error) {
	funcs := r.funcMap(ctx)
	if cached := r.site.cachedTemplate(ctx, path); cached != nil {
		return cloneWithFuncs(cached, funcs)
	}
	if !r.site.exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	contents, err := fs.ReadFile(r.site.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	parsed, err := template.New(path).Funcs(funcs).Parse(string(contents))
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	if !r.site.cacheTemplates {
		return parsed, nil
	}
	// the cached copy is never executed, so it can always be cloned
	r.site.setCachedTemplate(ctx, path, parsed)
	return cloneWithFuncs(parsed, funcs)
}

func cloneWithFuncs(tmpl *template.Template, funcs template.FuncMap) (*template.Template, error) {
	clone, err := tmpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("error cloning template %q: %w", tmpl.Name(), err)
	}
	return clone.Funcs(funcs), nil
}

// mergeFuncMaps flattens two FuncMaps into one, with the values in `over`
// overriding the values in `in` if they have the same keys.
func mergeFuncMaps(in template.FuncMap, over template.FuncMap) template.FuncMap {
	res := template.FuncMap{}
	for k, v := range in {
		res[k] = v
	}
	for k, v := range over {
		res[k] = v
	}
	return res
}

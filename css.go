package markup

import (
	"context"
	"html"
	"html/template"
	"strings"
)

// Style registers a stylesheet for emission by PrintStyles. filename follows
// the same rules as it does for Script, with a .css extension.
func (r *Renderer) Style(ctx context.Context, filename string, attrs Attrs) {
	if filename == "" {
		return
	}
	src, ok := r.site.assetSrc(filename, ".css")
	if !ok {
		r.site.metrics.missing("styles")
		Logger(ctx).DebugContext(ctx, "stylesheet not found, skipping", "filename", filename)
		return
	}
	added := r.registry.AddStyle(NewAsset(src, attrs))
	r.site.metrics.registered("styles", added)
	if r.site.hostAssets != nil {
		r.site.hostAssets.addStyle(src)
	}
}

// Styles is a shorthand for PrintStyles on the Renderer's Registry.
func (r *Renderer) Styles() template.HTML {
	return r.registry.PrintStyles()
}

// PrintStyles returns a <link> tag for every registered stylesheet, in the
// order they were registered.
func (reg *Registry) PrintStyles() template.HTML {
	var b strings.Builder
	for _, style := range reg.Styles() {
		b.WriteString(`<link rel="stylesheet" type="text/css" href="`)
		b.WriteString(html.EscapeString(style.Src))
		b.WriteByte('"')
		if style.Attr != "" {
			b.WriteByte(' ')
			b.WriteString(style.Attr)
		}
		b.WriteByte('>')
	}
	return template.HTML(b.String()) // #nosec G203
}

package markup

import (
	"context"
	"html"
	"html/template"
	"strings"
)

// Script registers a script for emission by PrintScripts. filename is either
// an absolute URL, which is used as-is, or a path inside the Site's fs.FS,
// with or without its .js extension. Local scripts are versioned with their
// modification time, and skipped entirely if they don't exist.
//
// Registering the same src twice for the same placement is a no-op. Script
// never fails; problems are logged at debug level.
func (r *Renderer) Script(ctx context.Context, filename string, placement Placement, attrs Attrs) {
	if filename == "" {
		return
	}
	if placement != PlaceHead {
		placement = PlaceBody
	}
	bucket := "scripts_" + string(placement)
	src, ok := r.site.assetSrc(filename, ".js")
	if !ok {
		r.site.metrics.missing(bucket)
		Logger(ctx).DebugContext(ctx, "script not found, skipping", "filename", filename)
		return
	}
	added := r.registry.AddScript(placement, NewAsset(src, attrs))
	r.site.metrics.registered(bucket, added)
	if r.site.hostAssets != nil {
		r.site.hostAssets.addScript(src)
	}
}

// Scripts is a shorthand for PrintScripts on the Renderer's Registry.
func (r *Renderer) Scripts(placement Placement) template.HTML {
	return r.registry.PrintScripts(placement)
}

// PrintScripts returns a <script> tag for every script registered for
// placement, in the order they were registered.
func (reg *Registry) PrintScripts(placement Placement) template.HTML {
	var b strings.Builder
	for _, script := range reg.Scripts(placement) {
		b.WriteString(`<script src="`)
		b.WriteString(html.EscapeString(script.Src))
		b.WriteByte('"')
		if script.Attr != "" {
			b.WriteByte(' ')
			b.WriteString(script.Attr)
		}
		b.WriteString("></script>")
	}
	return template.HTML(b.String()) // #nosec G203
}

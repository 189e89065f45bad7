package markup

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Templ wraps a component so it can be used from templ templates:
//
//	@renderer.Templ("cards/product", markup.Vars{"title": p.Title})
//
// The component's assets are registered when the templ component is
// rendered, so the tags should be printed after it, as they would be from an
// html/template layout.
func (r *Renderer) Templ(name string, vars Vars) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Component(ctx, name, vars)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, string(out))
		return err
	})
}

// TemplTags returns a templ component that writes the tags for placement.
// PlaceHead writes the registered stylesheets followed by the head scripts;
// PlaceBody writes the body scripts.
func (r *Renderer) TemplTags(placement Placement) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		tags := r.Scripts(placement)
		if placement == PlaceHead {
			tags = r.Styles() + tags
		}
		_, err := io.WriteString(w, string(tags))
		return err
	})
}

package markup_test

import (
	"context"
	"strings"
	"testing"

	"impractical.co/markup"
)

func TestTempl(t *testing.T) {
	t.Parallel()

	r := newTestSite(map[string]string{
		"components/card.tmpl": `<div>{{ .title }}</div>`,
		"components/card.js":   ``,
		"components/card.css":  ``,
	}).NewRenderer()
	ctx := context.Background()

	var out strings.Builder
	if err := r.Templ("card", markup.Vars{"title": "templ"}).Render(ctx, &out); err != nil {
		t.Fatalf("Unexpected error rendering card: %s", err)
	}
	if err := r.TemplTags(markup.PlaceHead).Render(ctx, &out); err != nil {
		t.Fatalf("Unexpected error rendering head tags: %s", err)
	}
	if err := r.TemplTags(markup.PlaceBody).Render(ctx, &out); err != nil {
		t.Fatalf("Unexpected error rendering body tags: %s", err)
	}
	want := `<div>templ</div>` +
		`<link rel="stylesheet" type="text/css" href="/templates/components/card.css` + testVersion + `">` +
		`<script src="/templates/components/card.js` + testVersion + `"></script>`
	if got := out.String(); got != want {
		t.Errorf("Expected\n%s\ngot\n%s", want, got)
	}

	err := r.Templ("missing", nil).Render(ctx, &out)
	if err == nil || !strings.Contains(err.Error(), "template not found") {
		t.Errorf("Expected a template not found error, got %v", err)
	}
}

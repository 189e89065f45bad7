package markup_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"impractical.co/markup"
)

func TestRegistryScriptsDeduplicate(t *testing.T) {
	t.Parallel()

	var reg markup.Registry
	adds := []struct {
		placement markup.Placement
		src       string
		added     bool
	}{
		{markup.PlaceBody, "/b.js", true},
		{markup.PlaceBody, "/c.js", true},
		{markup.PlaceBody, "/b.js", false},
		{markup.PlaceHead, "/b.js", true},
		{markup.PlaceHead, "/a.js", true},
		{markup.PlaceHead, "", false},
		{markup.PlaceHead, "/a.js", false},
	}
	for _, add := range adds {
		if got := reg.AddScript(add.placement, markup.NewAsset(add.src, nil)); got != add.added {
			t.Errorf("AddScript(%s, %q): expected %v, got %v", add.placement, add.src, add.added, got)
		}
	}

	srcs := func(assets []markup.Asset) []string {
		var res []string
		for _, asset := range assets {
			res = append(res, asset.Src)
		}
		return res
	}
	if diff := cmp.Diff([]string{"/b.js", "/a.js"}, srcs(reg.Scripts(markup.PlaceHead))); diff != "" {
		t.Errorf("Unexpected head scripts (-wanted, +got): %s", diff)
	}
	if diff := cmp.Diff([]string{"/b.js", "/c.js"}, srcs(reg.Scripts(markup.PlaceBody))); diff != "" {
		t.Errorf("Unexpected body scripts (-wanted, +got): %s", diff)
	}
}

func TestRegistryDuplicateKeepsFirstAttrs(t *testing.T) {
	t.Parallel()

	reg := markup.NewRegistry()
	reg.AddStyle(markup.NewAsset("/s.css", markup.Attrs{markup.A("media", "print")}))
	reg.AddStyle(markup.NewAsset("/s.css", markup.Attrs{markup.A("media", "screen")}))

	once := markup.NewRegistry()
	once.AddStyle(markup.NewAsset("/s.css", markup.Attrs{markup.A("media", "print")}))

	if twice, single := reg.PrintStyles(), once.PrintStyles(); twice != single {
		t.Errorf("Expected registering twice to match registering once, got %q and %q", twice, single)
	}
}

func TestRegistryComponents(t *testing.T) {
	t.Parallel()

	reg := markup.NewRegistry()
	if !reg.AddComponent("components/nav") {
		t.Error("Expected first AddComponent to succeed")
	}
	if reg.AddComponent("components/nav") {
		t.Error("Expected duplicate AddComponent to be rejected")
	}
	if reg.AddComponent("") {
		t.Error("Expected empty key to be rejected")
	}
	reg.AddComponent("components/card")

	if !reg.HasComponent("components/card") {
		t.Error("Expected components/card to be registered")
	}
	if reg.HasComponent("components/footer") {
		t.Error("Didn't expect components/footer to be registered")
	}
	if diff := cmp.Diff([]string{"components/nav", "components/card"}, reg.Components()); diff != "" {
		t.Errorf("Unexpected components (-wanted, +got): %s", diff)
	}
}

func TestListComponents(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		components []string
		opts       markup.ListOptions
		want       string
	}{
		"empty": {
			opts: markup.ListOptions{Prepend: "[", Append: "]"},
			want: "",
		},
		"defaults": {
			components: []string{"components/a", "components/b"},
			want:       `"components/a","components/b"`,
		},
		"single": {
			components: []string{"components/a"},
			opts:       markup.ListOptions{Prepend: "[", Append: "]"},
			want:       `["components/a"]`,
		},
		"custom-quotes": {
			components: []string{"a", "b", "c"},
			opts:       markup.ListOptions{Separator: " ", Quote: "<", ClosingQuote: ">"},
			want:       `<a> <b> <c>`,
		},
		"array-literal": {
			components: []string{"a", "b"},
			opts:       markup.ListOptions{Separator: ", ", Quote: "'", Prepend: "[", Append: "]"},
			want:       `['a', 'b']`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			reg := markup.NewRegistry()
			for _, c := range tc.components {
				reg.AddComponent(c)
			}
			if got := reg.ListComponents(tc.opts); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPrintTagsEndToEnd(t *testing.T) {
	t.Parallel()

	reg := markup.NewRegistry()
	reg.AddScript(markup.PlaceHead, markup.NewAsset("/a.js", nil))
	reg.AddScript(markup.PlaceBody, markup.NewAsset("/b.js", markup.Attrs{markup.Flag("defer")}))
	reg.AddScript(markup.PlaceBody, markup.NewAsset("/c.js", markup.Attrs{markup.A("type", "module")}))
	reg.AddScript(markup.PlaceBody, markup.NewAsset("/b.js", nil))
	reg.AddStyle(markup.NewAsset("/s.css", nil))
	reg.AddStyle(markup.NewAsset("/s.css", nil))

	got := string(reg.PrintStyles() + reg.PrintScripts(markup.PlaceHead) + reg.PrintScripts(markup.PlaceBody))
	want := `<link rel="stylesheet" type="text/css" href="/s.css">` +
		`<script src="/a.js"></script>` +
		`<script src="/b.js" defer></script>` +
		`<script src="/c.js" type="module"></script>`
	if got != want {
		t.Errorf("Expected\n%s\ngot\n%s", want, got)
	}
}

func TestPrintTagsEscapeSources(t *testing.T) {
	t.Parallel()

	reg := markup.NewRegistry()
	reg.AddScript(markup.PlaceBody, markup.NewAsset(`/a.js?x=1&y=2`, nil))
	reg.AddScript(markup.PlaceBody, markup.NewAsset(`/b.js?"><script>`, nil))
	reg.AddStyle(markup.NewAsset(`/s.css?x=1&y=2`, nil))

	want := `<script src="/a.js?x=1&amp;y=2"></script><script src="/b.js?&#34;&gt;&lt;script&gt;"></script>`
	if got := string(reg.PrintScripts(markup.PlaceBody)); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	want = `<link rel="stylesheet" type="text/css" href="/s.css?x=1&amp;y=2">`
	if got := string(reg.PrintStyles()); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestAddScriptWithoutSerializedAttrs(t *testing.T) {
	t.Parallel()

	reg := markup.NewRegistry()
	reg.AddScript(markup.PlaceBody, markup.Asset{Src: "/x.js", Attrs: markup.Attrs{markup.Flag("async")}})
	if got, want := string(reg.PrintScripts(markup.PlaceBody)), `<script src="/x.js" async></script>`; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestAttrsString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		attrs markup.Attrs
		want  string
	}{
		"empty":   {want: ""},
		"bare":    {attrs: markup.Attrs{markup.Flag("defer")}, want: "defer"},
		"named":   {attrs: markup.Attrs{markup.A("type", "module")}, want: `type="module"`},
		"ordered": {attrs: markup.Attrs{markup.A("type", "module"), markup.Flag("defer"), markup.A("id", "x")}, want: `type="module" defer id="x"`},
		"escaped": {attrs: markup.Attrs{markup.A("data-x", `a"b<c`)}, want: `data-x="a&#34;b&lt;c"`},
		"no-name": {attrs: markup.Attrs{markup.A("", "ignored"), markup.Flag("nomodule")}, want: "nomodule"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := tc.attrs.String(); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

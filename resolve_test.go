package markup_test

import (
	"testing"

	"impractical.co/markup"
)

func TestResolveComponent(t *testing.T) {
	t.Parallel()

	site := newTestSite(map[string]string{
		"components/card.tmpl":          "",
		"components/a/b.tmpl":           "",
		"components/w/b/b.tmpl":         "",
		"components/nav/nav.tmpl":       "",
		"components/nav.tmpl":           "",
		"components/half/half.js":       "",
		"snippets/icon.tmpl":            "",
		"snippets/icons/star/star.tmpl": "",
	})

	tests := map[string]struct {
		name    string
		snippet bool
		want    markup.ComponentKey
	}{
		"leaf":              {name: "card", want: markup.ComponentKey{Dir: "components", Name: "card"}},
		"two-segments":      {name: "a/b", want: markup.ComponentKey{Dir: "components/a", Name: "b"}},
		"wrapper-folder":    {name: "w/b", want: markup.ComponentKey{Dir: "components/w/b", Name: "b"}},
		"wrapper-preferred": {name: "nav", want: markup.ComponentKey{Dir: "components/nav", Name: "nav"}},
		"wrapper-needs-template": {
			name: "half",
			want: markup.ComponentKey{Dir: "components", Name: "half"},
		},
		"dotted":        {name: "a.b", want: markup.ComponentKey{Dir: "components/a", Name: "b"}},
		"slashes":       {name: "/a/b/", want: markup.ComponentKey{Dir: "components/a", Name: "b"}},
		"snippet":       {name: "icon", snippet: true, want: markup.ComponentKey{Dir: "snippets", Name: "icon"}},
		"snippet-wrap":  {name: "icons/star", snippet: true, want: markup.ComponentKey{Dir: "snippets/icons/star", Name: "star"}},
		"missing":       {name: "x/y", want: markup.ComponentKey{Dir: "components/x", Name: "y"}},
		"no-escape-out": {name: "../../etc/passwd", want: markup.ComponentKey{Dir: "components/etc", Name: "passwd"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := site.ResolveComponent(tc.name, tc.snippet); got != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestComponentKeyString(t *testing.T) {
	t.Parallel()

	key := markup.ComponentKey{Dir: "components/a", Name: "b"}
	if got := key.String(); got != "components/a/b" {
		t.Errorf("Expected components/a/b, got %q", got)
	}
}

func TestPathAndURL(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		baseURL  string
		filename string
		path     string
		url      string
	}{
		"relative":               {baseURL: "/templates/", filename: "components/a.js", path: "components/a.js", url: "/templates/components/a.js"},
		"leading-slash":          {baseURL: "/templates/", filename: "/components/a.js", path: "components/a.js", url: "/templates/components/a.js"},
		"already-url":            {baseURL: "/templates/", filename: "/templates/components/a.js", path: "components/a.js", url: "/templates/components/a.js"},
		"base-no-slash":          {baseURL: "/static", filename: "a.css", path: "a.css", url: "/static/a.css"},
		"absolute-base":          {baseURL: "https://cdn.example.com/", filename: "a.css", path: "a.css", url: "https://cdn.example.com/a.css"},
		"no-base":                {filename: "a.css", path: "a.css", url: "a.css"},
		"relative-base":          {baseURL: "components/", filename: "components/card.js", path: "components/card.js", url: "components/components/card.js"},
		"relative-base-no-slash": {baseURL: "static", filename: "static/a.css", path: "static/a.css", url: "static/static/a.css"},
		"cleaned":                {baseURL: "/t/", filename: "x/../y/./a.js", path: "y/a.js", url: "/t/y/a.js"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			site := markup.NewSite(markup.SiteOptions{FS: mapFS(nil), BaseURL: tc.baseURL})
			p, u := site.PathAndURL(tc.filename)
			if p != tc.path {
				t.Errorf("Expected path %q, got %q", tc.path, p)
			}
			if u != tc.url {
				t.Errorf("Expected URL %q, got %q", tc.url, u)
			}
		})
	}
}

package navigator_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"impractical.co/markup/navigator"
)

func scriptAttrs(node *html.Node) map[string]string {
	res := map[string]string{}
	for _, attr := range node.Attr {
		res[attr.Key] = attr.Val
	}
	return res
}

func scriptBody(node *html.Node) string {
	if node.FirstChild == nil {
		return ""
	}
	return node.FirstChild.Data
}

func TestExtractScripts(t *testing.T) {
	t.Parallel()

	cleaned, scripts := navigator.ExtractScripts(`<p>x</p><script>alert(1)</script><script src="x.js"></script>`)
	if len(scripts) != 1 {
		t.Fatalf("Expected 1 script, got %d", len(scripts))
	}
	if got := scriptBody(scripts[0]); got != "alert(1)" {
		t.Errorf("Expected body %q, got %q", "alert(1)", got)
	}
	if scripts[0].Parent != nil {
		t.Error("Expected the script to be detached")
	}
	if want := `<p>x</p><script src="x.js"></script>`; cleaned != want {
		t.Errorf("Expected cleaned markup %q, got %q", want, cleaned)
	}
}

func TestExtractScriptsAttributes(t *testing.T) {
	t.Parallel()

	markup := "<div>\n<SCRIPT type=\"module\" data-x='y' data-n=5 async>\nimport('./a.js');\n</SCRIPT>\n<script>b()</script></div>"
	cleaned, scripts := navigator.ExtractScripts(markup)
	if want := "<div>\n\n</div>"; cleaned != want {
		t.Errorf("Expected cleaned markup %q, got %q", want, cleaned)
	}
	if len(scripts) != 2 {
		t.Fatalf("Expected 2 scripts, got %d", len(scripts))
	}
	wantAttrs := map[string]string{"type": "module", "data-x": "y", "data-n": "5", "async": ""}
	if diff := cmp.Diff(wantAttrs, scriptAttrs(scripts[0])); diff != "" {
		t.Errorf("Unexpected attributes (-wanted, +got): %s", diff)
	}
	if got := scriptBody(scripts[0]); got != "\nimport('./a.js');\n" {
		t.Errorf("Unexpected body %q", got)
	}
	if got := scriptBody(scripts[1]); got != "b()" {
		t.Errorf("Expected second body %q, got %q", "b()", got)
	}
}

func TestExtractScriptsNone(t *testing.T) {
	t.Parallel()

	in := `<p>no scripts <script src="a.js"></script></p>`
	cleaned, scripts := navigator.ExtractScripts(in)
	if cleaned != in {
		t.Errorf("Expected markup to be unchanged, got %q", cleaned)
	}
	if len(scripts) != 0 {
		t.Errorf("Expected no scripts, got %d", len(scripts))
	}
}

// Extraction matches patterns rather than parsing, so a closing tag inside a
// string literal ends the script early.
func TestExtractScriptsClosingTagInString(t *testing.T) {
	t.Parallel()

	cleaned, scripts := navigator.ExtractScripts(`<script>var s = "</script>";</script>`)
	if len(scripts) != 1 {
		t.Fatalf("Expected 1 script, got %d", len(scripts))
	}
	if got := scriptBody(scripts[0]); got != `var s = "` {
		t.Errorf("Expected truncated body, got %q", got)
	}
	if !strings.Contains(cleaned, `";</script>`) {
		t.Errorf("Expected the rest of the script to remain, got %q", cleaned)
	}
}

package navigator

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	scriptPattern = regexp.MustCompile(`(?is)<script([^>]*)>(.*?)</script>`)
	attrPattern   = regexp.MustCompile(`\s([^\s=/>]+)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+)))?`)
)

// ExtractScripts removes the inline scripts from markup and returns them as
// detached <script> elements, in document order, carrying their original
// attributes and body. Scripts with an empty body, like
// <script src="x.js"></script>, stay in the markup.
//
// Extraction is pattern based, not a parse: a "</script>" inside a string
// literal ends the script early.
func ExtractScripts(markup string) (string, []*html.Node) {
	var scripts []*html.Node
	var b strings.Builder
	last := 0
	for _, loc := range scriptPattern.FindAllStringSubmatchIndex(markup, -1) {
		body := markup[loc[4]:loc[5]]
		if body == "" {
			continue
		}
		b.WriteString(markup[last:loc[0]])
		last = loc[1]
		scripts = append(scripts, newScript(markup[loc[2]:loc[3]], body))
	}
	b.WriteString(markup[last:])
	return b.String(), scripts
}

func newScript(attrs, body string) *html.Node {
	script := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
	}
	for _, match := range attrPattern.FindAllStringSubmatch(attrs, -1) {
		val := match[2]
		if val == "" {
			val = match[3]
		}
		if val == "" {
			val = match[4]
		}
		setAttr(script, strings.ToLower(match[1]), val)
	}
	script.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: body,
	})
	return script
}

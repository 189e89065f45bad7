package markup

import (
	"html"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Placement controls where in the document a script is emitted.
type Placement string

const (
	// PlaceBody emits the script at the end of the <body>. It's the
	// default for scripts that components register.
	PlaceBody Placement = "body"

	// PlaceHead emits the script inside the <head>.
	PlaceHead Placement = "head"
)

// Attr is a single HTML attribute on a <script> or <link> tag. An Attr with
// Bare set is a boolean attribute and is emitted without a value, like
// defer or nomodule.
type Attr struct {
	Name  string
	Value string
	Bare  bool
}

// Attrs is an ordered list of attributes. Order is preserved when the
// attributes are serialized, both to HTML and to fragment payloads.
type Attrs []Attr

// A returns a name="value" attribute.
func A(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

// Flag returns a bare boolean attribute.
func Flag(name string) Attr {
	return Attr{Name: name, Bare: true}
}

// String serializes the attributes to HTML attribute text, separated by
// single spaces. Values are escaped; names are emitted as given.
func (attrs Attrs) String() string {
	var b strings.Builder
	for _, attr := range attrs {
		if attr.Name == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(attr.Name)
		if attr.Bare {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Value))
		b.WriteByte('"')
	}
	return b.String()
}

// Asset describes a script or stylesheet that has been registered for
// emission. Src is always non-empty for an Asset held by a Registry.
type Asset struct {
	Src   string `json:"src" msgpack:"src"`
	Attrs Attrs  `json:"attr" msgpack:"attr"`

	// Attr is Attrs, pre-serialized.
	Attr string `json:"-" msgpack:"-"`
}

// NewAsset builds an Asset, serializing attrs once.
func NewAsset(src string, attrs Attrs) Asset {
	return Asset{
		Src:   src,
		Attrs: attrs,
		Attr:  attrs.String(),
	}
}

// toAttrs converts the loosely-typed attribute values that can show up in a
// Vars bag into Attrs. Strings become bare attributes. Maps have no order, so
// their entries are sorted by name; callers that care about ordering should
// pass Attrs.
func toAttrs(val any) Attrs {
	switch v := val.(type) {
	case nil:
		return nil
	case Attrs:
		return v
	case []Attr:
		return Attrs(v)
	case Attr:
		return Attrs{v}
	case string:
		if v == "" {
			return nil
		}
		return Attrs{Flag(v)}
	case []string:
		res := make(Attrs, 0, len(v))
		for _, name := range v {
			res = append(res, Flag(name))
		}
		return res
	case map[string]string:
		res := make(Attrs, 0, len(v))
		for _, name := range slices.Sorted(maps.Keys(v)) {
			res = append(res, A(name, v[name]))
		}
		return res
	case map[string]any:
		res := make(Attrs, 0, len(v))
		for _, name := range slices.Sorted(maps.Keys(v)) {
			switch value := v[name].(type) {
			case bool:
				if value {
					res = append(res, Flag(name))
				}
			case string:
				res = append(res, A(name, value))
			}
		}
		return res
	}
	return nil
}

// isAbsoluteURL reports whether filename already points somewhere on the web
// and should be used as a src verbatim.
func isAbsoluteURL(filename string) bool {
	if strings.HasPrefix(filename, "//") {
		return true
	}
	u, err := url.Parse(filename)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

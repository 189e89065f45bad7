package markup

import (
	"context"
	"fmt"
	"html/template"
)

// funcMap returns the functions templates rendered by r can call. They close
// over ctx so nested renders share its logger and trace.
//
//	{{ component "cards/product" (vars "title" .Title) }}
//	{{ snippet "icon" }}
//	{{ script "vendor/alpine" true (attrs (flag "defer")) }}
//	{{ style "https://example.com/font.css" (attrs (attr "media" "print")) }}
//	{{ styles }} {{ scripts true }} {{ scripts }}
func (r *Renderer) funcMap(ctx context.Context) template.FuncMap {
	script := func(filename string, args ...any) (string, error) {
		placement, attrs, err := scriptArgs(args)
		if err != nil {
			return "", err
		}
		r.Script(ctx, filename, placement, attrs)
		return "", nil
	}
	style := func(filename string, args ...any) (string, error) {
		_, attrs, err := scriptArgs(args)
		if err != nil {
			return "", err
		}
		r.Style(ctx, filename, attrs)
		return "", nil
	}
	own := template.FuncMap{
		"component": func(name string, args ...any) (template.HTML, error) {
			vars, err := toVars(args)
			if err != nil {
				return "", err
			}
			return r.Component(ctx, name, vars)
		},
		"snippet": func(name string, args ...any) (template.HTML, error) {
			vars, err := toVars(args)
			if err != nil {
				return "", err
			}
			return r.Snippet(ctx, name, vars)
		},
		"script": script,
		"js":     script,
		"style":  style,
		"css":    style,
		"scripts": func(head ...bool) template.HTML {
			if len(head) > 0 && head[0] {
				return r.Scripts(PlaceHead)
			}
			return r.Scripts(PlaceBody)
		},
		"styles": r.Styles,
		"listComponents": func(args ...any) (string, error) {
			opts, err := toListOptions(args)
			if err != nil {
				return "", err
			}
			return r.registry.ListComponents(opts), nil
		},
		"attr": A,
		"flag": Flag,
		"attrs": func(list ...Attr) Attrs {
			return Attrs(list)
		},
		"vars": func(pairs ...any) (Vars, error) {
			return toVars(pairs)
		},
	}
	return mergeFuncMaps(r.site.funcs, own)
}

// scriptArgs interprets the optional arguments of the script and style
// template functions: a bool or Placement choosing the placement, and
// attributes in any form toAttrs understands.
func scriptArgs(args []any) (Placement, Attrs, error) {
	placement := PlaceBody
	var attrs Attrs
	for _, arg := range args {
		switch v := arg.(type) {
		case bool:
			if v {
				placement = PlaceHead
			}
		case Placement:
			placement = v
		case Attrs, Attr, []Attr, []string, map[string]string, map[string]any:
			attrs = append(attrs, toAttrs(v)...)
		case string:
			attrs = append(attrs, Flag(v))
		default:
			return placement, nil, fmt.Errorf("unexpected argument %v (%T)", arg, arg)
		}
	}
	return placement, attrs, nil
}

// toVars builds a Vars from either a single map argument or alternating keys
// and values.
// toListOptions interprets the arguments of listComponents: nothing, a
// ListOptions, or the same key/value pairs vars accepts, with the keys
// separator, quote, closingQuote, prepend and append.
func toListOptions(args []any) (ListOptions, error) {
	if len(args) == 1 {
		if opts, ok := args[0].(ListOptions); ok {
			return opts, nil
		}
	}
	vars, err := toVars(args)
	if err != nil {
		return ListOptions{}, err
	}
	var opts ListOptions
	for key, val := range vars {
		str := fmt.Sprint(val)
		switch key {
		case "separator":
			opts.Separator = str
		case "quote":
			opts.Quote = str
		case "closingQuote":
			opts.ClosingQuote = str
		case "prepend":
			opts.Prepend = str
		case "append":
			opts.Append = str
		default:
			return ListOptions{}, fmt.Errorf("unknown listComponents option %q", key)
		}
	}
	return opts, nil
}

func toVars(args []any) (Vars, error) {
	if len(args) == 0 {
		return Vars{}, nil
	}
	if len(args) == 1 {
		switch v := args[0].(type) {
		case Vars:
			return v, nil
		case map[string]any:
			return Vars(v), nil
		case nil:
			return Vars{}, nil
		}
	}
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("expected key/value pairs, got %d arguments", len(args))
	}
	vars := make(Vars, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return nil, fmt.Errorf("key %v (%T) is not a string", args[i], args[i])
		}
		vars[key] = args[i+1]
	}
	return vars, nil
}

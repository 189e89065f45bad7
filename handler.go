package markup

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PageOptions configures the handler returned by Site.PageHandler.
type PageOptions struct {
	// Dir is the folder, under the components folder, that pages are
	// rendered from. Defaults to "pages".
	Dir string

	// Index is the page rendered for "/". Defaults to "index".
	Index string

	// Layout is the component that wraps every page on full-page
	// requests. It receives the page's output as .Content, along with
	// everything the page received. Defaults to "layout".
	Layout string
}

func (opts PageOptions) withDefaults() PageOptions {
	if opts.Dir == "" {
		opts.Dir = "pages"
	}
	if opts.Index == "" {
		opts.Index = "index"
	}
	if opts.Layout == "" {
		opts.Layout = "layout"
	}
	return opts
}

// pageName maps a request path to the component that renders it.
func (opts PageOptions) pageName(urlPath string) string {
	p := strings.Trim(path.Clean("/"+urlPath), "/")
	if p == "" {
		p = opts.Index
	}
	return opts.Dir + "/" + p
}

// PageHandler returns an http.Handler that renders the page component
// matching the request path with a new Renderer for every request.
//
// Requests made by the navigator, as reported by IsFragmentRequest, get the
// page's output and the assets it registered as a Fragment. Every other
// request gets the page wrapped in the layout component, which is expected
// to print the registered tags with the styles and scripts template
// functions.
//
// Pages that don't exist are answered with a 404, other errors with a 500.
func (s *Site) PageHandler(opts PageOptions) http.Handler {
	opts = opts.withDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fragment := IsFragmentRequest(r)
		ctx, span := tracer.Start(r.Context(), "markup.PageHandler",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("markup.path", r.URL.Path),
				attribute.Bool("markup.fragment", fragment),
			),
		)
		defer span.End()
		log := Logger(ctx).With("path", r.URL.Path, "fragment", fragment)

		renderer := s.NewRenderer()
		vars := Vars{
			"Path":  r.URL.Path,
			"Query": r.URL.Query(),
		}
		content, err := renderer.page(ctx, opts.pageName(r.URL.Path), vars)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			writeRenderError(w, err)
			log.ErrorContext(ctx, "error rendering page", "error", err)
			return
		}

		if fragment {
			err = WriteFragment(w, r, NewFragment(string(content), renderer.Registry()))
			if err != nil {
				log.ErrorContext(ctx, "error writing fragment", "error", err)
			}
			return
		}

		vars["Content"] = content
		page, err := renderer.Component(ctx, opts.Layout, vars)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			http.Error(w, "Server error.", http.StatusInternalServerError)
			log.ErrorContext(ctx, "error rendering layout", "error", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Add("Vary", RequestedWithHeader)
		_, err = io.WriteString(w, string(page))
		if err != nil {
			log.ErrorContext(ctx, "error writing page", "error", err)
		}
	})
}

func writeRenderError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrTemplateNotFound) {
		http.Error(w, "Not found.", http.StatusNotFound)
		return
	}
	http.Error(w, "Server error.", http.StatusInternalServerError)
}

// AssetHandler returns an http.Handler serving the scripts and stylesheets in
// the Site's fs.FS. Templates and any other files are never served. Mount it
// at the Site's BaseURL with http.StripPrefix.
func (s *Site) AssetHandler() http.Handler {
	files := http.FileServerFS(s.fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch path.Ext(r.URL.Path) {
		case ".js", ".css":
			files.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

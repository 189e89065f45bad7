// Package markup renders file-backed HTML components and keeps track of the
// scripts and stylesheets they need.
//
// A component is a template file, by default under components/ in a Site's
// fs.FS, optionally accompanied by a script and a stylesheet with the same
// base name. A snippet is the same thing, loaded from snippets/ instead.
// Components can live in folders ("cards/product" is
// components/cards/product.tmpl) and in a folder named after themselves
// (components/cards/product/product.tmpl also answers to "cards/product").
//
// A Site is created once per server and holds the fs.FS, the public URL it's
// served under, and an optional cache of parsed templates. Every page render
// gets its own Renderer from Site.NewRenderer, which owns a Registry: the
// ordered, deduplicated record of rendered components, head scripts, body
// scripts, and stylesheets. Rendering a component registers its co-located
// assets the first time only; the layout then prints the tags. Tags only
// cover what was rendered before they're printed, so the layout renders its
// own components first:
//
//	{{ $nav := component "nav" }}
//	<head>{{ styles }}{{ scripts true }}</head>
//	<body>{{ $nav }}{{ .Content }}{{ scripts }}</body>
//
// Site.PageHandler serves pages either as whole documents or, for requests
// made by the navigator, as a Fragment: the page's markup plus the assets it
// registered. The navigator package, and the script returned by ClientScript
// for browsers, load Fragments into a document, skipping assets the document
// already references.
package markup

package markup

import (
	_ "embed"
	"net/http"
	"strconv"
)

// clientScript is the browser side of the navigator. It exposes a global
// Markup object with load, on, and off, and speaks the same Fragment protocol
// as the navigator package.
//
//go:embed client/markup.js
var clientScript []byte

// ClientScript returns the browser navigator script.
func ClientScript() []byte {
	res := make([]byte, len(clientScript))
	copy(res, clientScript)
	return res
}

// ClientScriptHandler serves the browser navigator script.
func ClientScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(clientScript)))
		_, _ = w.Write(clientScript)
	})
}

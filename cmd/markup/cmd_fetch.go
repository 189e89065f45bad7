package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"impractical.co/markup"
	"impractical.co/markup/navigator"
)

const blankPage = `<!DOCTYPE html><html><head></head><body></body></html>`

func newFetchCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Load a page into a document the way the browser navigator does",
		Long: `Fetch a page as a fragment and load it into a document, then print the
document. The document is read from --page, or starts out blank.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], stdout, stderr)
		},
	}
	cmd.Flags().String("page", "", "HTML file to load the fragment into")
	cmd.Flags().String("target", "body", "CSS selector of the element to load into")
	cmd.Flags().Bool("msgpack", false, "Ask for a msgpack payload instead of JSON")
	cmd.Flags().Duration("delay", 0, "Minimum time before the target is replaced")
	cmd.Flags().Duration("timeout", 30*time.Second, "Request timeout")
	return cmd
}

func runFetch(cmd *cobra.Command, href string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cfg.logger(stderr)
	if err != nil {
		return err
	}
	page, _ := cmd.Flags().GetString("page")
	target, _ := cmd.Flags().GetString("target")
	useMsgpack, _ := cmd.Flags().GetBool("msgpack")
	delay, _ := cmd.Flags().GetDuration("delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	doc, err := readPage(page)
	if err != nil {
		return err
	}
	nav, err := navigator.New(doc, navigator.Config{
		Client:  &http.Client{Timeout: timeout},
		Runner:  logRunner{logger: logger},
		Msgpack: useMsgpack,
	})
	if err != nil {
		return err
	}
	ctx := markup.LoggingContext(cmd.Context(), logger)
	nav.MarkLoaded(ctx)
	if err := nav.Load(ctx, href, target, navigator.Options{Delay: delay}); err != nil {
		return err
	}
	return doc.Render(stdout)
}

func readPage(file string) (*navigator.Document, error) {
	if file == "" {
		return navigator.ParseString(blankPage)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()
	return navigator.Parse(f)
}

// logRunner stands in for a JavaScript engine: it logs the inline scripts it
// would have run.
type logRunner struct {
	logger *slog.Logger
}

func (r logRunner) RunScript(ctx context.Context, script *html.Node) error {
	var body string
	if script.FirstChild != nil {
		body = script.FirstChild.Data
	}
	r.logger.DebugContext(ctx, "inline script", "body", body)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"impractical.co/markup"
)

// clientScriptPath is where the browser navigator is served.
const clientScriptPath = "/_markup/markup.js"

func newServeCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages, fragments, and assets over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, stdout, stderr)
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().String("pages-dir", "pages", "Folder, under the components folder, holding pages")
	cmd.Flags().String("layout", "layout", "Component wrapping every full page")
	return cmd
}

func runServe(cmd *cobra.Command, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cfg.logger(stderr)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	pagesDir, _ := cmd.Flags().GetString("pages-dir")
	layout, _ := cmd.Flags().GetString("layout")

	reg := prometheus.NewRegistry()
	site := cfg.site(reg)
	handler := newRouter(site, reg, logger, markup.PageOptions{
		Dir:    pagesDir,
		Layout: layout,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	fmt.Fprintf(stdout, "Serving %s on %s\n", cfg.Dir, addr) //nolint:errcheck // best-effort stdout

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newRouter(site *markup.Site, reg *prometheus.Registry, logger *slog.Logger, pages markup.PageOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqLogger := logger.With("request_id", middleware.GetReqID(req.Context()))
			next.ServeHTTP(w, req.WithContext(markup.LoggingContext(req.Context(), reqLogger)))
		})
	})

	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	r.Handle(clientScriptPath, markup.ClientScriptHandler())
	if base := site.BaseURL(); strings.HasPrefix(base, "/") && base != "/" {
		r.Handle(base+"*", http.StripPrefix(base, site.AssetHandler()))
	}
	r.Handle("/*", site.PageHandler(pages))
	return r
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"impractical.co/markup"
)

// config is assembled from flags, MARKUP_* environment variables, and an
// optional config file, in that order of precedence.
type config struct {
	Dir            string `mapstructure:"dir"`
	BaseURL        string `mapstructure:"base-url"`
	ComponentsDir  string `mapstructure:"components-dir"`
	SnippetsDir    string `mapstructure:"snippets-dir"`
	TemplateExt    string `mapstructure:"template-ext"`
	CacheTemplates bool   `mapstructure:"cache-templates"`
	LogLevel       string `mapstructure:"log-level"`
	LogFormat      string `mapstructure:"log-format"`
}

func addSiteFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (YAML, TOML, or JSON)")
	flags.String("dir", ".", "Directory holding components, snippets, and their assets")
	flags.String("base-url", "/templates/", "Public URL the directory is served under")
	flags.String("components-dir", markup.DefaultComponentsDir, "Components folder inside --dir")
	flags.String("snippets-dir", markup.DefaultSnippetsDir, "Snippets folder inside --dir")
	flags.String("template-ext", markup.DefaultTemplateExt, "Extension of component templates")
	flags.Bool("cache-templates", false, "Keep parsed templates in memory")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
}

func loadConfig(cmd *cobra.Command) (config, error) {
	v := viper.New()
	v.SetEnvPrefix("MARKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config{}, fmt.Errorf("binding flags: %w", err)
	}
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("reading config file %q: %w", file, err)
		}
	}
	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func (cfg config) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", cfg.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.LogFormat {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q: must be text or json", cfg.LogFormat)
	}
}

// site builds the markup.Site described by cfg. reg may be nil, in which case
// no metrics are collected.
func (cfg config) site(reg prometheus.Registerer) *markup.Site {
	opts := markup.SiteOptions{
		FS:             os.DirFS(cfg.Dir),
		BaseURL:        cfg.BaseURL,
		ComponentsDir:  cfg.ComponentsDir,
		SnippetsDir:    cfg.SnippetsDir,
		TemplateExt:    cfg.TemplateExt,
		CacheTemplates: cfg.CacheTemplates,
	}
	if reg != nil {
		opts.Metrics = markup.NewMetrics(reg)
	}
	return markup.NewSite(opts)
}

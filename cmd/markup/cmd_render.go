package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"impractical.co/markup"
)

func newRenderCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <name>...",
		Short: "Render components and print their markup",
		Long: `Render one or more components with a single registry and print their
markup. With --tags, the stylesheet and script tags they registered are
printed afterwards.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, stdout, stderr)
		},
	}
	cmd.Flags().Bool("snippet", false, "Render snippets instead of components")
	cmd.Flags().StringArray("var", nil, "Template variable as key=value (repeatable)")
	cmd.Flags().Bool("tags", false, "Print the registered tags after the markup")
	return cmd
}

func runRender(cmd *cobra.Command, args []string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := cfg.logger(stderr)
	if err != nil {
		return err
	}
	snippet, _ := cmd.Flags().GetBool("snippet")
	rawVars, _ := cmd.Flags().GetStringArray("var")
	tags, _ := cmd.Flags().GetBool("tags")

	vars, err := parseVars(rawVars)
	if err != nil {
		return err
	}
	ctx := markup.LoggingContext(cmd.Context(), logger)
	renderer := cfg.site(nil).NewRenderer()
	for _, name := range args {
		render := renderer.Component
		if snippet {
			render = renderer.Snippet
		}
		out, err := render(ctx, name, vars)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out) //nolint:errcheck // best-effort stdout
	}
	if !tags {
		return nil
	}
	reg := renderer.Registry()
	printSection(stdout, "styles", string(reg.PrintStyles()))
	printSection(stdout, "head scripts", string(reg.PrintScripts(markup.PlaceHead)))
	printSection(stdout, "body scripts", string(reg.PrintScripts(markup.PlaceBody)))
	return nil
}

func parseVars(raw []string) (markup.Vars, error) {
	vars := markup.Vars{}
	for _, pair := range raw {
		key, val, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", pair)
		}
		vars[key] = val
	}
	return vars, nil
}

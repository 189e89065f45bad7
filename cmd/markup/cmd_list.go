package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"impractical.co/markup"
)

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <name>...",
		Short: "Render components and list every component they used",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := cfg.logger(stderr)
			if err != nil {
				return err
			}
			var opts markup.ListOptions
			opts.Separator, _ = cmd.Flags().GetString("separator")
			opts.Quote, _ = cmd.Flags().GetString("quote")
			opts.ClosingQuote, _ = cmd.Flags().GetString("closing-quote")
			opts.Prepend, _ = cmd.Flags().GetString("prepend")
			opts.Append, _ = cmd.Flags().GetString("append")

			ctx := markup.LoggingContext(cmd.Context(), logger)
			renderer := cfg.site(nil).NewRenderer()
			for _, name := range args {
				if _, err := renderer.Component(ctx, name, nil); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(stdout, renderer.Registry().ListComponents(opts))
			return err
		},
	}
	cmd.Flags().String("separator", ",", "Separator between components")
	cmd.Flags().String("quote", `"`, "Quote opening each component")
	cmd.Flags().String("closing-quote", "", "Quote closing each component (defaults to --quote)")
	cmd.Flags().String("prepend", "", "Text before the list")
	cmd.Flags().String("append", "", "Text after the list")
	return cmd
}

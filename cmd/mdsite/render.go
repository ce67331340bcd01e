package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/mdsite/content"
	"github.com/eringen/mdsite/markdown"
)

func newRenderCmd() *cobra.Command {
	var (
		origin    string
		languages []string
		toc       bool
		raw       bool
	)
	cmd := &cobra.Command{
		Use:   "render <file.md>",
		Short: "Render a markdown post to HTML on stdout",
		Long: `Render a markdown file the way the server renders posts. A leading
front-matter block is validated and stripped unless --raw is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			body := string(data)
			if !raw && strings.HasPrefix(strings.TrimPrefix(body, "\ufeff"), "---") {
				meta, rest, err := content.ParseDocument(body)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s, %s)\n", meta.Title, meta.Date.Formatted, content.ReadingTime(rest))
				body = rest
			}

			var originURL *url.URL
			if origin != "" {
				if originURL, err = url.Parse(origin); err != nil {
					return fmt.Errorf("invalid --origin: %w", err)
				}
			}

			h := markdown.NewChromaHighlighter(languages...)
			doc, err := markdown.NewRenderer(markdown.WithHighlighter(h)).Render(originURL, body)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if toc {
				for _, heading := range doc.TOC {
					fmt.Fprintf(out, "%s- [%s](#%s)\n", strings.Repeat("  ", heading.Level-1), heading.Text, heading.ID)
				}
				return nil
			}
			_, err = fmt.Fprint(out, doc.HTML)
			return err
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "site origin used to tell external links apart, e.g. https://example.com")
	cmd.Flags().StringSliceVar(&languages, "languages", markdown.DefaultLanguages, "languages considered when a code fence names none")
	cmd.Flags().BoolVar(&toc, "toc", false, "print the table of contents instead of HTML")
	cmd.Flags().BoolVar(&raw, "raw", false, "render the whole file without parsing front-matter")
	return cmd
}

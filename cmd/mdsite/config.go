package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/mdsite"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigGenerateCmd())
	cmd.AddCommand(newConfigCheckCmd(opts))
	return cmd
}

func newConfigGenerateCmd() *cobra.Command {
	var (
		out       string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print or write a commented mdsite.yaml with every default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rendered, err := mdsite.RenderDefaultYAML()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
				return err
			}
			if _, err := os.Stat(out); err == nil && !overwrite {
				return fmt.Errorf("config already exists at %s; use --overwrite to replace it", out)
			}
			if err := os.WriteFile(out, []byte(rendered), 0o644); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this path instead of stdout")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file")
	return cmd
}

func newConfigCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			app := mdsite.New(cfg)
			if err := app.Config.Validate(); err != nil {
				return err
			}
			cmd.Printf("Config OK: %s/%s@%s serving %s\n",
				app.Config.Content.Owner, app.Config.Content.Repo, app.Config.Content.DefaultRef, app.Config.URL)
			return nil
		},
	}
}

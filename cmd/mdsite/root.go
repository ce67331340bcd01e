package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/mdsite"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mdsite",
		Short: "mdsite - a personal website that renders blog posts from a git repository",
		Long: `mdsite serves a personal website whose blog posts are markdown files
in a remote git repository. Posts are fetched on every request, so pushing
to the repository publishes them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default ./mdsite.yaml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }
	return cmd
}

// load reads the dotenv file, then the config file and MDSITE_* variables.
// A missing dotenv file is not an error.
func (o *rootOptions) load() (mdsite.SiteConfig, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return mdsite.SiteConfig{}, err
		}
	}
	v := viper.New()
	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
	}
	return mdsite.LoadConfig(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mdsite version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("mdsite %s\n", version)
		},
	}
}

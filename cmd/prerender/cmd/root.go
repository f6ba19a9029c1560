package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "prerender",
	Short: "Multi-locale static prerendering for bundled web apps",
	Long: `prerender bundles an application and renders its markup once per
locale, writing one HTML document per distinct render under
resources/<locale>/ together with an appinfo.json pointing at it.

Locale targets:
  none     - only the default locale, inlined into index.html
  used     - locales found in resources/ilibmanifest.json (default)
  all      - every locale in the localization library's manifest
  tv       - curated TV locale list
  signage  - curated signage locale list
  a,b,c    - an explicit comma separated list
  file     - a JSON file holding a locale array`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: prerender.toml or prerender.yaml in the project)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

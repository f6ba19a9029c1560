package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/3-lines-studio/prerender/internal/adapters/bundler"
	"github.com/3-lines-studio/prerender/internal/adapters/cli"
	"github.com/3-lines-studio/prerender/internal/adapters/env"
	"github.com/3-lines-studio/prerender/internal/adapters/fs"
	"github.com/3-lines-studio/prerender/internal/adapters/watch"
	"github.com/3-lines-studio/prerender/internal/config"
	"github.com/3-lines-studio/prerender/internal/usecase"
)

var configNames = []string{"prerender.toml", "prerender.yaml", "prerender.yml"}

type buildFlags struct {
	output        string
	locales       string
	externals     string
	entry         string
	defaultLocale string
	production    bool
	watch         bool
}

var flags buildFlags

var buildCmd = &cobra.Command{
	Use:   "build [project]",
	Short: "Bundle the project and prerender every target locale",
	Long: `Bundles the project, inlines the default locale's render into
index.html and writes one prerendered document per distinct locale render.

Examples:
  prerender build                     # current directory, locales from the manifest
  prerender build -l en-US,fr-FR      # explicit locales
  prerender build -l tv -p            # curated TV locales, minified
  prerender build -w                  # rebuild on changes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	f := buildCmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output directory (default: dist)")
	f.StringVarP(&flags.locales, "locales", "l", "", "locale target: none, used, all, tv, signage, a list or a JSON file")
	f.StringVar(&flags.externals, "externals", "", "path to an externally built framework bundle")
	f.StringVar(&flags.entry, "entry", "", "application entry (default: src/index.js)")
	f.StringVar(&flags.defaultLocale, "default-locale", "", "locale inlined into index.html (default: en-US)")
	f.BoolVarP(&flags.production, "production", "p", false, "minify bundles")
	f.BoolVarP(&flags.watch, "watch", "w", false, "rebuild when sources change")
}

func runBuild(cmd *cobra.Command, args []string) error {
	output := cli.NewOutput()

	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	cfg, err := resolveConfig(projectDir, cfgFile, cmd.Flags(), flags, os.LookupEnv, output)
	if err != nil {
		output.PrintError("%v", err)
		return err
	}
	cfg.Verbose = cfg.Verbose || verbose

	osFS := fs.NewOSFileSystem()
	service := usecase.NewBuildService(bundler.New(), osFS, osFS, output)
	input := usecase.BuildInput{Config: cfg}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := service.BuildProject(ctx, input)
	if !flags.watch {
		if result.Error != nil {
			output.PrintError("%v", result.Error)
			return result.Error
		}
		if !result.Success {
			return errors.New("build failed")
		}
		return nil
	}

	return watchProject(ctx, service, input, output)
}

func watchProject(ctx context.Context, service *usecase.BuildService, input usecase.BuildInput, output *cli.Output) error {
	cfg := input.Config
	watcher, err := watch.New(cfg.ProjectDir, []string{cfg.OutputDir()}, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	output.PrintStep("👀", "Watching %s for changes", cfg.ProjectDir)
	err = watcher.Run(ctx, func(path string) {
		rel, relErr := filepath.Rel(cfg.ProjectDir, path)
		if relErr != nil {
			rel = path
		}
		output.PrintStep("🔄", "%s changed, rebuilding", rel)

		result := service.BuildProject(ctx, input)
		if result.Error != nil {
			output.PrintError("%v", result.Error)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type warner interface {
	PrintWarning(msg string, args ...any)
}

// resolveConfig layers defaults, the config file, PRERENDER_* variables and
// explicitly set flags.
func resolveConfig(projectDir, configPath string, set *pflag.FlagSet, f buildFlags, lookup env.LookupFunc, out warner) (config.Config, error) {
	cfg := config.Default()

	if configPath == "" {
		configPath = findConfig(projectDir)
	}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if cfg.ProjectDir == "" || cfg.ProjectDir == "." {
		cfg.ProjectDir = projectDir
	}

	for _, name := range env.ApplyOverrides(&cfg, lookup) {
		out.PrintWarning("Ignoring invalid %s", name)
	}

	if set.Changed("output") {
		cfg.Output = f.output
	}
	if set.Changed("locales") {
		cfg.Locales = f.locales
	}
	if set.Changed("externals") {
		cfg.ExternalFramework = f.externals
	}
	if set.Changed("entry") {
		cfg.Entry = f.entry
	}
	if set.Changed("default-locale") {
		cfg.DefaultLocale = f.defaultLocale
	}
	if set.Changed("production") {
		cfg.Production = f.production
	}

	return cfg, cfg.Validate()
}

func findConfig(projectDir string) string {
	for _, name := range configNames {
		path := filepath.Join(projectDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/3-lines-studio/prerender/internal/adapters/bundler"
	"github.com/3-lines-studio/prerender/internal/adapters/cli"
	"github.com/3-lines-studio/prerender/internal/config"
	"github.com/3-lines-studio/prerender/internal/core"
)

const publicDir = "public"

type BuildInput struct {
	Config config.Config
}

type BuildOutput struct {
	Success   bool
	Error     error
	Prerender PrerenderResult
}

type BuildError struct {
	Subject string
	Message string
	Details []string
}

// BuildService drives one host build: bundle, template, emit and prerender.
type BuildService struct {
	bundler Bundler
	fs      FileSystem
	copier  DirCopier
	cli     CLIOutput
	logger  *slog.Logger
}

func NewBuildService(bundler Bundler, fs FileSystem, copier DirCopier, cli CLIOutput) *BuildService {
	return &BuildService{
		bundler: bundler,
		fs:      fs,
		copier:  copier,
		cli:     cli,
		logger:  slog.Default(),
	}
}

func (s *BuildService) WithLogger(logger *slog.Logger) *BuildService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *BuildService) BuildProject(ctx context.Context, input BuildInput) BuildOutput {
	cfg := input.Config
	s.cli.PrintHeader("Prerender Build")

	if err := cfg.Validate(); err != nil {
		return BuildOutput{Success: false, Error: fmt.Errorf("invalid config: %w", err)}
	}

	outputDir := cfg.OutputDir()
	report := cli.NewBuildReport(s.cli, outputDir)

	stepDirs := report.StartStep("Preparing output directory")
	if err := s.fs.MkdirAll(outputDir, 0755); err != nil {
		return BuildOutput{Success: false, Error: fmt.Errorf("failed to create output dir: %w", err)}
	}
	report.EndStep(stepDirs, true, "")

	assets := core.NewAssetTable()

	stepCopy := report.StartStep("Copying resources")
	copyErrors := s.copyStatic(cfg, outputDir, assets)
	report.EndStep(stepCopy, true, "")
	for _, err := range copyErrors {
		report.AddWarning(err.Subject, err.Message, err.Details)
	}

	session := NewSandboxSession(cfg, s.fs, assets, s.logger)

	stepBundle := report.StartStep("Bundling application")
	outputs, err := s.bundler.Build(bundleOptions(cfg), session.AssetFinalized)
	if err != nil {
		buildErr := parseBuildError("Bundle", err)
		report.AddError(buildErr.Subject, buildErr.Message, buildErr.Details)
		report.EndStep(stepBundle, false, buildErr.Message)
		report.Render()
		return BuildOutput{Success: false, Error: fmt.Errorf("bundle failed: %w", err)}
	}
	report.EndStep(stepBundle, true, "")

	if ctx.Err() != nil {
		return BuildOutput{Success: false, Error: ctx.Err()}
	}

	stepTemplate := report.StartStep("Assembling HTML template")
	template, err := s.template(cfg, outputs)
	if err != nil {
		report.EndStep(stepTemplate, false, err.Error())
		report.AddError("Template", "Failed to assemble HTML template", []string{err.Error()})
		report.Render()
		return BuildOutput{Success: false, Error: err}
	}
	html := session.TemplateReady(template)
	report.EndStep(stepTemplate, true, "")

	stepWrite := report.StartStep("Writing build outputs")
	for _, output := range outputs {
		if err := s.writeOutput(outputDir, output.Name, output.Content); err != nil {
			report.AddError(output.Name, "Failed to write output", []string{err.Error()})
		}
	}
	if err := s.writeOutput(outputDir, core.ArtifactName, []byte(html)); err != nil {
		report.AddError(core.ArtifactName, "Failed to write output", []string{err.Error()})
	}
	assets.Put(core.ArtifactName, []byte(html))
	report.EndStep(stepWrite, !report.HasFailures(), "")

	stepPrerender := report.StartStep("Prerendering locales")
	result := session.PostEmit(outputDir)
	if result.Disabled {
		report.SkipStep(stepPrerender, "prerendering disabled")
	} else {
		report.EndStep(stepPrerender, true, "")
	}
	for _, w := range result.Warnings {
		report.AddWarning(w.Subject, w.Message, w.Details)
	}

	report.SetPrerenderCounts(len(result.Locales), len(result.Artifacts), len(result.Descriptors))
	report.SetAssets(assetSizes(assets))
	report.Render()

	return BuildOutput{Success: !report.HasFailures(), Prerender: result}
}

// copyStatic mirrors resources/ and public/ into the output and registers
// every copied file so in-bundle requests can resolve it.
func (s *BuildService) copyStatic(cfg config.Config, outputDir string, assets *core.AssetTable) []BuildError {
	var errs []BuildError

	register := func(prefix string) func(rel string) {
		return func(rel string) {
			name := path.Join(prefix, rel)
			data, err := s.fs.ReadFile(outputPath(outputDir, name))
			if err != nil {
				s.logger.Warn("Copied file not registered", "path", name, "error", err)
				return
			}
			assets.Put(name, data)
		}
	}

	resources := filepath.Join(cfg.ProjectDir, core.ResourcesDir)
	if err := s.copier.CopyDir(resources, filepath.Join(outputDir, core.ResourcesDir), register(core.ResourcesDir)); err != nil {
		errs = append(errs, BuildError{
			Subject: "Resources",
			Message: "Failed to copy resources",
			Details: []string{err.Error()},
		})
	}

	public := filepath.Join(cfg.ProjectDir, publicDir)
	if err := s.copier.CopyDir(public, outputDir, register("")); err != nil {
		errs = append(errs, BuildError{
			Subject: "Public assets",
			Message: "Failed to copy public assets",
			Details: []string{err.Error()},
		})
	}

	return errs
}

// template reads the project's template or builds the default shell around
// the emitted bundles.
func (s *BuildService) template(cfg config.Config, outputs []bundler.Output) (string, error) {
	if cfg.Template != "" {
		data, err := s.fs.ReadFile(projectPath(cfg.ProjectDir, cfg.Template))
		if err != nil {
			return "", fmt.Errorf("failed to read template: %w", err)
		}
		return string(data), nil
	}

	var css, scripts []string
	runtime := core.AssetName(cfg.RuntimeBundle)
	for _, output := range outputs {
		name := core.AssetName(output.Name)
		switch path.Ext(name) {
		case ".css":
			css = append(css, name)
		case ".js":
			if name == runtime && cfg.RuntimeEntry != "" {
				scripts = append([]string{name}, scripts...)
			} else if name == core.AssetName(cfg.MainBundle) {
				scripts = append(scripts, name)
			}
		}
	}

	return core.RenderHTMLShell(core.ShellInput{
		Title:   cfg.Title,
		Lang:    core.LocaleTag(cfg.DefaultLocale),
		RootID:  cfg.RootID,
		CSS:     css,
		Scripts: scripts,
	})
}

func (s *BuildService) writeOutput(outputDir, name string, content []byte) error {
	full := outputPath(outputDir, name)
	if err := s.fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return s.fs.WriteFile(full, content, 0644)
}

// bundleOptions keeps OutDir as configured; the bundler resolves a relative
// one against the project root.
func bundleOptions(cfg config.Config) bundler.Options {
	entries := []bundler.Entry{{
		Name: core.BundleName(cfg.MainBundle),
		Path: cfg.Entry,
	}}
	if cfg.RuntimeEntry != "" {
		entries = append([]bundler.Entry{{
			Name: core.BundleName(cfg.RuntimeBundle),
			Path: cfg.RuntimeEntry,
		}}, entries...)
	}

	var externals []string
	if cfg.ExternalFramework != "" {
		externals = append(externals, cfg.FrameworkName)
	}

	return bundler.Options{
		ProjectDir: cfg.ProjectDir,
		OutDir:     cfg.Output,
		Entries:    entries,
		Externals:  externals,
		Production: cfg.Production,
	}
}

func assetSizes(assets *core.AssetTable) []cli.AssetSize {
	bySize := assets.BySize()
	sizes := make([]cli.AssetSize, 0, len(bySize))
	for _, asset := range bySize {
		sizes = append(sizes, cli.AssetSize{Name: asset.Name, Size: asset.Size()})
	}
	return sizes
}

func parseBuildError(subject string, err error) BuildError {
	lines := strings.Split(err.Error(), "\n")

	var message string
	var details []string

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if i == 0 {
			message = line
			continue
		}

		details = append(details, line)
	}

	if message == "" && len(details) > 0 {
		message = details[0]
		details = details[1:]
	}

	return BuildError{
		Subject: subject,
		Message: message,
		Details: details,
	}
}

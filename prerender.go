// Package prerender renders a bundled application once per locale and emits
// static HTML documents with appinfo.json descriptors pointing at them.
//
// A host build drives a Plugin through three hooks: AssetFinalized for each
// output, TemplateReady with the base HTML, and PostEmit once every output is
// on disk.
package prerender

import (
	"context"
	"log/slog"

	"github.com/3-lines-studio/prerender/internal/adapters/bundler"
	"github.com/3-lines-studio/prerender/internal/adapters/cli"
	"github.com/3-lines-studio/prerender/internal/adapters/fs"
	"github.com/3-lines-studio/prerender/internal/config"
	"github.com/3-lines-studio/prerender/internal/core"
	"github.com/3-lines-studio/prerender/internal/usecase"
)

type Config = config.Config

type Result = usecase.PrerenderResult

type Warning = usecase.PrerenderWarning

type AssetTable = core.AssetTable

type FileSystem = fs.FileSystem

func DefaultConfig() Config {
	return config.Default()
}

func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

type options struct {
	logger *slog.Logger
	files  FileSystem
	assets *AssetTable
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFileSystem replaces the OS file system used for manifests, string
// tables and outputs.
func WithFileSystem(files FileSystem) Option {
	return func(o *options) {
		o.files = files
	}
}

// WithAssets shares the host build's asset table with the plugin.
func WithAssets(assets *AssetTable) Option {
	return func(o *options) {
		o.assets = assets
	}
}

// Plugin is one build's prerender session. Create a new Plugin per build.
type Plugin struct {
	session *usecase.PrerenderSession
}

func NewPlugin(cfg Config, opts ...Option) *Plugin {
	o := options{
		logger: slog.Default(),
		files:  fs.NewOSFileSystem(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Plugin{
		session: usecase.NewSandboxSession(cfg, o.files, o.assets, o.logger),
	}
}

func (p *Plugin) AssetFinalized(name string, content []byte) {
	p.session.AssetFinalized(name, content)
}

func (p *Plugin) TemplateReady(html string) string {
	return p.session.TemplateReady(html)
}

func (p *Plugin) PostEmit(outputRoot string) Result {
	return p.session.PostEmit(outputRoot)
}

func (p *Plugin) Assets() *AssetTable {
	return p.session.Assets()
}

// Build runs the bundled build pipeline for cfg and prints its report.
func Build(ctx context.Context, cfg Config) (Result, error) {
	osFS := fs.NewOSFileSystem()
	service := usecase.NewBuildService(bundler.New(), osFS, osFS, cli.NewOutput())

	out := service.BuildProject(ctx, usecase.BuildInput{Config: cfg})
	return out.Prerender, out.Error
}

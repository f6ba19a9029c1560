package bundler

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

const DefaultGlobalName = "App"

// Entry is one bundle to build. Name is the output basename without
// extension, e.g. "main" for main.js.
type Entry struct {
	Name string
	Path string
}

type Options struct {
	ProjectDir string
	OutDir     string
	Entries    []Entry
	// Externals are module names left as require() calls, such as an
	// externally supplied framework.
	Externals  []string
	GlobalName string
	Production bool
}

// Output is one finalized build output, named relative to OutDir.
type Output struct {
	Name    string
	Content []byte
}

// AssetFunc observes each output as the build finalizes it.
type AssetFunc func(name string, content []byte)

type Bundler struct{}

func New() *Bundler {
	return &Bundler{}
}

// Build bundles the entries in memory. Outputs are reported to onAsset in
// build order and returned; nothing is written to disk.
func (b *Bundler) Build(opts Options, onAsset AssetFunc) ([]Output, error) {
	if len(opts.Entries) == 0 {
		return nil, fmt.Errorf("no entry points")
	}

	absRoot, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	outDir := opts.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(absRoot, outDir)
	}

	globalName := opts.GlobalName
	if globalName == "" {
		globalName = DefaultGlobalName
	}

	entryPoints := make([]api.EntryPoint, 0, len(opts.Entries))
	for _, entry := range opts.Entries {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  entry.Path,
			OutputPath: entry.Name,
		})
	}

	var outputs []Output
	capture := capturePlugin(outDir, func(name string, content []byte) {
		outputs = append(outputs, Output{Name: name, Content: content})
		if onAsset != nil {
			onAsset(name, content)
		}
	})

	plugins := []api.Plugin{capture}
	if len(opts.Externals) > 0 {
		plugins = append([]api.Plugin{externalsPlugin(opts.Externals)}, plugins...)
	}

	env := "development"
	if opts.Production {
		env = "production"
	}

	result := api.Build(api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		Bundle:              true,
		Outdir:              outDir,
		AbsWorkingDir:       absRoot,
		Platform:            api.PlatformBrowser,
		Format:              api.FormatIIFE,
		GlobalName:          globalName,
		Footer: map[string]string{
			"js": fmt.Sprintf(`if (typeof module === "object") module.exports = %s;`, globalName),
		},
		JSX: api.JSXAutomatic,
		Loader: map[string]api.Loader{
			".js":  api.LoaderJSX,
			".png": api.LoaderFile,
			".svg": api.LoaderFile,
		},
		Define: map[string]string{
			"process.env.NODE_ENV": fmt.Sprintf(`"%s"`, env),
		},
		MinifyWhitespace:  opts.Production,
		MinifyIdentifiers: opts.Production,
		MinifySyntax:      opts.Production,
		Plugins:           plugins,
		Write:             false,
	})

	if len(result.Errors) > 0 {
		return nil, formatMessages(result.Errors)
	}

	return outputs, nil
}

// capturePlugin reports every output file once the build ends.
func capturePlugin(outDir string, onAsset AssetFunc) api.Plugin {
	return api.Plugin{
		Name: "prerender-capture",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}
				for _, file := range result.OutputFiles {
					name, err := filepath.Rel(outDir, file.Path)
					if err != nil {
						name = filepath.Base(file.Path)
					}
					onAsset(filepath.ToSlash(name), file.Contents)
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}

// externalsPlugin keeps the named modules as runtime require() calls.
func externalsPlugin(names []string) api.Plugin {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	filter := "^(" + strings.Join(quoted, "|") + ")$"

	return api.Plugin{
		Name: "prerender-externals",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: filter}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				return api.OnResolveResult{Path: args.Path, External: true}, nil
			})
		},
	}
}

func formatMessages(messages []api.Message) error {
	var msgs []string
	for _, msg := range messages {
		text := msg.Text
		if msg.Location != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
		}
		msgs = append(msgs, text)
	}
	return fmt.Errorf("esbuild errors:\n%s", strings.Join(msgs, "\n"))
}

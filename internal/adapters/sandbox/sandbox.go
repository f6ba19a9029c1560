package sandbox

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/3-lines-studio/prerender/internal/core"
)

const (
	IdentityScheme       = "prerender:///"
	DefaultFrameworkName = "enact_framework"
	DefaultLocaleModule  = "@enact/i18n/src/locale"
	DefaultChunkFilename = "[id].js"
	DefaultRenderExport  = "render"
)

type Config struct {
	// Assets backs fetch, XMLHttpRequest and chunk loading.
	Assets *core.AssetTable
	// ReadFile loads modules from disk, used for the external framework.
	ReadFile func(path string) ([]byte, error)

	FrameworkName string
	FrameworkPath string
	LocaleModule  string
	ChunkFilename string
	RenderExport  string
	NodeEnv       string

	Timeout time.Duration
	Logger  *slog.Logger
}

// Sandbox evaluates captured bundles in goja and renders them. It implements
// core.ModuleLoader and core.ServerRenderer.
type Sandbox struct {
	cfg Config
}

func New(cfg Config) *Sandbox {
	if cfg.Assets == nil {
		cfg.Assets = core.NewAssetTable()
	}
	if cfg.FrameworkName == "" {
		cfg.FrameworkName = DefaultFrameworkName
	}
	if cfg.LocaleModule == "" {
		cfg.LocaleModule = DefaultLocaleModule
	}
	if cfg.ChunkFilename == "" {
		cfg.ChunkFilename = DefaultChunkFilename
	}
	if cfg.RenderExport == "" {
		cfg.RenderExport = DefaultRenderExport
	}
	if cfg.NodeEnv == "" {
		cfg.NodeEnv = "production"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Sandbox{cfg: cfg}
}

// Module is one evaluated bundle together with the runtime it lives in.
type Module struct {
	identity string
	host     *host
	exports  goja.Value
}

func (m *Module) Identity() string {
	return m.identity
}

// Exports returns the exported value of the main script.
func (m *Module) Exports() goja.Value {
	return m.exports
}

// Identity returns the virtual identity a script name is evaluated under.
func Identity(name string) string {
	if strings.HasPrefix(name, IdentityScheme) {
		return name
	}
	return IdentityScheme + core.AssetName(name)
}

// Load evaluates preload scripts and then the main script in a fresh runtime.
func (s *Sandbox) Load(main core.Script, preload ...core.Script) (core.Module, error) {
	h := newHost(s.cfg)
	if err := h.install(); err != nil {
		return nil, fmt.Errorf("failed to install sandbox shims: %w", err)
	}

	stop := h.deadline(s.cfg.Timeout)
	defer stop()

	for _, script := range preload {
		if _, err := h.evaluate(h.prepare(script)); err != nil {
			return nil, err
		}
	}

	prepared := h.prepare(main)
	exports, err := h.evaluate(prepared)
	if err != nil {
		return nil, err
	}

	if err := h.bootstrapLocale(); err != nil {
		return nil, err
	}

	return &Module{identity: prepared.Identity, host: h, exports: exports}, nil
}

// Render switches the sandbox to the context's locale, calls the module's
// render export and expands deferred translations in the result.
func (s *Sandbox) Render(module core.Module, l10n core.LocalizationContext) (string, error) {
	m, ok := module.(*Module)
	if !ok || m == nil {
		return "", fmt.Errorf("%w: module %T was not loaded by this sandbox", core.ErrRender, module)
	}
	h := m.host

	table := &core.DeferredTable{}
	h.l10n = l10n
	h.deferred = table
	defer func() {
		h.l10n = nil
		h.deferred = nil
	}()

	stop := h.deadline(s.cfg.Timeout)
	defer stop()

	locale := ""
	if l10n != nil {
		locale = l10n.Locale()
	}
	if err := h.syncLocale(locale); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrRender, err)
	}

	fn, this, err := h.renderFunction(m.exports)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrRender, err)
	}

	value, err := fn(this, h.vm.ToValue(locale))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrRender, h.scriptError(m.identity, err))
	}

	markup, err := h.settle(m.identity, value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrRender, err)
	}

	return core.ExpandDeferred(markup, table), nil
}

// renderFunction finds the render export on the module, on its default
// export, or treats a callable module as the render function itself.
func (h *host) renderFunction(exports goja.Value) (goja.Callable, goja.Value, error) {
	name := h.cfg.RenderExport
	if isMissing(exports) {
		return nil, nil, errors.New("module has no exports")
	}

	obj := exports.ToObject(h.vm)
	if fn, ok := goja.AssertFunction(obj.Get(name)); ok {
		return fn, obj, nil
	}

	if def := obj.Get("default"); !isMissing(def) {
		defObj := def.ToObject(h.vm)
		if fn, ok := goja.AssertFunction(defObj.Get(name)); ok {
			return fn, defObj, nil
		}
		if fn, ok := goja.AssertFunction(def); ok {
			return fn, goja.Undefined(), nil
		}
	}

	if fn, ok := goja.AssertFunction(exports); ok {
		return fn, goja.Undefined(), nil
	}

	return nil, nil, fmt.Errorf("module exports no %q function", name)
}

// settle unwraps a promise returned by render. Microtasks have already run
// by the time the call returns, so a pending promise never resolves.
func (h *host) settle(identity string, value goja.Value) (string, error) {
	if isMissing(value) {
		return "", errors.New("render returned no markup")
	}

	promise, ok := value.Export().(*goja.Promise)
	if !ok {
		return value.String(), nil
	}

	switch promise.State() {
	case goja.PromiseStateFulfilled:
		result := promise.Result()
		if isMissing(result) {
			return "", errors.New("render resolved without markup")
		}
		return result.String(), nil
	case goja.PromiseStateRejected:
		return "", h.rejection(identity, promise.Result())
	default:
		return "", errors.New("render promise did not settle")
	}
}

func (h *host) deadline(timeout time.Duration) func() {
	if timeout <= 0 {
		return func() {}
	}
	timer := time.AfterFunc(timeout, func() {
		h.vm.Interrupt(fmt.Sprintf("sandbox timed out after %s", timeout))
	})
	return func() {
		timer.Stop()
		h.vm.ClearInterrupt()
	}
}

func isMissing(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

package sandbox

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dop251/goja"

	"github.com/3-lines-studio/prerender/internal/core"
)

// host is the per-load state behind one goja runtime.
type host struct {
	cfg Config
	vm  *goja.Runtime

	modules map[string]goja.Value
	chunks  map[string]bool
	hostObj *goja.Object

	l10n     core.LocalizationContext
	deferred *core.DeferredTable
}

func newHost(cfg Config) *host {
	return &host{
		cfg:     cfg,
		vm:      goja.New(),
		modules: make(map[string]goja.Value),
		chunks:  make(map[string]bool),
	}
}

// prepare assigns the virtual identity and resolves the external framework
// reference before evaluation.
func (h *host) prepare(script core.Script) core.Script {
	src := script.Source
	if h.cfg.FrameworkPath != "" {
		src = core.RewriteFrameworkRequire(src, h.cfg.FrameworkName, h.cfg.FrameworkPath)
	}
	return core.Script{Identity: Identity(script.Identity), Source: src}
}

// evaluate runs a script as a CommonJS module and returns module.exports.
func (h *host) evaluate(script core.Script) (goja.Value, error) {
	wrapped := "(function (module, exports, require) {\n" + script.Source + "\n})"

	fnValue, err := h.vm.RunScript(script.Identity, wrapped)
	if err != nil {
		return nil, h.scriptError(script.Identity, err)
	}
	fn, ok := goja.AssertFunction(fnValue)
	if !ok {
		return nil, &core.SandboxError{Identity: script.Identity, Message: "module wrapper is not a function"}
	}

	module := h.vm.NewObject()
	exports := h.vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	if err := module.Set("id", script.Identity); err != nil {
		return nil, err
	}

	if _, err := fn(goja.Undefined(), module, exports, h.vm.ToValue(h.require)); err != nil {
		return nil, h.scriptError(script.Identity, err)
	}

	return module.Get("exports"), nil
}

// require resolves framework paths, registered assets and files on disk.
func (h *host) require(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	if cached, ok := h.modules[name]; ok {
		return cached
	}

	script, ok := h.resolve(name)
	if !ok {
		panic(h.vm.NewTypeError(fmt.Sprintf("Cannot find module '%s'", name)))
	}

	if strings.HasSuffix(script.Identity, ".json") {
		value := h.parseJSON(script.Source)
		h.modules[name] = value
		return value
	}

	exports, err := h.evaluate(h.prepare(script))
	if err != nil {
		h.throw(err)
	}
	h.modules[name] = exports
	return exports
}

func (h *host) resolve(name string) (core.Script, bool) {
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = append(candidates, name+".js")
	}

	for _, candidate := range candidates {
		if asset, ok := h.cfg.Assets.Lookup(candidate); ok {
			return core.Script{Identity: asset.Name, Source: asset.Source()}, true
		}
	}

	if h.cfg.ReadFile == nil || !isFilePath(name) {
		return core.Script{}, false
	}
	for _, candidate := range candidates {
		data, err := h.cfg.ReadFile(candidate)
		if err == nil {
			return core.Script{Identity: candidate, Source: string(data)}, true
		}
	}
	return core.Script{}, false
}

func isFilePath(name string) bool {
	return strings.HasPrefix(name, "/") || strings.HasPrefix(name, "./") ||
		strings.HasPrefix(name, "../") || (len(name) > 2 && name[1] == ':')
}

// bootstrapLocale installs iLibLocale from the external framework when the
// bundle did not provide one itself.
func (h *host) bootstrapLocale() error {
	if h.cfg.FrameworkPath == "" || !isMissing(h.vm.Get("iLibLocale")) {
		return nil
	}

	identity := Identity(h.cfg.FrameworkPath)
	framework, err := h.call(identity, func() goja.Value {
		return h.require(goja.FunctionCall{Arguments: []goja.Value{h.vm.ToValue(h.cfg.FrameworkPath)}})
	})
	if err != nil {
		return err
	}

	fn, ok := goja.AssertFunction(framework)
	if !ok {
		h.cfg.Logger.Warn("External framework is not callable, iLibLocale not installed", "framework", h.cfg.FrameworkPath)
		return nil
	}

	localeModule, err := fn(goja.Undefined(), h.vm.ToValue(h.cfg.LocaleModule))
	if err != nil {
		return h.scriptError(identity, err)
	}
	return h.vm.Set("iLibLocale", localeModule)
}

// syncLocale points the sandbox at locale, including iLibLocale when the
// bundle exposes it.
func (h *host) syncLocale(locale string) error {
	if err := h.hostObj.Set("locale", locale); err != nil {
		return err
	}

	ilib := h.vm.Get("iLibLocale")
	if isMissing(ilib) || locale == "" {
		return nil
	}
	update, ok := goja.AssertFunction(ilib.ToObject(h.vm).Get("updateLocale"))
	if !ok {
		return nil
	}
	if _, err := update(ilib, h.vm.ToValue(localeString(locale))); err != nil {
		return h.scriptError("iLibLocale.updateLocale", err)
	}
	return nil
}

// localeString turns a directory token into the dash form iLib expects.
func localeString(locale string) string {
	return strings.ReplaceAll(locale, "/", "-")
}

// call runs a Go function that may throw inside the runtime and converts
// thrown values into errors.
func (h *host) call(identity string, fn func() goja.Value) (result goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch x := r.(type) {
			case *goja.Exception:
				err = h.scriptError(identity, x)
			case goja.Value:
				err = h.rejection(identity, x)
			case error:
				err = &core.SandboxError{Identity: identity, Message: x.Error(), Err: x}
			default:
				panic(r)
			}
		}
	}()
	return fn(), nil
}

// throw rethrows an evaluation error inside the runtime.
func (h *host) throw(err error) {
	var exception *goja.Exception
	if errors.As(err, &exception) {
		panic(exception)
	}
	panic(h.vm.NewGoError(err))
}

func (h *host) parseJSON(src string) goja.Value {
	parse, ok := goja.AssertFunction(h.vm.Get("JSON").ToObject(h.vm).Get("parse"))
	if !ok {
		panic(h.vm.NewTypeError("JSON.parse is not available"))
	}
	value, err := parse(goja.Undefined(), h.vm.ToValue(src))
	if err != nil {
		h.throw(err)
	}
	return value
}

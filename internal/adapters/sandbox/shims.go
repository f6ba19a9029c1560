package sandbox

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// install sets up the browser-like globals a bundle expects before any
// script runs.
func (h *host) install() error {
	vm := h.vm
	global := vm.GlobalObject()

	for _, alias := range []string{"global", "window", "self"} {
		if err := vm.Set(alias, global); err != nil {
			return err
		}
	}

	process := vm.NewObject()
	env := vm.NewObject()
	if err := env.Set("NODE_ENV", h.cfg.NodeEnv); err != nil {
		return err
	}
	if err := process.Set("env", env); err != nil {
		return err
	}

	h.hostObj = vm.NewObject()
	if err := h.hostObj.Set("t", h.translate); err != nil {
		return err
	}
	if err := h.hostObj.Set("loadChunk", h.loadChunk); err != nil {
		return err
	}
	if err := h.hostObj.Set("locale", ""); err != nil {
		return err
	}

	globals := map[string]any{
		"process":        process,
		"console":        h.console(),
		"fetch":          h.fetch,
		"XMLHttpRequest": h.xhrConstructor,
		"__prerender":    h.hostObj,
		"$L":             h.translate,
	}
	for name, value := range globals {
		if err := vm.Set(name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return nil
}

// translate returns the literal when the active context has the key, and a
// deferred marker otherwise. Outside a render the key itself is returned.
func (h *host) translate(call goja.FunctionCall) goja.Value {
	key := call.Argument(0).String()
	if h.l10n == nil || h.deferred == nil {
		return h.vm.ToValue(key)
	}
	if value, ok := h.l10n.Lookup(key); ok {
		return h.vm.ToValue(value)
	}
	return h.vm.ToValue(h.deferred.Marker(key, key))
}

// loadChunk synchronously evaluates a chunk from the asset table.
func (h *host) loadChunk(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).String()
	name := strings.ReplaceAll(h.cfg.ChunkFilename, "[id]", id)
	if h.chunks[name] {
		return goja.Undefined()
	}

	asset, ok := h.cfg.Assets.Lookup(name)
	if !ok {
		panic(h.vm.NewTypeError(fmt.Sprintf("Loading chunk %s failed: %s is not a build output", id, name)))
	}

	h.chunks[name] = true
	if _, err := h.vm.RunScript(Identity(asset.Name), asset.Source()); err != nil {
		h.throw(err)
	}
	return goja.Undefined()
}

func (h *host) console() *goja.Object {
	console := h.vm.NewObject()
	for _, level := range []string{"log", "info", "debug", "warn", "error", "trace"} {
		_ = console.Set(level, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, arg.String())
			}
			message := strings.Join(parts, " ")

			switch level {
			case "warn", "error":
				h.cfg.Logger.Warn("Sandbox console", "level", level, "message", message)
			default:
				h.cfg.Logger.Debug("Sandbox console", "level", level, "message", message)
			}
			return goja.Undefined()
		})
	}
	return console
}

// isNetworkURL reports references that would leave the build output.
func isNetworkURL(ref string) bool {
	return strings.Contains(ref, "://") || strings.HasPrefix(ref, "//")
}

// fetch resolves against the asset table and rejects anything else.
func (h *host) fetch(call goja.FunctionCall) goja.Value {
	ref := call.Argument(0).String()
	promise, resolve, reject := h.vm.NewPromise()

	if isNetworkURL(ref) {
		reject(h.vm.NewTypeError(fmt.Sprintf("fetch %s: network access is not available while prerendering", ref)))
		return h.vm.ToValue(promise)
	}

	asset, ok := h.cfg.Assets.Lookup(ref)
	if !ok {
		resolve(h.response(ref, 404, "", ""))
		return h.vm.ToValue(promise)
	}

	resolve(h.response(ref, 200, asset.Source(), asset.ContentType()))
	return h.vm.ToValue(promise)
}

func (h *host) response(url string, status int, body, contentType string) *goja.Object {
	res := h.vm.NewObject()
	_ = res.Set("url", url)
	_ = res.Set("status", status)
	_ = res.Set("ok", status >= 200 && status < 300)
	_ = res.Set("headers", h.headers(contentType))
	_ = res.Set("text", func(goja.FunctionCall) goja.Value {
		promise, resolve, _ := h.vm.NewPromise()
		resolve(body)
		return h.vm.ToValue(promise)
	})
	_ = res.Set("json", func(goja.FunctionCall) goja.Value {
		promise, resolve, reject := h.vm.NewPromise()
		value, err := h.call(url, func() goja.Value { return h.parseJSON(body) })
		if err != nil {
			reject(h.vm.NewTypeError(err.Error()))
		} else {
			resolve(value)
		}
		return h.vm.ToValue(promise)
	})
	return res
}

// headers exposes a Headers-like get() that only knows the content type.
func (h *host) headers(contentType string) *goja.Object {
	headers := h.vm.NewObject()
	_ = headers.Set("get", func(c goja.FunctionCall) goja.Value {
		return h.header(contentType, c.Argument(0).String())
	})
	return headers
}

func (h *host) header(contentType, name string) goja.Value {
	if contentType == "" || !strings.EqualFold(name, "content-type") {
		return goja.Null()
	}
	return h.vm.ToValue(contentType)
}

// xhrConstructor is a synchronous XMLHttpRequest served from the asset table.
func (h *host) xhrConstructor(call goja.ConstructorCall) *goja.Object {
	xhr := call.This
	var url, contentType string

	_ = xhr.Set("readyState", 0)
	_ = xhr.Set("status", 0)
	_ = xhr.Set("responseText", "")
	_ = xhr.Set("response", "")

	_ = xhr.Set("open", func(c goja.FunctionCall) goja.Value {
		url = c.Argument(1).String()
		_ = xhr.Set("readyState", 1)
		return goja.Undefined()
	})
	_ = xhr.Set("setRequestHeader", func(goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	_ = xhr.Set("getResponseHeader", func(c goja.FunctionCall) goja.Value {
		return h.header(contentType, c.Argument(0).String())
	})
	_ = xhr.Set("overrideMimeType", func(goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	_ = xhr.Set("abort", func(goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	_ = xhr.Set("send", func(goja.FunctionCall) goja.Value {
		status, body := 404, ""
		if isNetworkURL(url) {
			status = 0
		} else if asset, ok := h.cfg.Assets.Lookup(url); ok {
			status, body = 200, asset.Source()
			contentType = asset.ContentType()
		}

		_ = xhr.Set("readyState", 4)
		_ = xhr.Set("status", status)
		_ = xhr.Set("responseText", body)
		_ = xhr.Set("response", body)

		h.dispatch(xhr, "onreadystatechange")
		if status == 0 {
			h.dispatch(xhr, "onerror")
		} else {
			h.dispatch(xhr, "onload")
		}
		return goja.Undefined()
	})

	return xhr
}

func (h *host) dispatch(target *goja.Object, handler string) {
	fn, ok := goja.AssertFunction(target.Get(handler))
	if !ok {
		return
	}
	if _, err := fn(target); err != nil {
		h.throw(err)
	}
}

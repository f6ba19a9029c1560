package core

// Script is source text evaluated under a virtual identity.
type Script struct {
	Identity string
	Source   string
}

type Module interface {
	Identity() string
}

// ModuleLoader evaluates captured bundle text as an isolated module. Preload
// scripts run first in the same context.
type ModuleLoader interface {
	Load(main Script, preload ...Script) (Module, error)
}

// ServerRenderer produces markup for a loaded module under the given
// localization context.
type ServerRenderer interface {
	Render(module Module, l10n LocalizationContext) (string, error)
}

// LocalizationContext is the shared, switchable locale state. A render loop
// owns it exclusively while rendering.
type LocalizationContext interface {
	SetLocale(locale string) error
	Locale() string
	Lookup(key string) (string, bool)
}

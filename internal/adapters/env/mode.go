package env

import (
	"os"
	"strconv"
	"strings"

	"github.com/3-lines-studio/prerender/internal/config"
)

const (
	LocalesVar    = "PRERENDER_LOCALES"
	OutputVar     = "PRERENDER_OUTPUT"
	ExternalsVar  = "PRERENDER_EXTERNALS"
	ProductionVar = "PRERENDER_PROD"
	TimeoutVar    = "PRERENDER_TIMEOUT"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyOverrides copies PRERENDER_* variables over cfg. Unparsable values are
// returned by name and leave the field unchanged.
func ApplyOverrides(cfg *config.Config, lookup LookupFunc) []string {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var invalid []string
	if v, ok := lookup(LocalesVar); ok && strings.TrimSpace(v) != "" {
		cfg.Locales = strings.TrimSpace(v)
	}
	if v, ok := lookup(OutputVar); ok && strings.TrimSpace(v) != "" {
		cfg.Output = strings.TrimSpace(v)
	}
	if v, ok := lookup(ExternalsVar); ok {
		cfg.ExternalFramework = strings.TrimSpace(v)
	}
	if v, ok := lookup(ProductionVar); ok {
		if prod, err := strconv.ParseBool(v); err == nil {
			cfg.Production = prod
		} else {
			invalid = append(invalid, ProductionVar)
		}
	}
	if v, ok := lookup(TimeoutVar); ok {
		var d config.Duration
		if err := d.UnmarshalText([]byte(v)); err == nil {
			cfg.RenderTimeout = d
		} else {
			invalid = append(invalid, TimeoutVar)
		}
	}
	return invalid
}

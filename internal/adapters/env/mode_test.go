package env

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/3-lines-studio/prerender/internal/config"
)

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		mutate      func(*config.Config)
		wantInvalid []string
	}{
		{
			name:   "no variables",
			env:    map[string]string{},
			mutate: func(c *config.Config) {},
		},
		{
			name: "all variables",
			env: map[string]string{
				LocalesVar:    " signage ",
				OutputVar:     "out",
				ExternalsVar:  "/opt/enact/framework.js",
				ProductionVar: "1",
				TimeoutVar:    "2s",
			},
			mutate: func(c *config.Config) {
				c.Locales = "signage"
				c.Output = "out"
				c.ExternalFramework = "/opt/enact/framework.js"
				c.Production = true
				c.RenderTimeout = config.Duration{Duration: 2 * time.Second}
			},
		},
		{
			name:   "blank locales ignored",
			env:    map[string]string{LocalesVar: "  "},
			mutate: func(c *config.Config) {},
		},
		{
			name:        "invalid values reported",
			env:         map[string]string{ProductionVar: "yes please", TimeoutVar: "soon"},
			mutate:      func(c *config.Config) {},
			wantInvalid: []string{ProductionVar, TimeoutVar},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := config.Default()
			invalid := ApplyOverrides(&got, mapLookup(tt.env))

			want := config.Default()
			tt.mutate(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ApplyOverrides() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantInvalid, invalid); diff != "" {
				t.Errorf("invalid mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

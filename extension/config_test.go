package extension

import "testing"

func TestMergeWithDefaults(t *testing.T) {
	cfg := mergeWithDefaults(Config{})
	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.PageSize)
	}

	cfg = mergeWithDefaults(Config{PageSize: 25})
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
}

func TestMergeConfigurations(t *testing.T) {
	tests := []struct {
		name string
		yaml Config
		prog Config
		want Config
	}{
		{
			name: "yaml wins for strings",
			yaml: Config{OutputDir: "/srv/invoices"},
			prog: Config{OutputDir: "./out"},
			want: Config{OutputDir: "/srv/invoices", PageSize: 100},
		},
		{
			name: "programmatic fills gaps",
			yaml: Config{},
			prog: Config{OutputDir: "./out", GroveDatabase: "billing", PageSize: 10},
			want: Config{OutputDir: "./out", GroveDatabase: "billing", PageSize: 10},
		},
		{
			name: "programmatic flags stick",
			yaml: Config{PageSize: 50},
			prog: Config{DisableMigrate: true, EnableMetrics: true},
			want: Config{DisableMigrate: true, EnableMetrics: true, PageSize: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeConfigurations(tt.yaml, tt.prog); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	e := New(WithGroveDatabase("billing"), WithOutputDir("/tmp/inv"), WithMetrics())
	if !e.useGrove || e.config.GroveDatabase != "billing" {
		t.Error("WithGroveDatabase did not select grove")
	}
	if opts := e.buildEngineOpts(); len(opts) != 2 {
		t.Errorf("got %d engine options, want 2", len(opts))
	}
}

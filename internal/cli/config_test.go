package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/layout"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), configFile, `
[settings]
chart_type = "fan"
compact = true
generation_limit = 4
show_deceased = false

[server]
addr = "0.0.0.0:9000"
rate = 5.0
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	s := cfg.Settings
	if s.ChartType != layout.ChartFan || !s.IsCompact || s.GenerationLimit != 4 {
		t.Errorf("Settings = %+v, want fan/compact/4", s)
	}
	if s.ShowDeceased == nil || *s.ShowDeceased {
		t.Errorf("ShowDeceased = %v, want false", s.ShowDeceased)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" || cfg.Server.Rate != 5 {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing explicit file", filepath.Join(dir, "nope.toml"), errors.ErrCodeFileNotFound},
		{"syntax error", writeFile(t, dir, "bad.toml", "[settings\n"), errors.ErrCodeInvalidInput},
		{"unknown key", writeFile(t, dir, "typo.toml", "[settings]\nchart = \"fan\"\n"), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.path)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("loadConfig() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error: %v", err)
	}
	if cfg.Settings.ChartType != "" {
		t.Errorf("ChartType = %q, want empty", cfg.Settings.ChartType)
	}
}

func TestSettingsFlagsOverride(t *testing.T) {
	base := layout.Settings{ChartType: layout.ChartPedigree, GenerationLimit: 3, IsCompact: true}

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, s layout.Settings)
	}{
		{
			name: "no flags keeps config",
			args: nil,
			check: func(t *testing.T, s layout.Settings) {
				if s.ChartType != layout.ChartPedigree || s.GenerationLimit != 3 || !s.IsCompact {
					t.Errorf("settings = %+v, want config values", s)
				}
			},
		},
		{
			name: "flags win",
			args: []string{"--chart", "fan", "--generations", "8", "--compact=false"},
			check: func(t *testing.T, s layout.Settings) {
				if s.ChartType != layout.ChartFan || s.GenerationLimit != 8 || s.IsCompact {
					t.Errorf("settings = %+v, want fan/8/not compact", s)
				}
			},
		},
		{
			name: "hide deceased",
			args: []string{"--hide-deceased"},
			check: func(t *testing.T, s layout.Settings) {
				if s.ShowDeceased == nil || *s.ShowDeceased {
					t.Errorf("ShowDeceased = %v, want false", s.ShowDeceased)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f settingsFlags
			cmd := &cobra.Command{Use: "test"}
			f.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error: %v", err)
			}
			tt.check(t, f.apply(cmd, base))
		})
	}
}

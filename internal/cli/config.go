package cli

import (
	stderrors "errors"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/layout"
)

// Config is the contents of lineage.toml.
//
//	[settings]
//	chart_type = "pedigree"
//	compact = true
//
//	[server]
//	addr = "0.0.0.0:8080"
//	redis = "redis://localhost:6379/0"
type Config struct {
	Settings layout.Settings `toml:"settings"`
	Server   ServerConfig    `toml:"server"`
}

// ServerConfig holds defaults for `lineage serve`.
type ServerConfig struct {
	Addr  string  `toml:"addr"`
	Redis string  `toml:"redis"`
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

// loadConfig reads path, or the default config file when path is empty.
// A missing default file yields an empty Config; a missing explicit file
// is an error.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// =============================================================================
// Settings Flags
// =============================================================================

// settingsFlags binds layout settings to command flags. Flags that were
// set explicitly override the config file.
type settingsFlags struct {
	chart        string
	mode         string
	compact      bool
	spacingX     float64
	spacingY     float64
	timeOffset   bool
	timeScale    float64
	generations  int
	hideDeceased bool
	rtl          bool
	nodeWidth    float64
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	d := layout.DefaultSettings()
	flags := cmd.Flags()
	flags.StringVarP(&f.chart, "chart", "c", string(d.ChartType), "chart type: descendant, pedigree, fan, force")
	flags.StringVar(&f.mode, "mode", string(d.LayoutMode), "layout mode: vertical, horizontal, radial")
	flags.BoolVar(&f.compact, "compact", false, "shrink nodes and spacing")
	flags.Float64Var(&f.spacingX, "spacing-x", d.NodeSpacingX, "horizontal gap between nodes")
	flags.Float64Var(&f.spacingY, "spacing-y", d.NodeSpacingY, "vertical gap between generations")
	flags.BoolVar(&f.timeOffset, "time-offset", false, "offset generations by birth year")
	flags.Float64Var(&f.timeScale, "time-scale", d.TimeScaleFactor, "pixels per year with --time-offset")
	flags.IntVar(&f.generations, "generations", d.GenerationLimit, "fan chart depth")
	flags.BoolVar(&f.hideDeceased, "hide-deceased", false, "leave deceased persons out of force charts")
	flags.BoolVar(&f.rtl, "rtl", false, "mirror the chart horizontally")
	flags.Float64Var(&f.nodeWidth, "node-width", 0, "node width override (0 = automatic)")
}

// apply overlays explicitly set flags on base.
func (f *settingsFlags) apply(cmd *cobra.Command, base layout.Settings) layout.Settings {
	s := base
	changed := cmd.Flags().Changed
	if changed("chart") {
		s.ChartType = layout.ChartType(f.chart)
	}
	if changed("mode") {
		s.LayoutMode = layout.Mode(f.mode)
	}
	if changed("compact") {
		s.IsCompact = f.compact
	}
	if changed("spacing-x") {
		s.NodeSpacingX = f.spacingX
	}
	if changed("spacing-y") {
		s.NodeSpacingY = f.spacingY
	}
	if changed("time-offset") {
		s.EnableTimeOffset = f.timeOffset
	}
	if changed("time-scale") {
		s.TimeScaleFactor = f.timeScale
	}
	if changed("generations") {
		s.GenerationLimit = f.generations
	}
	if changed("hide-deceased") {
		show := !f.hideDeceased
		s.ShowDeceased = &show
	}
	if changed("rtl") {
		s.IsRTL = f.rtl
	}
	if changed("node-width") {
		s.NodeWidth = f.nodeWidth
	}
	return s
}

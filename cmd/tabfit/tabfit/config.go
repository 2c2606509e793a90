package tabfit

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/paulhankin/tabfit/fit"
)

// A Mark makes one segment adjustable.
type Mark struct {
	Segment    string `toml:"segment" json:"segment"`
	Multiplier int    `toml:"multiplier" json:"multiplier"`
}

// Config describes one adjustment run. Everything but In and Out can
// be read from a TOML file:
//
//	material_thickness_mm = 3
//	dpi = 96
//	curve_tolerance = 0.5
//	highlight = true
//	flatten = false
//
//	[[mark]]
//	segment = "path_0_seg_1"
//	multiplier = 2
type Config struct {
	In  string `toml:"-"`
	Out string `toml:"-"`

	MaterialThicknessMM float64 `toml:"material_thickness_mm"`
	DPI                 float64 `toml:"dpi"`
	CurveTolerance      float64 `toml:"curve_tolerance"`
	Highlight           bool    `toml:"highlight"`
	Marks               []Mark  `toml:"mark"`

	// Flatten writes curves as polylines.
	Flatten bool `toml:"flatten"`
}

// DefaultConfig returns a config for 3mm material at 96 dpi.
func DefaultConfig() *Config {
	return &Config{
		MaterialThicknessMM: fit.DefaultParams.MaterialThicknessMM,
		DPI:                 fit.DefaultParams.DPI,
		CurveTolerance:      0.5,
	}
}

// ParseConfig decodes a TOML config on top of the defaults. Unknown
// keys are an error.
func ParseConfig(data string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, err
	}
	if und := md.Undecoded(); len(und) > 0 {
		return nil, fmt.Errorf("unknown config key %q", und[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML config file.
func LoadConfig(name string) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Params returns the physical parameters of cfg.
func (cfg *Config) Params() fit.Params {
	return fit.Params{MaterialThicknessMM: cfg.MaterialThicknessMM, DPI: cfg.DPI}
}

// Validate checks the parameters and marks.
func (cfg *Config) Validate() error {
	if err := cfg.Params().Validate(); err != nil {
		return err
	}
	if cfg.CurveTolerance < 0 {
		return fmt.Errorf("curve tolerance %g is negative", cfg.CurveTolerance)
	}
	for _, m := range cfg.Marks {
		if m.Segment == "" {
			return fmt.Errorf("mark without a segment")
		}
		if m.Multiplier < 0 || m.Multiplier > 2 {
			return fmt.Errorf("mark %s: %w", m.Segment, fit.ErrInvalidMultiplier)
		}
	}
	return nil
}

// ParseMarks parses a list of marks of the form "id=2,id". A bare id
// has multiplier 1.
func ParseMarks(s string) ([]Mark, error) {
	var marks []Mark
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, mult, ok := strings.Cut(part, "=")
		m := Mark{Segment: strings.TrimSpace(id), Multiplier: 1}
		if ok {
			n, err := strconv.Atoi(strings.TrimSpace(mult))
			if err != nil {
				return nil, fmt.Errorf("can't parse mark %q: %w", part, err)
			}
			m.Multiplier = n
		}
		if m.Segment == "" {
			return nil, fmt.Errorf("can't parse mark %q", part)
		}
		marks = append(marks, m)
	}
	return marks, nil
}

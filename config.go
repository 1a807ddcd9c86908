package tov

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/dboyer7/NRml-TOV/integrator"
)

// MaxStencil is the widest interpolation stencil allowed.
const MaxStencil = 11

// StepPolicy selects how the radial step is chosen.
type StepPolicy uint8

const (
	// LengthScaleSteps uses a fraction of the local length scale, reduced near the surface.
	LengthScaleSteps StepPolicy = iota
	// FixedSteps uses the initial step throughout.
	FixedSteps
)

func (p StepPolicy) String() string {
	switch p {
	case LengthScaleSteps:
		return "lengthscale"
	case FixedSteps:
		return "fixed"
	}
	return fmt.Sprintf("StepPolicy(%d)", uint8(p))
}

// ParseStepPolicy parses a step policy name.
func ParseStepPolicy(s string) (StepPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lengthscale", "length_scale", "":
		return LengthScaleSteps, nil
	case "fixed":
		return FixedSteps, nil
	}
	return 0, fmt.Errorf("%w: unknown step policy %q", ErrInvalidConfiguration, s)
}

// Config holds the parameters of a TOV solve.
type Config struct {
	CentralDensity float64 // central baryon density
	Method         integrator.Method
	Adaptive       bool
	StepPolicy     StepPolicy

	InitialStep, MinStep, MaxStep float64
	AbsTol, RelTol                float64
	Safety                        float64
	MaxStepAdjust, MinStepAdjust  float64

	ErrorUpperTolerance float64 // error ratio above which a step is rejected
	ErrorLowerTolerance float64 // error ratio below which the step grows
	YErrorScale         float64 // weight of |y| in the relative error
	DYErrorScale        float64 // weight of h|dy/dr| in the relative error

	LengthScaleFraction float64 // step as a fraction of the length scale
	SurfaceStepFraction float64 // same, once the density is below SurfaceDensityRatio of the center
	SurfaceDensityRatio float64
	TerminationPressure float64

	MaxSteps        int
	InitialCapacity int
	Stencil         int

	Grid   GridConfig
	Output OutputConfig
}

// GridConfig describes the uniform Cartesian grid the star is placed on.
type GridConfig struct {
	Points     int     // points per axis
	Extent     float64 // the grid spans [-Extent, Extent] on every axis
	Workers    int     // 0 uses one worker per CPU
	TimeLevels int
}

// OutputConfig holds the output file names. Empty names disable the output.
type OutputConfig struct {
	Raw, Adjusted string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CentralDensity:      0.129285,
		Method:              integrator.RKF45,
		Adaptive:            true,
		StepPolicy:          LengthScaleSteps,
		InitialStep:         1e-20,
		MinStep:             1e-20,
		MaxStep:             10,
		AbsTol:              1e-8,
		RelTol:              1e-8,
		Safety:              0.9,
		MaxStepAdjust:       5,
		MinStepAdjust:       0.2,
		ErrorUpperTolerance: 1,
		ErrorLowerTolerance: 0.5,
		YErrorScale:         1,
		LengthScaleFraction: 0.01,
		SurfaceStepFraction: 1e-4,
		SurfaceDensityRatio: 0.05,
		TerminationPressure: 0,
		MaxSteps:            1000000,
		InitialCapacity:     DefaultInitialCapacity,
		Stencil:             MaxStencil,
		Grid:                GridConfig{Points: 32, Extent: 20, TimeLevels: 1},
	}
}

// Validate returns an error wrapping ErrInvalidConfiguration if the solver cannot use this configuration.
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}
	if err := integrator.CheckMode(c.Method, c.Adaptive); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	switch {
	case !(c.CentralDensity > 0):
		return invalid("central density %g must be positive", c.CentralDensity)
	case !(c.InitialStep > 0):
		return invalid("initial step %g must be positive", c.InitialStep)
	case c.MinStep < 0 || c.MaxStep < 0:
		return invalid("step bounds must not be negative")
	case c.MaxStep > 0 && c.MinStep > c.MaxStep:
		return invalid("min step %g larger than max step %g", c.MinStep, c.MaxStep)
	case c.Adaptive && !(c.AbsTol > 0) && !(c.RelTol > 0):
		return invalid("adaptive stepping requires a positive error limit")
	case c.Adaptive && !(c.ErrorLowerTolerance > 0 && c.ErrorLowerTolerance <= c.ErrorUpperTolerance):
		return invalid("error tolerances must satisfy 0 < lower (%g) <= upper (%g)", c.ErrorLowerTolerance, c.ErrorUpperTolerance)
	case c.YErrorScale < 0 || c.DYErrorScale < 0:
		return invalid("error scalers must not be negative")
	case c.StepPolicy != LengthScaleSteps && c.StepPolicy != FixedSteps:
		return invalid("unknown step policy %s", c.StepPolicy)
	case !(c.LengthScaleFraction > 0) || !(c.SurfaceStepFraction > 0):
		return invalid("length scale fractions must be positive")
	case c.SurfaceDensityRatio < 0 || c.SurfaceDensityRatio >= 1:
		return invalid("surface density ratio %g must be in [0, 1)", c.SurfaceDensityRatio)
	case c.TerminationPressure < 0:
		return invalid("termination pressure %g must not be negative", c.TerminationPressure)
	case c.MaxSteps <= 0:
		return invalid("step budget %d must be positive", c.MaxSteps)
	case c.InitialCapacity < 0:
		return invalid("initial capacity %d must not be negative", c.InitialCapacity)
	case c.Stencil < 1 || c.Stencil > MaxStencil:
		return invalid("interpolation stencil %d must be between 1 and %d", c.Stencil, MaxStencil)
	}
	return nil
}

// Validate returns an error wrapping ErrInvalidConfiguration if the grid cannot be built.
func (g GridConfig) Validate() error {
	switch {
	case g.Points < 1:
		return fmt.Errorf("%w: grid needs at least one point per axis, got %d", ErrInvalidConfiguration, g.Points)
	case !(g.Extent > 0):
		return fmt.Errorf("%w: grid extent %g must be positive", ErrInvalidConfiguration, g.Extent)
	case g.Workers < 0:
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfiguration, g.Workers)
	case g.TimeLevels < 1 || g.TimeLevels > 3:
		return fmt.Errorf("%w: %d time levels, must be 1, 2 or 3", ErrInvalidConfiguration, g.TimeLevels)
	}
	return nil
}

// NewViper returns a viper instance holding the defaults, reading the environment
// variables prefixed with TOV_ (e.g. TOV_TOV_ODE_METHOD).
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("tov.central_baryon_density", d.CentralDensity)
	v.SetDefault("tov.ode_method", d.Method.String())
	v.SetDefault("tov.adaptive", d.Adaptive)
	v.SetDefault("tov.step_policy", d.StepPolicy.String())
	v.SetDefault("tov.initial_step", d.InitialStep)
	v.SetDefault("tov.min_step", d.MinStep)
	v.SetDefault("tov.max_step", d.MaxStep)
	v.SetDefault("tov.error_limit", d.AbsTol)
	v.SetDefault("tov.error_safety", d.Safety)
	v.SetDefault("tov.max_step_adjustment", d.MaxStepAdjust)
	v.SetDefault("tov.min_step_adjustment", d.MinStepAdjust)
	v.SetDefault("tov.error_upper_tolerance", d.ErrorUpperTolerance)
	v.SetDefault("tov.error_lower_tolerance", d.ErrorLowerTolerance)
	v.SetDefault("tov.ay_error_scaler", d.YErrorScale)
	v.SetDefault("tov.ady_error_scaler", d.DYErrorScale)
	v.SetDefault("tov.lengthscale_fraction", d.LengthScaleFraction)
	v.SetDefault("tov.surface_step_fraction", d.SurfaceStepFraction)
	v.SetDefault("tov.surface_density_ratio", d.SurfaceDensityRatio)
	v.SetDefault("tov.termination_pressure", d.TerminationPressure)
	v.SetDefault("tov.max_steps", d.MaxSteps)
	v.SetDefault("tov.initial_capacity", d.InitialCapacity)
	v.SetDefault("interpolation.stencil", d.Stencil)
	v.SetDefault("eos.type", SimplePolytropeEOS.String())
	v.SetDefault("eos.k", 100.0)
	v.SetDefault("eos.gammas", []float64{2})
	v.SetDefault("grid.n", d.Grid.Points)
	v.SetDefault("grid.extent", d.Grid.Extent)
	v.SetDefault("grid.workers", d.Grid.Workers)
	v.SetDefault("grid.timelevels", d.Grid.TimeLevels)
	v.SetEnvPrefix("TOV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the configuration file at path (TOML, YAML or JSON by extension) on
// top of the defaults, and builds the configured EOS. An empty path only uses the
// defaults and the environment.
func LoadConfig(path string) (Config, EOS, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration and the EOS held by v.
func FromViper(v *viper.Viper) (Config, EOS, error) {
	method, err := integrator.ParseMethod(v.GetString("tov.ode_method"))
	if err != nil {
		return Config{}, nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	policy, err := ParseStepPolicy(v.GetString("tov.step_policy"))
	if err != nil {
		return Config{}, nil, err
	}
	absTol, relTol := v.GetFloat64("tov.error_limit"), v.GetFloat64("tov.error_limit")
	if v.IsSet("tov.abs_error") {
		absTol = v.GetFloat64("tov.abs_error")
	}
	if v.IsSet("tov.rel_error") {
		relTol = v.GetFloat64("tov.rel_error")
	}
	cfg := Config{
		CentralDensity:      v.GetFloat64("tov.central_baryon_density"),
		Method:              method,
		Adaptive:            v.GetBool("tov.adaptive"),
		StepPolicy:          policy,
		InitialStep:         v.GetFloat64("tov.initial_step"),
		MinStep:             v.GetFloat64("tov.min_step"),
		MaxStep:             v.GetFloat64("tov.max_step"),
		AbsTol:              absTol,
		RelTol:              relTol,
		Safety:              v.GetFloat64("tov.error_safety"),
		MaxStepAdjust:       v.GetFloat64("tov.max_step_adjustment"),
		MinStepAdjust:       v.GetFloat64("tov.min_step_adjustment"),
		ErrorUpperTolerance: v.GetFloat64("tov.error_upper_tolerance"),
		ErrorLowerTolerance: v.GetFloat64("tov.error_lower_tolerance"),
		YErrorScale:         v.GetFloat64("tov.ay_error_scaler"),
		DYErrorScale:        v.GetFloat64("tov.ady_error_scaler"),
		LengthScaleFraction: v.GetFloat64("tov.lengthscale_fraction"),
		SurfaceStepFraction: v.GetFloat64("tov.surface_step_fraction"),
		SurfaceDensityRatio: v.GetFloat64("tov.surface_density_ratio"),
		TerminationPressure: v.GetFloat64("tov.termination_pressure"),
		MaxSteps:            v.GetInt("tov.max_steps"),
		InitialCapacity:     v.GetInt("tov.initial_capacity"),
		Stencil:             v.GetInt("interpolation.stencil"),
		Grid: GridConfig{
			Points:     v.GetInt("grid.n"),
			Extent:     v.GetFloat64("grid.extent"),
			Workers:    v.GetInt("grid.workers"),
			TimeLevels: v.GetInt("grid.timelevels"),
		},
		Output: OutputConfig{Raw: v.GetString("output.raw"), Adjusted: v.GetString("output.adjusted")},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	if err := cfg.Grid.Validate(); err != nil {
		return Config{}, nil, err
	}

	gammas, err := float64Slice(v.Get("eos.gammas"))
	if err != nil {
		return Config{}, nil, fmt.Errorf("%w: eos.gammas: %s", ErrInvalidConfiguration, err)
	}
	bounds, err := float64Slice(v.Get("eos.rho_bounds"))
	if err != nil {
		return Config{}, nil, fmt.Errorf("%w: eos.rho_bounds: %s", ErrInvalidConfiguration, err)
	}
	eos, err := NewEOS(EOSParams{
		Type:             v.GetString("eos.type"),
		K:                v.GetFloat64("eos.k"),
		Gammas:           gammas,
		RhoBounds:        bounds,
		Table:            v.GetString("eos.table"),
		Temperature:      v.GetFloat64("eos.temperature"),
		ElectronFraction: v.GetFloat64("eos.ye"),
	})
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, eos, nil
}

// float64Slice converts a configuration value to a list of numbers. Strings hold
// whitespace or comma separated values, as set from the environment.
func float64Slice(val interface{}) ([]float64, error) {
	var items []interface{}
	switch vals := val.(type) {
	case nil:
		return nil, nil
	case []float64:
		return vals, nil
	case []interface{}:
		items = vals
	case string:
		for _, f := range strings.FieldsFunc(vals, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			items = append(items, f)
		}
	default:
		items = []interface{}{vals}
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, err := cast.ToFloat64E(item)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

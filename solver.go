package tov

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/dboyer7/NRml-TOV/integrator"
)

// Solver integrates the TOV equations from the center of the star outwards until the
// surface is reached or the step budget is exhausted.
// It implements the ode.Integrable interface, which drives it for fixed RK4 steps.
type Solver struct {
	cfg    Config
	eos    EOS
	logger kitlog.Logger
	driver *integrator.Driver
	table  *Table

	r      float64
	y      [stateDim]float64
	ρe, ρb float64 // constants at the current state
	L      float64 // last well defined length scale
	steps  int

	started, done, complete bool
	err                     error
}

// NewSolver returns a new Solver. A nil logger discards all messages.
func NewSolver(cfg Config, eos EOS, logger kitlog.Logger) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eos == nil {
		return nil, fmt.Errorf("%w: no EOS", ErrInvalidConfiguration)
	}
	if err := eos.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	driver, err := integrator.NewDriver(integrator.Config{
		Method:      cfg.Method,
		InitialStep: cfg.InitialStep,
		MinStep:     cfg.MinStep,
		MaxStep:     cfg.MaxStep,
		AbsTol:      cfg.AbsTol,
		RelTol:      cfg.RelTol,
		Safety:      cfg.Safety,
		MaxAdjust:   cfg.MaxStepAdjust,
		MinAdjust:   cfg.MinStepAdjust,

		UpperTolerance: cfg.ErrorUpperTolerance,
		LowerTolerance: cfg.ErrorLowerTolerance,
		YScale:         cfg.YErrorScale,
		DYScale:        cfg.DYErrorScale,
	}, stateDim)
	if err != nil {
		return nil, err
	}
	table, err := NewTable(cfg.InitialCapacity)
	if err != nil {
		return nil, err
	}
	s := &Solver{cfg: cfg, eos: eos, logger: kitlog.With(logger, "subsys", "tov"), driver: driver, table: table}
	return s, nil
}

// Integrate runs the integration and returns the trimmed sample table.
// Running out of steps is not an error: Complete reports whether the surface was reached.
func (s *Solver) Integrate() (*Table, error) {
	if s.started {
		return nil, fmt.Errorf("%w: solver already used", ErrInvalidConfiguration)
	}
	s.started = true
	if err := s.initialize(); err != nil {
		return nil, err
	}
	if s.cfg.Method == integrator.RK4 && s.cfg.StepPolicy == FixedSteps {
		ode.NewRK4(0, s.cfg.InitialStep, s).Solve() // Blocking.
	} else {
		for !s.Stop(s.r) {
			s.advance()
		}
	}
	if s.err != nil {
		level.Error(s.logger).Log("status", "failed", "err", s.err)
		return nil, s.err
	}
	s.table.Trim()
	if s.complete {
		level.Info(s.logger).Log("status", "finished", "r", s.r, "M", s.y[iMass], "steps", s.steps)
	} else {
		level.Warn(s.logger).Log("status", "incomplete", "reason", "step budget exhausted", "r", s.r, "P", s.y[iPressure], "steps", s.steps)
	}
	st := s.driver.Stats()
	level.Debug(s.logger).Log("method", s.driver.Method(), "evaluations", st.Evaluations, "rejected", st.Rejected)
	return s.table, nil
}

// Complete returns whether the integration terminated at the surface.
func (s *Solver) Complete() bool {
	return s.complete
}

// Steps returns the number of accepted steps.
func (s *Solver) Steps() int {
	return s.steps
}

// initialize sets the state at the center of the star and stores it as the first row.
func (s *Solver) initialize() error {
	ρc := s.cfg.CentralDensity
	P, ε := s.eos.ColdEOS(ρc)
	s.y = [stateDim]float64{iPressure: P}
	s.ρb = ρc
	s.ρe = ρc * (1 + ε)
	s.L = s.cfg.InitialStep
	level.Info(s.logger).Log("eos", s.eos.Kind(), "method", s.cfg.Method, "rho_c", ρc, "P_c", P, "rho_e", s.ρe)
	return s.record()
}

// record appends the current radius, constants and state to the table.
func (s *Solver) record() error {
	return s.table.Append(Row{
		R:         s.r,
		RhoEnergy: s.ρe,
		RhoBaryon: s.ρb,
		Pressure:  s.y[iPressure],
		Mass:      s.y[iMass],
		Nu:        s.y[iNu],
		RIso:      s.y[iRIso],
	})
}

// clamp floors the pressure at zero, leaving the rest of the state as is.
func (s *Solver) clamp(y []float64) {
	if y[iPressure] < 0 {
		y[iPressure] = 0
	}
}

// stepSize returns the next step to take.
func (s *Solver) stepSize() float64 {
	if s.cfg.StepPolicy == FixedSteps {
		return s.cfg.InitialStep
	}
	if s.ρb < s.cfg.SurfaceDensityRatio*s.cfg.CentralDensity {
		return s.cfg.SurfaceStepFraction * s.L
	}
	return s.cfg.LengthScaleFraction * s.L
}

// advance takes one step with the integrator driver.
func (s *Solver) advance() {
	y := s.y
	r, err := s.driver.Apply(s.rhs, s.r, s.r+s.stepSize(), y[:])
	if err != nil {
		s.err = &IntegrationError{Step: s.steps, Radius: s.r, State: s.y, Err: err}
		return
	}
	s.accept(r, y[:])
}

// accept applies the post-step policy to a new state, stores it and checks for termination.
func (s *Solver) accept(r float64, y []float64) {
	s.clamp(y)
	s.r = r
	copy(s.y[:], y)
	s.steps++
	s.ρe, s.ρb = densities(s.eos, s.y[iPressure])
	undefined := math.IsNaN(s.ρb)
	if undefined {
		s.ρe, s.ρb = 0, 0
	}
	if err := s.record(); err != nil {
		s.err = &IntegrationError{Step: s.steps, Radius: s.r, State: s.y, Err: err}
		return
	}
	if s.y[iPressure] <= s.cfg.TerminationPressure || undefined {
		s.done = true
		s.complete = true
	}
}

// rhs is the TOV system as seen by the integrators. It records the local length scale.
func (s *Solver) rhs(r float64, y []float64) []float64 {
	ρe, _ := densities(s.eos, y[iPressure])
	if math.IsNaN(ρe) {
		ρe = 0
	}
	dy := Derivatives(r, y, ρe)
	if L, ok := lengthScale(y[iRIso], dy[iRIso]); ok {
		s.L = L
	}
	return dy[:]
}

// GetState implements the ode.Integrable interface. The radius is carried as the last
// component so that every stage sees its own radius.
func (s *Solver) GetState() []float64 {
	state := make([]float64, stateDim+1)
	copy(state, s.y[:])
	state[stateDim] = s.r
	return state
}

// SetState implements the ode.Integrable interface.
func (s *Solver) SetState(t float64, state []float64) {
	for _, v := range state {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.err = &IntegrationError{Step: s.steps, Radius: s.r, State: s.y, Err: fmt.Errorf("%w: RK4 produced a non finite state", integrator.ErrStepFailed)}
			return
		}
	}
	s.accept(state[stateDim], state[:stateDim])
}

// Stop implements the ode.Integrable interface. It also applies the pre-step clamp.
func (s *Solver) Stop(t float64) bool {
	if s.done || s.err != nil {
		return true
	}
	if s.steps >= s.cfg.MaxSteps {
		s.done = true
		return true
	}
	s.clamp(s.y[:])
	return false
}

// Func implements the ode.Integrable interface.
func (s *Solver) Func(t float64, state []float64) []float64 {
	fDot := make([]float64, stateDim+1)
	copy(fDot, s.rhs(state[stateDim], state[:stateDim]))
	fDot[stateDim] = 1 // dr/dr
	return fDot
}

// Solve integrates the TOV equations and normalizes the resulting table.
func Solve(cfg Config, eos EOS, logger kitlog.Logger) (*Profile, error) {
	s, err := NewSolver(cfg, eos, logger)
	if err != nil {
		return nil, err
	}
	table, err := s.Integrate()
	if err != nil {
		return nil, err
	}
	p, err := Normalize(table, cfg.Stencil)
	if err != nil {
		return nil, err
	}
	p.Complete = s.complete
	p.Steps = s.steps
	level.Info(s.logger).Log("status", "normalized", "R", p.SurfaceRadius(), "R_iso", p.SurfaceIsoRadius(), "M", p.SurfaceMass(), "surface", p.Surface)
	return p, nil
}

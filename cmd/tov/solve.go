package main

import (
	"github.com/go-kit/log/level"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	tov "github.com/dboyer7/NRml-TOV"
)

func newSolveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Integrate a star and write its raw and normalized profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, eos, err := a.load()
			if err != nil {
				return err
			}
			s, err := tov.NewSolver(cfg, eos, a.logger)
			if err != nil {
				return err
			}
			raw, err := s.Integrate()
			if err != nil {
				return err
			}
			if cfg.Output.Raw != "" {
				if err := tov.WriteRawFile(cfg.Output.Raw, raw); err != nil {
					return err
				}
				level.Info(a.logger).Log("subsys", "output", "raw", cfg.Output.Raw, "rows", raw.Len())
			}
			p, err := tov.Normalize(raw, cfg.Stencil)
			if err != nil {
				return err
			}
			p.Complete, p.Steps = s.Complete(), s.Steps()
			if cfg.Output.Adjusted != "" {
				if err := tov.WriteAdjustedFile(cfg.Output.Adjusted, p); err != nil {
					return err
				}
				level.Info(a.logger).Log("subsys", "output", "adjusted", cfg.Output.Adjusted, "rows", p.Len())
			}
			renderSummary(cmd, cfg, eos, p)
			return nil
		},
	}
	cmd.Flags().Float64("density", tov.DefaultConfig().CentralDensity, "central baryon density")
	cmd.Flags().String("method", tov.DefaultConfig().Method.String(), "integration method (Euler, RK2, RK4, ARKF, ACK, ADP5, ADP8)")
	cmd.Flags().Bool("adaptive", true, "adaptive stepping (requires ARKF, ACK, ADP5 or ADP8)")
	cmd.Flags().String("raw", "", "raw profile output file")
	cmd.Flags().String("adjusted", "", "normalized profile output file")
	a.v.BindPFlag("tov.central_baryon_density", cmd.Flags().Lookup("density"))
	a.v.BindPFlag("tov.ode_method", cmd.Flags().Lookup("method"))
	a.v.BindPFlag("tov.adaptive", cmd.Flags().Lookup("adaptive"))
	a.v.BindPFlag("output.raw", cmd.Flags().Lookup("raw"))
	a.v.BindPFlag("output.adjusted", cmd.Flags().Lookup("adjusted"))
	return cmd
}

func renderSummary(cmd *cobra.Command, cfg tov.Config, eos tov.EOS, p *tov.Profile) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Quantity", "Value"})
	t.AppendRows([]table.Row{
		{"EOS", eos.Kind()},
		{"Method", cfg.Method},
		{"Central density", cfg.CentralDensity},
		{"Steps", p.Steps},
		{"Complete", p.Complete},
		{"Surface row", p.Surface},
		{"Radius (Schwarzschild)", p.SurfaceRadius()},
		{"Radius (isotropic)", p.SurfaceIsoRadius()},
		{"Mass", p.SurfaceMass()},
		{"Compactness", p.SurfaceMass() / p.SurfaceRadius()},
	})
	t.Render()
}

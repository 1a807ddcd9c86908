package main

import (
	"time"

	"github.com/go-kit/log/level"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	tov "github.com/dboyer7/NRml-TOV"
	"github.com/dboyer7/NRml-TOV/grid"
)

func newGridCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Solve a star and place it on a uniform Cartesian grid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, eos, err := a.load()
			if err != nil {
				return err
			}
			p, err := tov.Solve(cfg, eos, a.logger)
			if err != nil {
				return err
			}
			g, err := grid.NewUniform(cfg.Grid.Points, cfg.Grid.Extent)
			if err != nil {
				return err
			}
			start := time.Now()
			f, err := grid.Place(cmd.Context(), p, g, cfg.Grid.Workers)
			if err != nil {
				return err
			}
			levels, err := grid.TimeLevels(f, cfg.Grid.TimeLevels)
			if err != nil {
				return err
			}
			level.Info(a.logger).Log("subsys", "grid", "points", g.Size(), "levels", len(levels), "duration", time.Since(start))

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Field", "Min", "Max"})
			for _, r := range f.Summary() {
				t.AppendRow(table.Row{r.Name, r.Min, r.Max})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().Int("n", tov.DefaultConfig().Grid.Points, "grid points per axis")
	cmd.Flags().Float64("extent", tov.DefaultConfig().Grid.Extent, "grid half width")
	cmd.Flags().Int("workers", 0, "placement goroutines (0 for one per CPU)")
	a.v.BindPFlag("grid.n", cmd.Flags().Lookup("n"))
	a.v.BindPFlag("grid.extent", cmd.Flags().Lookup("extent"))
	a.v.BindPFlag("grid.workers", cmd.Flags().Lookup("workers"))
	return cmd
}

package main

import (
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	tov "github.com/dboyer7/NRml-TOV"
)

func newInterpCmd(a *app) *cobra.Command {
	var (
		raw     string
		stencil int
		radii   []float64
	)
	cmd := &cobra.Command{
		Use:   "interp",
		Short: "Normalize a raw profile and interpolate it at isotropic radii",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl, err := tov.ReadRawFile(raw)
			if err != nil {
				return err
			}
			p, err := tov.Normalize(tbl, stencil)
			if err != nil {
				return err
			}
			level.Info(a.logger).Log("subsys", "interp", "raw", raw, "rows", p.Len(), "R_iso", p.SurfaceIsoRadius(), "M", p.SurfaceMass())
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"r_iso", "r_Schw", "rho_e", "rho_b", "P", "M", "expnu", "exp4phi"})
			for _, r := range radii {
				pt, err := p.Interpolate(r)
				if err != nil {
					return err
				}
				row := table.Row{}
				for _, v := range []float64{r, pt.RSchw, pt.RhoEnergy, pt.RhoBaryon, pt.Pressure, pt.Mass, pt.ExpNu, pt.Exp4Phi} {
					row = append(row, fmt.Sprintf("%.10e", v))
				}
				t.AppendRow(row)
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&raw, "raw", "", "raw profile written by solve")
	cmd.Flags().IntVar(&stencil, "stencil", tov.MaxStencil, "interpolation stencil width")
	cmd.Flags().Float64SliceVar(&radii, "r", []float64{0}, "isotropic radii to interpolate at")
	cmd.MarkFlagRequired("raw")
	return cmd
}

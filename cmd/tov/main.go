package main

import (
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tov "github.com/dboyer7/NRml-TOV"
)

// app holds the state shared by the sub commands.
type app struct {
	cfgFile string
	verbose bool
	logger  kitlog.Logger
	v       *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: tov.NewViper(), logger: kitlog.NewNopLogger()}
	root := &cobra.Command{
		Use:   "tov",
		Short: "Relativistic static star solver",
		Long: `tov integrates the Tolman-Oppenheimer-Volkoff equations for a polytropic or
tabulated equation of state, normalizes the solution to the exterior Schwarzschild
metric and interpolates it onto isotropic radii or a Cartesian grid.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.setupLogging(cmd)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "configuration file (TOML, YAML or JSON)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newSolveCmd(a), newInterpCmd(a), newGridCmd(a))
	return root
}

func (a *app) setupLogging(cmd *cobra.Command) {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(cmd.ErrOrStderr()))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	if a.verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	a.logger = logger
}

// load reads the configuration file, if any, on top of the defaults, the environment
// and the flags bound to a.v.
func (a *app) load() (tov.Config, tov.EOS, error) {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return tov.Config{}, nil, err
		}
		level.Debug(a.logger).Log("subsys", "config", "file", a.v.ConfigFileUsed())
	}
	return tov.FromViper(a.v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Package cmd wires the command line interface. Every command loads the
// YAML configuration first and lets flags override the smoothing
// parameters, mirroring how the preview deployments run the tool.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"ftspreview/internal/config"
	applog "ftspreview/internal/log"
	"ftspreview/pkg/build"
)

// state carries the loaded configuration between the root command and its
// subcommands.
type state struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

// Execute parses arguments and runs the selected command.
func Execute() error {
	info := build.Get()
	st := &state{}

	root := &cobra.Command{
		Use:           info.Name,
		Short:         "Reader and smoothing preview for IFS125HR interferograms",
		Version:       info.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg

			level, _ := applog.ParseLevel(cfg.LogLevel)
			if st.verbose {
				level = applog.LevelDebug
			}
			applog.SetLevel(level)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", "",
		"Path to the YAML configuration file (default: ./config.yaml if present)")
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(newInspectCommand(st))
	root.AddCommand(newExtractCommand(st))
	root.AddCommand(newSmoothCommand(st))
	root.AddCommand(newWatchCommand(st))

	root.SetArgs(os.Args[1:])
	return root.Execute()
}

// addSmoothingFlags lets a command override the configured smoothing
// parameters.
func addSmoothingFlags(cmd *cobra.Command, lwn *float64, cutoff *float64, npt *int) {
	cmd.Flags().Float64Var(lwn, "lwn", 0,
		"Reference laser wavenumber in cm^-1 (default from config)")
	cmd.Flags().Float64Var(cutoff, "cutoff", 0,
		"Low-pass cutoff in cm^-1 (default from config)")
	cmd.Flags().IntVar(npt, "npt", 0,
		"Crop length around the centerburst in samples (default from config)")
}

// smoothingParams merges flag overrides onto the configured values.
func (st *state) smoothingParams(lwn, cutoff float64, npt int) (float64, float64, int) {
	s := st.cfg.Smoothing
	if lwn > 0 {
		s.LaserWavenumber = lwn
	}
	if cutoff > 0 {
		s.Cutoff = cutoff
	}
	if npt > 0 {
		s.WindowLength = npt
	}
	return s.LaserWavenumber, s.Cutoff, s.WindowLength
}

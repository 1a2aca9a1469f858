package cmd

import (
	"bufio"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	applog "ftspreview/internal/log"
	"ftspreview/internal/opus"
	"ftspreview/internal/smooth"
)

func newSmoothCommand(st *state) *cobra.Command {
	var (
		lwn    float64
		cutoff float64
		npt    int
		output string
	)

	cmd := &cobra.Command{
		Use:   "smooth <file>",
		Short: "Low-pass smooth the interferogram of an FTS file",
		Long: `Crops the interferogram around its centerburst (PKL header parameter),
apodizes it and filters the spectrum edges below the cutoff wavenumber.
The smoothed signal is written as CSV; a dip in it indicates detector
nonlinearity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lwn, cutoff, npt := st.smoothingParams(lwn, cutoff, npt)

			src := opus.NewFileSource(args[0])
			file, err := opus.Read(src, applog.Warnf)
			if err != nil {
				return err
			}
			ifg, err := file.Interferogram(src)
			if err != nil {
				return err
			}
			peak, err := file.PeakIndex()
			if err != nil {
				return err
			}

			res, err := smooth.Smooth(ifg.Y, peak, lwn, cutoff, npt)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			bw := bufio.NewWriter(out)
			if _, err := fmt.Fprintln(bw, "index,apodization,smoothed"); err != nil {
				return err
			}
			for i, v := range res.Smoothed {
				if _, err := fmt.Fprintf(bw, "%d,%g,%g\n", i, res.Window[i], v); err != nil {
					return err
				}
			}
			if err := bw.Flush(); err != nil {
				return err
			}

			applog.Infof("smooth: peak %d, %d samples, cutoff %g cm^-1, max |smoothed| %.3e",
				peak, npt, cutoff, maxAbs(res.Smoothed))
			return nil
		},
	}

	addSmoothingFlags(cmd, &lwn, &cutoff, &npt)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

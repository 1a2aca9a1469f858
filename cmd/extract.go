package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	applog "ftspreview/internal/log"
	"ftspreview/internal/opus"
)

func newExtractCommand(st *state) *cobra.Command {
	var (
		blockName string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract a data block with its reconstructed axis as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := opus.NewFileSource(args[0])
			file, err := opus.Read(src, applog.Warnf)
			if err != nil {
				return err
			}
			arr, err := opus.Extract(file.Dir, file.Header, src, blockName)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			return writeCSV(out, arr)
		},
	}

	cmd.Flags().StringVarP(&blockName, "block", "b", opus.BlockInterferogram,
		"Name of the data block to extract")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"Output file (default: stdout)")
	return cmd
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeCSV(w io.Writer, arr *opus.SampleArray) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "x,y"); err != nil {
		return err
	}
	for i := range arr.Y {
		if _, err := fmt.Fprintf(bw, "%g,%g\n", arr.X[i], arr.Y[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

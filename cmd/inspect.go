package cmd

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"ftspreview/internal/config"
	applog "ftspreview/internal/log"
	"ftspreview/internal/opus"
)

func newInspectCommand(st *state) *cobra.Command {
	var (
		asJSON bool
		probe  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the block directory and header of an FTS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openSource(args[0], probe)
			if err != nil {
				return err
			}
			file, err := opus.Read(src, applog.Warnf)
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(struct {
					Directory opus.Directory `json:"directory"`
					Header    opus.Header    `json:"header"`
				}{file.Dir, file.Header}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			printDirectory(cmd, file.Dir)
			printHeader(cmd, file.Header)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit directory and header as JSON")
	cmd.Flags().BoolVar(&probe, "probe", false,
		fmt.Sprintf("Only read the first %d bytes (structural probe)", config.DefaultProbeBytes))
	return cmd
}

func openSource(path string, probe bool) (opus.Source, error) {
	if probe {
		return opus.NewPrefixSource(path, config.DefaultProbeBytes)
	}
	return opus.NewFileSource(path), nil
}

func printDirectory(cmd *cobra.Command, dir opus.Directory) {
	names := make([]string, 0, len(dir))
	for name := range dir {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return dir[names[i]].Offset < dir[names[j]].Offset })

	fmt.Fprintf(cmd.OutOrStdout(), "%d blocks:\n", len(dir))
	for _, name := range names {
		blk := dir[name]
		fmt.Fprintf(cmd.OutOrStdout(), "  %-36s type %3d/%-3d offset %8d length %8d\n",
			name, blk.Type, blk.Subtype, blk.Offset, blk.Length)
	}
}

func printHeader(cmd *cobra.Command, hdr opus.Header) {
	blocks := make([]string, 0, len(hdr))
	for name := range hdr {
		blocks = append(blocks, name)
	}
	sort.Strings(blocks)

	for _, name := range blocks {
		fmt.Fprintf(cmd.OutOrStdout(), "\n[%s]\n", name)
		tags := make([]string, 0, len(hdr[name]))
		for tag := range hdr[name] {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-4s = %s\n", tag, hdr[name][tag])
		}
	}
}

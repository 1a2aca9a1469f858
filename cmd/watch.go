package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ftspreview/internal/instrument"
	applog "ftspreview/internal/log"
	"ftspreview/internal/preview"
	"ftspreview/internal/transport"
)

func newWatchCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Continuously measure, smooth and publish preview frames",
		Long: `Repeats the idle-mode measurement cycle against the configured site's web
panel and publishes each decoded, smoothed interferogram to the configured
transports until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := st.cfg.Site()
			if err != nil {
				return err
			}
			client := instrument.New(site.IP, site.PreviewCommands, site.ShutdownCommands)

			var sink transport.Transport
			if st.cfg.Transport.WebSocketEnabled {
				sink = transport.NewWebSocketTransport(st.cfg.Transport.WebSocketAddress)
			} else {
				sink = transport.NewLoggingTransport()
			}
			defer sink.Close()

			runner, err := preview.NewRunner(client, sink, preview.Params{
				LaserWavenumber: st.cfg.Smoothing.LaserWavenumber,
				Cutoff:          st.cfg.Smoothing.Cutoff,
				WindowLength:    st.cfg.Smoothing.WindowLength,
			}, st.cfg.Preview.RefreshRate)
			if err != nil {
				return err
			}

			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGTERM)

			runner.Start()
			<-done

			runner.Stop()
			if err := client.StopMeasurement(); err != nil {
				applog.Warnf("watch: stop measurement: %v", err)
			}
			return nil
		},
	}
}

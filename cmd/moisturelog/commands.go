package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/moisturelog/internal/adapters/fs"
	"github.com/bft-labs/moisturelog/internal/adapters/serial"
	"github.com/bft-labs/moisturelog/internal/cliconfig"
	"github.com/bft-labs/moisturelog/internal/domain"
	"github.com/bft-labs/moisturelog/internal/logstore"
	"github.com/bft-labs/moisturelog/internal/watch"
	"github.com/bft-labs/moisturelog/pkg/log"
)

func storeConfig(cfg *cliconfig.Config) logstore.Config {
	return logstore.Config{
		Port:       cfg.Device,
		BaudRate:   cfg.BaudRate,
		MaxRecords: cfg.MaxRecords,
	}
}

func newWatchCommand(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the newest record each time the log is rewritten",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			logger := log.NewConsole(os.Stderr, cfg.LogLevel)
			out := cmd.OutOrStdout()

			w := watch.New(cfg.DataFile, logger, watch.WithStoreConfig(storeConfig(cfg)))
			var last string
			return w.Run(cmd.Context(), func(snap logstore.Snapshot) {
				rec, ok := snap.Latest()
				if !ok || rec.Timestamp == last {
					return
				}
				last = rec.Timestamp
				printRecord(out, rec, snap.Len())
			})
		},
	}
}

func newShowCommand(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	var latest, header bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the log document as it would be repaired, without writing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			logger := log.NewConsole(os.Stderr, cfg.LogLevel)
			store := logstore.New(fs.NewDocumentFile(cfg.DataFile), storeConfig(cfg), logstore.WithLogger(logger))

			snap, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if header {
				fmt.Fprintf(out, "port=%s baud_rate=%d records=%d\n",
					snap.Config.Port, snap.Config.BaudRate, snap.Len())
				return nil
			}
			if !latest {
				_, err := out.Write(snap.Document)
				return err
			}
			rec, ok := snap.Latest()
			if !ok {
				fmt.Fprintln(out, "no records")
				return nil
			}
			printRecord(out, rec, snap.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "print only the newest record")
	cmd.Flags().BoolVar(&header, "header", false, "print only the recorded device config and record count")
	cmd.MarkFlagsMutuallyExclusive("latest", "header")
	return cmd
}

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List serial devices present on this system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := serial.Devices()
			if err != nil {
				return fmt.Errorf("list devices: %w", err)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func printRecord(w io.Writer, rec domain.Record, count int) {
	fmt.Fprintf(w, "%s humidity=%v relay=%s threshold=%v records=%d\n",
		rec.Timestamp, float64(rec.Humidity), rec.RelayStatus, float64(rec.Threshold), count)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/moisturelog/internal/cliconfig"
	"github.com/bft-labs/moisturelog/internal/ports"
	"github.com/bft-labs/moisturelog/pkg/log"
	"github.com/bft-labs/moisturelog/pkg/moisturelog"
)

const helpDescription = `
Record soil-moisture telemetry from the sensor board's serial line into a
bounded JSON log.

Each line the board sends, such as

  MOISTURE:42.5,RELAY:1,THRESHOLD:65.0

becomes one timestamped record. The log keeps the newest records only and
repairs itself when it finds the file damaged or hand-edited.
`

var exampleUsage = strings.TrimSpace(`
  moisturelog --device /dev/ttyACM0 --data-file data_log.json
  moisturelog --replay capture.txt --sync-window 0 --echo=false
  moisturelog watch --data-file data_log.json
  moisturelog show --latest
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "moisturelog",
		Short:         "Record soil-moisture telemetry from a serial device into a bounded JSON log",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	// Flags shared by every command.
	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.moisturelog/config.toml)")
	pf.StringVar(&cfg.Device, "device", cfg.Device, "serial device of the sensor board")
	pf.IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "serial baud rate, also enforced in the log's config")
	pf.StringVar(&cfg.DataFile, "data-file", cfg.DataFile, "path of the JSON log document")
	pf.IntVar(&cfg.MaxRecords, "max-records", cfg.MaxRecords, "number of records kept in the log")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	// Acquisition flags.
	f := root.Flags()
	f.DurationVar(&cfg.SyncWindow, "sync-window", cfg.SyncWindow, "discard frames for this long after start (0 disables)")
	f.DurationVar(&cfg.IdleInterval, "idle-interval", cfg.IdleInterval, "pause after a read that returned nothing")
	f.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "serial read timeout")
	f.BoolVar(&cfg.Echo, "echo", cfg.Echo, "print the whole log to stdout after every record")
	f.StringVar(&cfg.Replay, "replay", "", "read frames from a capture file instead of the device")
	if err := f.MarkHidden("read-timeout"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	root.AddCommand(
		newWatchCommand(&cfg, &cfgPath),
		newShowCommand(&cfg, &cfgPath),
		newDevicesCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "moisturelog: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file and MOISTURELOG_* variables under the
// flags that were set explicitly, then validates the result.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("load config: %s does not exist", cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

// run acquires frames until a signal arrives or the replay input ends.
func run(ctx context.Context, cfg cliconfig.Config) error {
	logger := log.NewConsole(os.Stderr, cfg.LogLevel)
	logger.Info("configuration",
		ports.String("device", cfg.Device),
		ports.Int("baud_rate", cfg.BaudRate),
		ports.String("data_file", cfg.DataFile),
		ports.Int("max_records", cfg.MaxRecords),
		ports.Duration("sync_window", cfg.SyncWindow),
		ports.Bool("echo", cfg.Echo),
	)

	opts := []moisturelog.Option{moisturelog.WithLogger(logger)}
	if cfg.Echo {
		opts = append(opts, moisturelog.WithEcho(os.Stdout))
	}
	if cfg.Replay != "" {
		f, err := os.Open(cfg.Replay)
		if err != nil {
			return fmt.Errorf("open replay: %w", err)
		}
		opts = append(opts, moisturelog.WithByteSource(f))
	}

	b, err := moisturelog.New(cfg.BridgeConfig(), opts...)
	if err != nil {
		return fmt.Errorf("create bridge: %w", err)
	}
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("received signal, stopping")
	case <-b.Done():
	}

	if err := b.Stop(); err != nil && !errors.Is(err, moisturelog.ErrNotRunning) {
		return fmt.Errorf("stop: %w", err)
	}

	stats := b.Stats()
	logger.Info("acquisition finished",
		ports.String("state", b.Status().String()),
		ports.Uint64("stored", stats.Stored),
		ports.Uint64("rejected", stats.ParseErrors),
		ports.Uint64("store_errors", stats.StoreErrors),
	)
	if b.Status() == moisturelog.StateCrashed {
		return errors.New("acquisition crashed")
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kefctl/pkg/kef"
	"kefctl/pkg/kefmon"
)

var (
	cfgFile    string
	host       string
	port       int
	volumeStep float64
	maxVolume  float64
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "IP address of the speaker")
	rootCmd.PersistentFlags().IntVar(&port, "port", 50001, "TCP control port")
	rootCmd.PersistentFlags().Float64Var(&volumeStep, "volume-step", 0.05, "volume step for up/down (0-1)")
	rootCmd.PersistentFlags().Float64Var(&maxVolume, "max-volume", 1.0, "volume safety ceiling (0-1)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(unmuteCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(monitorCmd)

	volumeCmd.AddCommand(volumeUpCmd)
	volumeCmd.AddCommand(volumeDownCmd)

	monitorCmd.Flags().Int("interval", 15, "polling interval in seconds")
}

// settings merges the config file with the flags the user actually set.
func settings(cmd *cobra.Command) (Config, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return cfg, err
	}

	if host != "" {
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("volume-step") {
		cfg.VolumeStep = volumeStep
	}
	if cmd.Flags().Changed("max-volume") {
		cfg.MaximumVolume = maxVolume
	}
	if cmd.Flags().Changed("interval") {
		cfg.IntervalSec, _ = cmd.Flags().GetInt("interval")
	}

	if cfg.Host == "" {
		return cfg, fmt.Errorf("speaker address required: use --host or a config file")
	}
	return cfg, cfg.validate()
}

func getSpeaker(cmd *cobra.Command) (*kef.Speaker, Config) {
	cfg, err := settings(cmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := []kef.Option{
		kef.WithPort(cfg.Port),
		kef.WithVolumeStep(cfg.VolumeStep),
		kef.WithMaximumVolume(cfg.MaximumVolume),
	}
	if verbose {
		opts = append(opts, kef.WithLogger(newLogger()))
	}

	speaker, err := kef.NewSpeaker(cfg.Host, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return speaker, cfg
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the speaker's power, source, volume and mute state",
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)
		ctx := context.Background()

		if !speaker.IsOnline(ctx) {
			fmt.Printf("%s: offline\n", speaker.Addr())
			return
		}

		source, on, err := speaker.GetSourceAndState(ctx)
		if err != nil {
			fmt.Printf("Error reading source: %v\n", err)
			os.Exit(1)
		}
		volume, err := speaker.GetVolume(ctx)
		if err != nil {
			fmt.Printf("Error reading volume: %v\n", err)
			os.Exit(1)
		}
		muted, err := speaker.IsMuted(ctx)
		if err != nil {
			fmt.Printf("Error reading mute state: %v\n", err)
			os.Exit(1)
		}

		powerStr := "OFF"
		if on {
			powerStr = "ON"
		}
		fmt.Printf("%s: Power=%s, Source=%s, Volume=%.0f%%, Muted=%t\n",
			speaker.Addr(), powerStr, source, volume*100, muted)
	},
}

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Get or set the volume level (0-1)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)
		ctx := context.Background()

		if len(args) == 0 {
			volume, err := speaker.GetVolume(ctx)
			if err != nil {
				fmt.Printf("Error reading volume: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%.2f\n", volume)
			return
		}

		level, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Printf("Invalid volume '%s': must be a number between 0 and 1\n", args[0])
			os.Exit(1)
		}
		if err := speaker.SetVolume(ctx, level); err != nil {
			fmt.Printf("Error setting volume: %v\n", err)
			os.Exit(1)
		}
	},
}

var volumeUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Raise the volume by one step",
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)

		volume, err := speaker.IncreaseVolume(context.Background())
		if err != nil {
			fmt.Printf("Error raising volume: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%.2f\n", volume)
	},
}

var volumeDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Lower the volume by one step",
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)

		volume, err := speaker.DecreaseVolume(context.Background())
		if err != nil {
			fmt.Printf("Error lowering volume: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%.2f\n", volume)
	},
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Mute the speaker",
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)
		if err := speaker.Mute(context.Background()); err != nil {
			fmt.Printf("Error muting: %v\n", err)
			os.Exit(1)
		}
	},
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Unmute the speaker",
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)
		if err := speaker.Unmute(context.Background()); err != nil {
			fmt.Printf("Error unmuting: %v\n", err)
			os.Exit(1)
		}
	},
}

var sourceCmd = &cobra.Command{
	Use:   "source [name]",
	Short: "Get or set the active input source",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)
		ctx := context.Background()

		if len(args) == 0 {
			source, on, err := speaker.GetSourceAndState(ctx)
			if err != nil {
				fmt.Printf("Error reading source: %v\n", err)
				os.Exit(1)
			}
			if !on {
				fmt.Printf("%s (standby)\n", source)
				return
			}
			fmt.Println(source)
			return
		}

		source, err := kef.ParseSource(args[0])
		if err != nil {
			fmt.Printf("Invalid source '%s': valid sources are %v\n", args[0], kef.Sources())
			os.Exit(1)
		}
		if err := speaker.SetSource(ctx, source); err != nil {
			fmt.Printf("Error setting source: %v\n", err)
			os.Exit(1)
		}
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the selectable input sources",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range kef.Sources() {
			fmt.Println(s)
		}
	},
}

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Wake the speaker from standby",
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)
		if err := speaker.TurnOn(context.Background()); err != nil {
			fmt.Printf("Error turning on: %v\n", err)
			os.Exit(1)
		}
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Put the speaker into standby",
	Run: func(cmd *cobra.Command, args []string) {
		speaker, _ := getSpeaker(cmd)
		if err := speaker.TurnOff(context.Background()); err != nil {
			fmt.Printf("Error turning off: %v\n", err)
			os.Exit(1)
		}
	},
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll the speaker and print each state snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		speaker, cfg := getSpeaker(cmd)

		registry := kefmon.NewRegistry()
		if !registry.Add(speaker) {
			fmt.Printf("%s is already being monitored\n", speaker.Addr())
			os.Exit(1)
		}

		var logger *slog.Logger
		if verbose {
			logger = newLogger()
		}

		interval := time.Duration(cfg.IntervalSec) * time.Second
		poller := kefmon.NewPoller(speaker, interval, logger, func(state kefmon.State) {
			printState(speaker.Addr(), state)
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Monitoring %s every %s (Ctrl-C to stop)\n", speaker.Addr(), interval)
		poller.Run(ctx)
	},
}

func printState(addr string, state kefmon.State) {
	ts := time.Now().Format(time.TimeOnly)
	if !state.Online {
		fmt.Printf("[%s] %s: offline\n", ts, addr)
		return
	}

	powerStr := "OFF"
	if state.On {
		powerStr = "ON"
	}
	fmt.Printf("[%s] %s: Power=%s, Source=%s, Volume=%.0f%%, Muted=%t\n",
		ts, addr, powerStr, state.Source, state.Volume*100, state.Muted)
}

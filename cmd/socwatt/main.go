package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/socwatt/internal/config"
	"codeberg.org/mutker/socwatt/internal/export"
	"codeberg.org/mutker/socwatt/internal/ioreport"
	"codeberg.org/mutker/socwatt/internal/logger"
	"codeberg.org/mutker/socwatt/internal/pid"
	"codeberg.org/mutker/socwatt/internal/sampler"
	"codeberg.org/mutker/socwatt/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("another instance appears to be running")
	}
	defer pid.Remove()

	provider, err := ioreport.Open()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open telemetry provider")
	}

	recorder, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry recording")
	}
	defer recorder.Close()

	if cfg.ListenAddress != "" {
		go func() {
			if err := export.Serve(cfg.ListenAddress); err != nil {
				logger.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if cfg.Duration > 0 {
		time.AfterFunc(time.Duration(cfg.Duration)*time.Second, cancel)
	}

	if err := run(ctx, provider, recorder); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context, provider ioreport.Provider, recorder telemetry.Recorder) error {
	manager := sampler.NewSampleManager(provider, cfg.Interval, cfg.Samples)
	if err := manager.Start(); err != nil {
		return err
	}

	start := time.Now()
	var history []sampler.EnergySample

	for {
		select {
		case <-ctx.Done():
			// Current batch finishes, then everything still queued is kept
			history = append(history, manager.Drain()...)
			logSummary(history, time.Since(start))
			return nil
		case sample, ok := <-manager.Samples():
			if !ok {
				logSummary(history, time.Since(start))
				return nil
			}

			history = append(history, sample)
			observe(sample)

			record := telemetry.SampleRecord{Timestamp: time.Now(), Sample: sample}
			if err := recorder.Record(ctx, &record); err != nil {
				logger.Warn().Err(err).Msg("failed to record sample")
			}
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func observe(sample sampler.EnergySample) {
	reading := sampler.PowerReading{
		CPUWatts:    sample.CPUPowerW(),
		GPUWatts:    sample.GPUPowerW(),
		ANEWatts:    sample.ANEPowerW(),
		TimestampMS: time.Now().UnixMilli(),
	}

	export.Observe(reading)

	if cfg.Monitor {
		logger.Info().
			Float64("cpu_w", reading.CPUWatts).
			Float64("gpu_w", reading.GPUWatts).
			Float64("ane_w", reading.ANEWatts).
			Uint64("window_ms", sample.DurationMS).
			Msg("Power")
	}
}

func logSummary(history []sampler.EnergySample, wallClock time.Duration) {
	profile := sampler.NewPowerProfile(history)

	logger.Info().
		Int("samples", len(history)).
		Float64("total_energy_mj", profile.TotalEnergyMJ).
		Float64("avg_cpu_power_mw", profile.AverageCPUPowerMW).
		Float64("avg_gpu_power_mw", profile.AverageGPUPowerMW).
		Float64("avg_ane_power_mw", profile.AverageANEPowerMW).
		Uint64("sampled_ms", profile.TotalDurationMS).
		Dur("wall_clock", wallClock).
		Msg("Session summary")
}

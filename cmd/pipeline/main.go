package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/processor"
	"github.com/nguyentantai21042004/lecture-flow/internal/watcher"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

const defaultConfigPath = "config.yaml"

type options struct {
	video        string
	output       string
	whisperModel string
	skipFrames   bool
	fps          float64
	configPath   string
	logLevel     string
	watchDir     string
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lecture-flow",
		Short: "Turn a lecture video into a transcript, summary and quiz",
		Long: `lecture-flow extracts the audio of a lecture video, transcribes it, optionally
selects distinct slide frames and runs OCR on them, then summarizes the transcript,
cleans the summary and generates a multiple-choice quiz. Every artifact is cached
in the output directory so reruns only redo what changed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
				return err
			}
			return run(cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.video, "video", "video.mp4", "Path to the lecture video")
	f.StringVar(&opts.output, "output", "output", "Directory for generated artifacts")
	f.StringVar(&opts.whisperModel, "whisper-model", "tiny", "Whisper model size: tiny, base, small, medium or large")
	f.BoolVar(&opts.skipFrames, "skip-frames", false, "Skip frame extraction and OCR")
	f.Float64Var(&opts.fps, "fps", 1, "Frames sampled per second of video")
	f.StringVar(&opts.configPath, "config", defaultConfigPath, "YAML config file")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from config)")
	f.StringVar(&opts.watchDir, "watch", "", "Watch this directory for new videos instead of a single run")

	return cmd
}

// loadConfig reads the config file and applies the flags the user set.
// The default config file may be absent; an explicitly named one may not.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	var cfg *config.Config
	_, statErr := os.Stat(opts.configPath)
	if !cmd.Flags().Changed("config") && errors.Is(statErr, os.ErrNotExist) {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("video") {
		cfg.Paths.Video = opts.video
	}
	if flags.Changed("output") {
		cfg.Paths.Output = opts.output
	}
	if flags.Changed("whisper-model") {
		cfg.Whisper.Model = opts.whisperModel
	}
	if flags.Changed("skip-frames") {
		cfg.Frames.Skip = opts.skipFrames
	}
	if flags.Changed("fps") {
		cfg.Frames.FPS = opts.fps
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("watch") {
		cfg.Paths.Watch = opts.watchDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Lecture Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s, %d CPU cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Transcription: %s (whisper model %s)", cfg.Transcription.Backend, cfg.Whisper.Model)
	log.Info(ctx, "OCR: %s, frames skipped: %v, fps: %v", cfg.OCR.Backend, cfg.Frames.Skip, cfg.Frames.FPS)
	log.Info(ctx, "LLM: %s, cache mode: %s", cfg.Gemini.Model, cfg.Cache.Mode)

	proc := processor.New(cfg, executor.New(), log, os.Stderr)

	if cfg.Paths.Watch != "" {
		return watch(ctx, cfg, proc, log)
	}

	if err := proc.Process(ctx, cfg.Paths.Video, cfg.Paths.Output); err != nil {
		log.Error(ctx, "Pipeline failed: %v", err)
		return err
	}
	return nil
}

// watch processes every video dropped into the watch directory until a
// shutdown signal arrives.
func watch(ctx context.Context, cfg *config.Config, proc processor.Processor, log logger.Logger) error {
	if err := os.MkdirAll(cfg.Paths.Watch, 0755); err != nil {
		return fmt.Errorf("create watch directory: %w", err)
	}

	handler := func(ctx context.Context, videoPath string) error {
		return proc.Process(ctx, videoPath, watcher.OutputDir(cfg.Paths.Output, videoPath))
	}
	w, err := watcher.New(cfg.Paths.Watch, handler, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return err
	}
	defer w.Stop()

	log.Info(ctx, "Monitoring: %s", cfg.Paths.Watch)
	log.Info(ctx, "Output: %s/<video name>", cfg.Paths.Output)
	log.Info(ctx, "Press Ctrl+C to stop")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return err
	}
	log.Info(ctx, "Lecture pipeline stopped")
	return nil
}

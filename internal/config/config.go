package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Whisper       WhisperConfig       `yaml:"whisper"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Frames        FramesConfig        `yaml:"frames"`
	OCR           OCRConfig           `yaml:"ocr"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Summarizer    SummarizerConfig    `yaml:"summarizer"`
	Cleaner       CleanerConfig       `yaml:"cleaner"`
	Quiz          QuizConfig          `yaml:"quiz"`
	Paths         PathsConfig         `yaml:"paths"`
	Cache         CacheConfig         `yaml:"cache"`
	Export        ExportConfig        `yaml:"export"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelDir   string `yaml:"model_dir"`
	// Model is the checkpoint size: tiny, base, small, medium or large.
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Prompt   string `yaml:"prompt"`
	Threads  int    `yaml:"threads"`
}

type FFmpegConfig struct {
	BinaryPath      string `yaml:"binary_path"`
	ProbePath       string `yaml:"probe_path"`
	AudioSampleRate int    `yaml:"audio_sample_rate"`
}

type TranscriptionConfig struct {
	Backend      string `yaml:"backend"` // whisper | gcp
	LanguageCode string `yaml:"language_code"`
	GCSBucket    string `yaml:"gcs_bucket"`
}

type FramesConfig struct {
	Skip         bool    `yaml:"skip"`
	FPS          float64 `yaml:"fps"`
	Threshold    float64 `yaml:"threshold"`
	CompareWidth int     `yaml:"compare_width"`
	JPEGQuality  int     `yaml:"jpeg_quality"`
}

type OCRConfig struct {
	Backend    string `yaml:"backend"` // tesseract | gcp
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type SummarizerConfig struct {
	TokenizerPath string `yaml:"tokenizer_path"`
	MaxTokens     int    `yaml:"max_tokens"`
	MinWords      int    `yaml:"min_words"`
	MaxWords      int    `yaml:"max_words"`
}

type CleanerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

type QuizConfig struct {
	ChunkSize      int   `yaml:"chunk_size"`
	MaxAnswerWords int   `yaml:"max_answer_words"`
	Seed           int64 `yaml:"seed"`
}

type PathsConfig struct {
	Video  string `yaml:"video"`
	Output string `yaml:"output"`
	Watch  string `yaml:"watch"`
}

type CacheConfig struct {
	Mode   string `yaml:"mode"` // hash | exists
	DBName string `yaml:"db_name"`
}

type ExportConfig struct {
	Docx bool `yaml:"docx"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// WhisperModels lists the accepted checkpoint sizes.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large"}

// Load reads a YAML config file, applies environment overrides and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Default returns a validated config used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	_ = cfg.Validate()
	return cfg
}

func (c *Config) applyEnv() {
	if len(c.Gemini.APIKeys) > 0 {
		return
	}
	raw := os.Getenv("GEMINI_API_KEYS")
	if raw == "" {
		raw = os.Getenv("GEMINI_API_KEY")
	}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			c.Gemini.APIKeys = append(c.Gemini.APIKeys, k)
		}
	}
}

// Validate checks enumerations and ranges and fills defaults for unset fields.
func (c *Config) Validate() error {
	if c.Whisper.Model == "" {
		c.Whisper.Model = "tiny"
	}
	if !isWhisperModel(c.Whisper.Model) {
		return fmt.Errorf("whisper.model must be one of %s, got %q", strings.Join(WhisperModels, ", "), c.Whisper.Model)
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.ModelDir == "" {
		c.Whisper.ModelDir = "models"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.ProbePath == "" {
		c.FFmpeg.ProbePath = "ffprobe"
	}
	if c.FFmpeg.AudioSampleRate == 0 {
		c.FFmpeg.AudioSampleRate = 16000
	}

	switch c.Transcription.Backend {
	case "":
		c.Transcription.Backend = "whisper"
	case "whisper", "gcp":
	default:
		return fmt.Errorf("transcription.backend must be whisper or gcp, got %q", c.Transcription.Backend)
	}
	if c.Transcription.LanguageCode == "" {
		c.Transcription.LanguageCode = "en-US"
	}

	if c.Frames.FPS == 0 {
		c.Frames.FPS = 1
	}
	if c.Frames.FPS < 0 {
		return fmt.Errorf("frames.fps must be positive, got %v", c.Frames.FPS)
	}
	if c.Frames.Threshold == 0 {
		c.Frames.Threshold = 0.9
	}
	if c.Frames.Threshold < 0 || c.Frames.Threshold > 1 {
		return fmt.Errorf("frames.threshold must be in [0, 1], got %v", c.Frames.Threshold)
	}
	if c.Frames.CompareWidth == 0 {
		c.Frames.CompareWidth = 640
	}
	if c.Frames.JPEGQuality == 0 {
		c.Frames.JPEGQuality = 90
	}

	switch c.OCR.Backend {
	case "":
		c.OCR.Backend = "tesseract"
	case "tesseract", "gcp":
	default:
		return fmt.Errorf("ocr.backend must be tesseract or gcp, got %q", c.OCR.Backend)
	}
	if c.OCR.BinaryPath == "" {
		c.OCR.BinaryPath = "tesseract"
	}
	if c.OCR.Language == "" {
		c.OCR.Language = "eng"
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}

	if c.Summarizer.MaxTokens == 0 {
		c.Summarizer.MaxTokens = 1024
	}
	if c.Summarizer.MaxTokens <= 10 {
		return fmt.Errorf("summarizer.max_tokens must be greater than 10, got %d", c.Summarizer.MaxTokens)
	}
	if c.Summarizer.MinWords == 0 {
		c.Summarizer.MinWords = 30
	}
	if c.Summarizer.MaxWords == 0 {
		c.Summarizer.MaxWords = 130
	}
	if c.Cleaner.ChunkSize == 0 {
		c.Cleaner.ChunkSize = 700
	}
	if c.Quiz.ChunkSize == 0 {
		c.Quiz.ChunkSize = 400
	}
	if c.Quiz.MaxAnswerWords == 0 {
		c.Quiz.MaxAnswerWords = 25
	}

	if c.Paths.Video == "" {
		c.Paths.Video = "video.mp4"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}

	switch c.Cache.Mode {
	case "":
		c.Cache.Mode = "hash"
	case "hash", "exists":
	default:
		return fmt.Errorf("cache.mode must be hash or exists, got %q", c.Cache.Mode)
	}
	if c.Cache.DBName == "" {
		c.Cache.DBName = ".lecture-cache.db"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 1
	}

	return nil
}

func isWhisperModel(m string) bool {
	for _, s := range WhisperModels {
		if s == m {
			return true
		}
	}
	return false
}

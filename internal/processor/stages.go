package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/lecture-flow/internal/cache"
	"github.com/nguyentantai21042004/lecture-flow/internal/export"
	"github.com/nguyentantai21042004/lecture-flow/internal/frames"
	"github.com/nguyentantai21042004/lecture-flow/internal/ocr"
	"github.com/nguyentantai21042004/lecture-flow/internal/quiz"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-flow/internal/ui"
)

// run carries the state of one Process call between stages.
type run struct {
	p     *implProcessor
	cache cache.Cache
	video string
	out   artifacts

	videoDigest []byte
	frames      []string
}

// cached runs produce unless the output at path is still valid for key.
// It reports whether the cached output was reused.
func (r *run) cached(ctx context.Context, stage, path, key string, produce func() error) (bool, error) {
	hit, err := r.cache.Hit(ctx, stage, path, key)
	if err != nil {
		return false, err
	}
	if hit {
		r.p.logger.Info(ctx, "Loading %s from %s", stage, path)
		return true, nil
	}

	r.p.removeStale(ctx, path)
	if err := produce(); err != nil {
		return false, err
	}
	if err := r.cache.Store(ctx, stage, path, key); err != nil {
		return false, err
	}
	r.p.logger.Info(ctx, "Saved %s to %s", stage, path)
	return false, nil
}

// cachedText is cached for stages whose output is a single text file.
func (r *run) cachedText(ctx context.Context, stage, path, key string, produce func() (string, error)) (string, error) {
	var out string
	hit, err := r.cached(ctx, stage, path, key, func() error {
		s, err := produce()
		if err != nil {
			return err
		}
		out = s
		return r.p.writeOutput(ctx, path, s)
	})
	if err != nil {
		return "", err
	}
	if hit {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read cached %s: %w", stage, err)
		}
		return string(data), nil
	}
	return out, nil
}

func (r *run) extractAudio(ctx context.Context) error {
	digest, err := cache.FileDigest(r.video)
	if err != nil {
		return stageerr.NewFatal("audio", err)
	}
	r.videoDigest = digest

	key := cache.NewKey("audio").
		Param("sample_rate", strconv.Itoa(r.p.cfg.FFmpeg.AudioSampleRate)).
		Input("video", digest).
		Sum()

	_, err = r.cached(ctx, "audio", r.out.audio, key, func() error {
		if err := r.p.media.Available(); err != nil {
			return stageerr.NewFatal("audio", err)
		}
		if info, err := r.p.media.Probe(ctx, r.video); err != nil {
			r.p.logger.Warn(ctx, "Failed to probe %s: %v", r.video, err)
		} else {
			r.p.logger.Info(ctx, "Video: %dx%d, %.2f fps, duration %s",
				info.Width, info.Height, info.FrameRate,
				ui.FormatDuration(time.Duration(info.Duration*float64(time.Second))))
		}
		return r.p.media.ExtractAudio(ctx, r.video, r.out.audio)
	})
	return err
}

func (r *run) transcribe(ctx context.Context) error {
	digest, err := cache.FileDigest(r.out.audio)
	if err != nil {
		return stageerr.NewFatal("transcribe", err)
	}

	cfg := r.p.cfg
	key := cache.NewKey("transcribe").
		Param("backend", cfg.Transcription.Backend).
		Param("model", cfg.Whisper.Model).
		Param("language", cfg.Whisper.Language).
		Param("language_code", cfg.Transcription.LanguageCode).
		Param("prompt", cfg.Whisper.Prompt).
		Input("audio", digest).
		Sum()

	text, err := r.cachedText(ctx, "transcribe", r.out.transcript, key, func() (string, error) {
		t, err := r.p.build.transcriber()
		if err != nil {
			return "", err
		}
		defer t.Close()

		var text string
		err = r.p.models.with(ctx, func() error {
			var err error
			text, err = t.Transcribe(ctx, r.out.audio)
			return err
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	})
	if err != nil {
		return err
	}
	r.p.logger.Info(ctx, "Transcript: %d words", len(strings.Fields(text)))
	return nil
}

func (r *run) extractFrames(ctx context.Context) error {
	cfg := r.p.cfg.Frames
	key := cache.NewKey("frames").
		Param("fps", strconv.FormatFloat(cfg.FPS, 'f', -1, 64)).
		Param("threshold", strconv.FormatFloat(cfg.Threshold, 'f', -1, 64)).
		Param("compare_width", strconv.Itoa(cfg.CompareWidth)).
		Input("video", r.videoDigest).
		Sum()

	hit, err := r.cached(ctx, "frames", r.out.frameList, key, func() error {
		if err := r.p.media.Available(); err != nil {
			return stageerr.NewFatal("frames", err)
		}
		kept, err := r.p.frames.Extract(ctx, r.video, r.out.framesDir)
		if err != nil {
			return err
		}
		r.frames = kept
		return frames.WriteList(r.out.frameList, kept)
	})
	if err != nil {
		return err
	}
	if hit {
		if r.frames, err = frames.ReadList(r.out.frameList); err != nil {
			return err
		}
	}
	r.p.logger.Info(ctx, "Frames: %d kept", len(r.frames))
	return nil
}

func (r *run) recognize(ctx context.Context) error {
	cfg := r.p.cfg.OCR
	k := cache.NewKey("ocr").
		Param("backend", cfg.Backend).
		Param("language", cfg.Language)
	for _, f := range r.frames {
		// a vanished frame hashes as empty and fails recognition later
		d, _ := cache.FileDigest(f)
		k.Input(f, d)
	}

	_, err := r.cachedText(ctx, "ocr", r.out.ocr, k.Sum(), func() (string, error) {
		engine, err := r.p.build.ocr()
		if err != nil {
			return "", err
		}
		defer engine.Close()

		var lines []string
		err = r.p.models.with(ctx, func() error {
			var err error
			lines, err = ocr.RecognizeAll(ctx, engine, r.frames, r.p.logger, r.p.progress)
			return err
		})
		if err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	})
	return err
}

func (r *run) summarizer() (summarizer.Summarizer, error) {
	gen, err := r.p.generator()
	if err != nil {
		return nil, err
	}
	counter, err := r.p.tokenCounter()
	if err != nil {
		return nil, stageerr.NewFatal("summary", fmt.Errorf("load tokenizer: %w", err))
	}
	cfg := r.p.cfg
	return summarizer.New(cfg.Summarizer, cfg.Cleaner, gen, counter, r.p.logger, r.p.progress), nil
}

func (r *run) summarize(ctx context.Context) error {
	transcript, err := os.ReadFile(r.out.transcript)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	cfg := r.p.cfg
	key := cache.NewKey("summary").
		Param("model", cfg.Gemini.Model).
		Param("tokenizer", cfg.Summarizer.TokenizerPath).
		Param("max_tokens", strconv.Itoa(cfg.Summarizer.MaxTokens)).
		Param("min_words", strconv.Itoa(cfg.Summarizer.MinWords)).
		Param("max_words", strconv.Itoa(cfg.Summarizer.MaxWords)).
		Input("transcript", transcript).
		Sum()

	summary, err := r.cachedText(ctx, "summary", r.out.summary, key, func() (string, error) {
		s, err := r.summarizer()
		if err != nil {
			return "", err
		}
		return s.Summarize(ctx, string(transcript))
	})
	if err != nil {
		return err
	}

	r.exportDocx(ctx, "Lecture Summary", summary, r.out.summaryDocx)
	return nil
}

func (r *run) clean(ctx context.Context) error {
	summary, ok := r.readInput(ctx, r.out.summary)
	if !ok {
		return nil
	}

	cfg := r.p.cfg
	key := cache.NewKey("clean").
		Param("model", cfg.Gemini.Model).
		Param("chunk_size", strconv.Itoa(cfg.Cleaner.ChunkSize)).
		Input("summary", summary).
		Sum()

	_, err := r.cachedText(ctx, "clean", r.out.cleaned, key, func() (string, error) {
		s, err := r.summarizer()
		if err != nil {
			return "", err
		}
		return s.Clean(ctx, string(summary))
	})
	return err
}

func (r *run) generateQuiz(ctx context.Context) error {
	cleaned, ok := r.readInput(ctx, r.out.cleaned)
	if !ok {
		return nil
	}

	cfg := r.p.cfg
	key := cache.NewKey("quiz").
		Param("model", cfg.Gemini.Model).
		Param("chunk_size", strconv.Itoa(cfg.Quiz.ChunkSize)).
		Param("max_answer_words", strconv.Itoa(cfg.Quiz.MaxAnswerWords)).
		Param("seed", strconv.FormatInt(cfg.Quiz.Seed, 10)).
		Input("cleaned", cleaned).
		Sum()

	text, err := r.cachedText(ctx, "quiz", r.out.quiz, key, func() (string, error) {
		gen, err := r.p.generator()
		if err != nil {
			return "", err
		}
		mcqs, err := quiz.New(cfg.Quiz, gen, r.p.logger, r.p.progress).Generate(ctx, string(cleaned))
		if err != nil {
			return "", err
		}
		return quiz.Format(mcqs), nil
	})
	if err != nil {
		return err
	}

	r.p.logger.Info(ctx, "Quiz: %d questions", strings.Count(text, "\nAnswer: "))
	r.exportDocx(ctx, "Lecture Quiz", text, r.out.quizDocx)
	return nil
}

// readInput loads an upstream artifact. A missing file is logged and
// reported as not ok so the stage produces nothing.
func (r *run) readInput(ctx context.Context, path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.p.logger.Error(ctx, "Input file not found: %s", path)
		} else {
			r.p.logger.Error(ctx, "Failed to read %s: %v", path, err)
		}
		return nil, false
	}
	return data, true
}

func (r *run) exportDocx(ctx context.Context, title, text, path string) {
	if !r.p.cfg.Export.Docx {
		return
	}
	if err := export.Docx(title, text, path); err != nil {
		r.p.logger.Warn(ctx, "Failed to export %s: %v", path, err)
		return
	}
	r.p.logger.Info(ctx, "Exported %s", path)
}
